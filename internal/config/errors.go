package config

import "errors"

// Sentinel error kinds for this package. Callers use errors.Is to tell a
// missing pool apart from a malformed or unreadable configuration.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
	ErrPoolNotFound  = errors.New("pool not found")
)
