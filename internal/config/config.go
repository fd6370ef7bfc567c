// Package config loads and validates the knud configuration: prize pools,
// the KNOT adjacency graph, weighting parameters, and the eligibility
// policy. Configuration is layered defaults -> YAML file -> KNUD_* env.
package config

import (
	"fmt"

	"github.com/teknia/knud/internal/eligibility"
	"github.com/teknia/knud/internal/knu"
)

// PoolConfig is the prize pool definition for one KNOT.
type PoolConfig struct {
	PoolTT      float64 `koanf:"pool_tt"`
	Description string  `koanf:"description"`
}

// EligibilityConfig mirrors the eligibility policy block.
type EligibilityConfig struct {
	RequiredStatus    []string `koanf:"required_status"`
	RequireArtifacts  bool     `koanf:"require_artifacts"`
	RequireValidation bool     `koanf:"require_validation"`
}

// Config is the full knud configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LedgerPath locates the append-only distribution ledger CSV.
	LedgerPath string `koanf:"ledger_path"`

	// TekTokensBin is the external reward CLI invoked once per payout.
	TekTokensBin string `koanf:"tek_tokens_bin"`

	// Alpha blends effort (alpha) against impact (1-alpha), in [0,1].
	Alpha float64 `koanf:"alpha"`

	// LambdaSpillover scales spillover impact, >= 0.
	LambdaSpillover float64 `koanf:"lambda_spillover"`

	Eligibility EligibilityConfig     `koanf:"eligibility"`
	Pools       map[string]PoolConfig `koanf:"pools"`

	// Adjacency maps KNOT id -> neighbor KNOT id -> weight in [0,1].
	// Spillover values on entries are pre-aggregated with these weights
	// upstream; the engine only ever reads this as a lookup.
	Adjacency map[string]map[string]float64 `koanf:"adjacency"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LedgerPath:      "finance/knu_ledger.csv",
		TekTokensBin:    "tek-tokens",
		Alpha:           0.30,
		LambdaSpillover: 0.50,
		Eligibility: EligibilityConfig{
			RequiredStatus:    []string{string(knu.StatusAccepted), string(knu.StatusMerged)},
			RequireArtifacts:  true,
			RequireValidation: true,
		},
		Pools:     map[string]PoolConfig{},
		Adjacency: map[string]map[string]float64{},
	}
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha %v outside [0,1]", ErrInvalidConfig, c.Alpha)
	}
	if c.LambdaSpillover < 0 {
		return fmt.Errorf("%w: lambda_spillover %v is negative", ErrInvalidConfig, c.LambdaSpillover)
	}
	if c.LedgerPath == "" {
		return fmt.Errorf("%w: ledger_path must not be empty", ErrInvalidConfig)
	}
	if c.TekTokensBin == "" {
		return fmt.Errorf("%w: tek_tokens_bin must not be empty", ErrInvalidConfig)
	}
	if len(c.Eligibility.RequiredStatus) == 0 {
		return fmt.Errorf("%w: eligibility.required_status must not be empty", ErrInvalidConfig)
	}
	for _, s := range c.Eligibility.RequiredStatus {
		switch knu.Status(s) {
		case knu.StatusPending, knu.StatusAccepted, knu.StatusMerged, knu.StatusRejected:
		default:
			return fmt.Errorf("%w: unknown status %q in eligibility.required_status", ErrInvalidConfig, s)
		}
	}
	for knot, pool := range c.Pools {
		if pool.PoolTT < 0 {
			return fmt.Errorf("%w: pool %s has negative pool_tt %v", ErrInvalidConfig, knot, pool.PoolTT)
		}
	}
	for knot, neighbors := range c.Adjacency {
		for neighbor, weight := range neighbors {
			if weight < 0 || weight > 1 {
				return fmt.Errorf("%w: adjacency %s->%s weight %v outside [0,1]",
					ErrInvalidConfig, knot, neighbor, weight)
			}
		}
	}
	return nil
}

// Pool returns the pool configuration for a KNOT, or ErrPoolNotFound.
func (c *Config) Pool(knotID string) (knu.Pool, error) {
	pool, ok := c.Pools[knotID]
	if !ok {
		return knu.Pool{}, fmt.Errorf("%w: KNOT %s", ErrPoolNotFound, knotID)
	}
	return knu.Pool{
		KnotID:      knotID,
		PoolTT:      pool.PoolTT,
		Description: pool.Description,
	}, nil
}

// AdjacencyFor returns the neighbor weights for a KNOT. The result is a
// pass-through lookup; a KNOT with no configured neighbors gets nil.
func (c *Config) AdjacencyFor(knotID string) map[string]float64 {
	return c.Adjacency[knotID]
}

// Params returns the weighting parameters.
func (c *Config) Params() knu.Params {
	return knu.Params{Alpha: c.Alpha, LambdaSpillover: c.LambdaSpillover}
}

// Policy returns the eligibility policy.
func (c *Config) Policy() eligibility.Policy {
	statuses := make([]knu.Status, len(c.Eligibility.RequiredStatus))
	for i, s := range c.Eligibility.RequiredStatus {
		statuses[i] = knu.Status(s)
	}
	return eligibility.Policy{
		RequiredStatus:    statuses,
		RequireArtifacts:  c.Eligibility.RequireArtifacts,
		RequireValidation: c.Eligibility.RequireValidation,
	}
}
