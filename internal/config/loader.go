package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, the YAML file at path, and
// KNUD_* environment variables. Precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML)
//  3. env (prefix KNUD_, e.g. KNUD_ALPHA, KNUD_LAMBDA_SPILLOVER)
//
// A double underscore in an env var descends into a nested section:
// KNUD_ELIGIBILITY__REQUIRE_ARTIFACTS maps to
// eligibility.require_artifacts. Single underscores stay literal to
// match the koanf tags on the struct.
//
// The file is required: distribution without pool configuration is
// meaningless, so a missing or unreadable file is a load error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}

	envProvider := env.Provider("KNUD_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "KNUD_"))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
