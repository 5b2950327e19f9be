package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if ORNITHOLOGIST_CONFIG is set
//  3. env (prefix ORNITHOLOGIST_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ORNITHOLOGIST_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: ORNITHOLOGIST_ROLLUP_URL, ORNITHOLOGIST_DATASET_FILE, ...
	// Map env keys like ORNITHOLOGIST_DUEL_TIMEOUT -> duel_timeout (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ORNITHOLOGIST_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "ornithologist_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.RollupURL == "" {
		return nil, fmt.Errorf("%w: rollup_url must not be empty", ErrInvalidConfig)
	}
	if cfg.DatasetFile == "" {
		return nil, fmt.Errorf("%w: dataset_file must not be empty", ErrInvalidConfig)
	}
	if cfg.EncounterInterval <= 0 || cfg.DuelTimeout <= 0 {
		return nil, fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
