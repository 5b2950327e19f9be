// Package config defines node configuration structures and loading hooks.
//
// Conventions follow the rest of the repo: a New() initializer with
// defaults, koanf tags on every field, external errors wrapped through
// this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// RollupURL points at the rollup HTTP server the node polls.
	RollupURL string `koanf:"rollup_url"`

	// DatasetFile is the YAML species trait/range table.
	DatasetFile string `koanf:"dataset_file"`

	// MetricsAddr exposes the Prometheus endpoint, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// EncounterInterval is the seconds of birdwatching per encounter.
	EncounterInterval int64 `koanf:"encounter_interval"`

	// VisionRange is the observer's vision range in meters.
	VisionRange float64 `koanf:"vision_range"`

	// DuelTimeout is the reveal forfeiture window in seconds.
	DuelTimeout int64 `koanf:"duel_timeout"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		RollupURL:         "http://127.0.0.1:5004",
		MetricsAddr:       ":9090",
		EncounterInterval: 120,
		VisionRange:       10,
		DuelTimeout:       600,
	}
}
