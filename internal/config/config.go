// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - Validate reports problems wrapped in ErrInvalidConfig.
package config

import (
	"time"
)

// Store drivers understood by the service.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// StoreDriver picks the persistence backend.
	StoreDriver string `koanf:"store_driver" validate:"oneof=sqlite bolt memory"`

	// SQLitePath is the database file used when StoreDriver is sqlite.
	SQLitePath string `koanf:"sqlite_path" validate:"required_if=StoreDriver sqlite"`

	// BoltPath is the database file used when StoreDriver is bolt.
	BoltPath string `koanf:"bolt_path" validate:"required_if=StoreDriver bolt"`

	// RosterPath points at the curated challenge roster (YAML). Empty means
	// challenges are drawn from every known player.
	RosterPath string `koanf:"roster_path"`

	// SnapshotCache keeps the last built snapshot until the store generation changes.
	SnapshotCache bool `koanf:"snapshot_cache"`

	// SuggestLimit caps the number of suggested names.
	SuggestLimit int `koanf:"suggest_limit" validate:"gte=1,lte=50"`

	// SuggestCutoff is the similarity floor for backfilled suggestions.
	SuggestCutoff float64 `koanf:"suggest_cutoff" validate:"gte=0,lte=1"`

	// MaxChainLength caps the number of players in a submitted chain.
	MaxChainLength int `koanf:"max_chain_length" validate:"gte=2"`

	// MaxGenerateLength caps GET /generate_player_chain?length.
	MaxGenerateLength int `koanf:"max_generate_length" validate:"gte=2"`

	// FindTimeoutMS bounds a single shortest link search.
	FindTimeoutMS int `koanf:"find_timeout_ms" validate:"gte=1"`

	// FindRatePerSec and FindBurst configure the find_link token bucket.
	FindRatePerSec float64 `koanf:"find_rate_per_sec" validate:"gt=0"`
	FindBurst      int     `koanf:"find_burst" validate:"gte=1"`

	// DumpPath is a player dump imported at startup. Empty disables the import.
	DumpPath string `koanf:"dump_path" validate:"required_if=DumpWatch true"`

	// DumpWatch re-imports DumpPath whenever the file changes.
	DumpWatch bool `koanf:"dump_watch"`

	// DumpReplace clears the store before each import instead of upserting.
	DumpReplace bool `koanf:"dump_replace"`

	// ImportWorkers sets how many goroutines parse dump blocks; 0 means one per CPU.
	ImportWorkers int `koanf:"import_workers" validate:"gte=0"`

	// ImportDebounceMS waits for writes to settle before a watched re-import.
	ImportDebounceMS int `koanf:"import_debounce_ms" validate:"gte=0"`

	// MetricsEnabled turns recording of the engine metrics on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace" validate:"required"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsRefreshMS is how often the system gauges are refreshed.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms" validate:"gte=100"`

	// MetricsBucketsMS overrides the latency histogram buckets.
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms" validate:"dive,gt=0"`

	// MetricsLabels are constant labels added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		StoreDriver:       DriverSQLite,
		SQLitePath:        "players.db",
		BoltPath:          "players.bolt",
		SnapshotCache:     true,
		SuggestLimit:      5,
		SuggestCutoff:     0.8,
		MaxChainLength:    12,
		MaxGenerateLength: 10,
		FindTimeoutMS:     5000,
		FindRatePerSec:    20,
		FindBurst:         40,
		ImportDebounceMS:  500,
		MetricsEnabled:    true,
		MetricsNamespace:  "cujulink",
		MetricsSubsystem:  "engine",
		MetricsRefreshMS:  10000,
	}
}

// FindTimeout returns FindTimeoutMS as a duration.
func (c *Config) FindTimeout() time.Duration {
	return time.Duration(c.FindTimeoutMS) * time.Millisecond
}

// ImportDebounce returns ImportDebounceMS as a duration.
func (c *Config) ImportDebounce() time.Duration {
	return time.Duration(c.ImportDebounceMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// StorePath returns the file backing the selected store driver.
func (c *Config) StorePath() string {
	if c.StoreDriver == DriverBolt {
		return c.BoltPath
	}
	return c.SQLitePath
}
