// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/scoring"
)

// Storage backends accepted by StorageBackend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

var backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis, BackendPostgres}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageBackend selects the persistence gateway.
	StorageBackend string `koanf:"storage_backend"`

	// DataDir holds the file backend snapshots and the default SQLite database.
	DataDir string `koanf:"data_dir"`

	// SQLitePath overrides the SQLite database location.
	SQLitePath string `koanf:"sqlite_path"`

	// RedisURL and PostgresURL are used by the matching backends.
	RedisURL    string `koanf:"redis_url"`
	PostgresURL string `koanf:"postgres_url"`

	// BreakerFailures and BreakerDelayMS configure the circuit breaker in
	// front of remote backends.
	BreakerFailures int `koanf:"breaker_failures"`
	BreakerDelayMS  int `koanf:"breaker_delay_ms"`

	// SyncDelayMS is the debounce between the last mutation and a flush.
	SyncDelayMS int `koanf:"sync_delay_ms"`

	// SyncTimeoutMS bounds a single gateway write.
	SyncTimeoutMS int `koanf:"sync_timeout_ms"`

	// HistoryRetention is the number of journal entries kept on flush.
	HistoryRetention int `koanf:"history_retention"`

	// ConnectivityProbeURL enables the HTTP probe. Empty means the manual
	// switch exposed on POST /connectivity.
	ConnectivityProbeURL string `koanf:"connectivity_probe_url"`

	// ConnectivityIntervalMS is the probe period.
	ConnectivityIntervalMS int `koanf:"connectivity_interval_ms"`

	// AMQPURL enables publishing change events when set.
	AMQPURL string `koanf:"amqp_url"`

	// AMQPExchange names the topic exchange for change events.
	AMQPExchange string `koanf:"amqp_exchange"`

	// WorkerCount sets the number of rescoring workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxTopLimit caps GET /partners/top?limit.
	MaxTopLimit int `koanf:"max_top_limit"`

	// ScoreWeights are the Nova Score term weights.
	ScoreWeights scoring.Weights `koanf:"score_weights"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		StorageBackend:         BackendFile,
		DataDir:                "data",
		BreakerFailures:        5,
		BreakerDelayMS:         30_000,
		SyncDelayMS:            2000,
		SyncTimeoutMS:          10_000,
		HistoryRetention:       50,
		ConnectivityIntervalMS: 5000,
		AMQPExchange:           "nova_changes",
		WorkerCount:            runtime.NumCPU() * 2,
		MaxTopLimit:            100,
		ScoreWeights:           scoring.DefaultWeights(),
	}
}

// Validate reports the first invalid field wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains(backends, c.StorageBackend):
		return fmt.Errorf("%w: unknown storage_backend %q", ErrInvalidConfig, c.StorageBackend)
	case c.StorageBackend == BackendRedis && c.RedisURL == "":
		return fmt.Errorf("%w: redis_url is required for the redis backend", ErrInvalidConfig)
	case c.StorageBackend == BackendPostgres && c.PostgresURL == "":
		return fmt.Errorf("%w: postgres_url is required for the postgres backend", ErrInvalidConfig)
	case (c.StorageBackend == BackendFile || c.StorageBackend == BackendSQLite) && c.DataDir == "" && c.SQLitePath == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.SyncDelayMS < 0:
		return fmt.Errorf("%w: sync_delay_ms must not be negative", ErrInvalidConfig)
	case c.SyncTimeoutMS <= 0:
		return fmt.Errorf("%w: sync_timeout_ms must be positive", ErrInvalidConfig)
	case c.HistoryRetention < 0:
		return fmt.Errorf("%w: history_retention must not be negative", ErrInvalidConfig)
	case c.ConnectivityProbeURL != "" && c.ConnectivityIntervalMS <= 0:
		return fmt.Errorf("%w: connectivity_interval_ms must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be at least 1", ErrInvalidConfig)
	case c.MaxTopLimit < 1:
		return fmt.Errorf("%w: max_top_limit must be at least 1", ErrInvalidConfig)
	case c.BreakerFailures < 1:
		return fmt.Errorf("%w: breaker_failures must be at least 1", ErrInvalidConfig)
	case !c.ScoreWeights.Valid():
		return fmt.Errorf("%w: score_weights must be non-negative with a non-empty range", ErrInvalidConfig)
	}
	return nil
}
