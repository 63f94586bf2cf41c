// Package seed generates synthetic partners and loads them into a running
// Nova API.
package seed

import "time"

// Defaults used when a Config field is left zero.
const (
	DefaultCount     = 100
	DefaultBatchSize = 50
	DefaultTopN      = 10
	DefaultTimeout   = 30 * time.Second
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Count      int           // Number of partners to generate
	BatchSize  int           // Partners per import request
	TopN       int           // Leaderboard entries to fetch and verify
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional file receiving the generated partners
	Seed       uint64        // Random seed; zero picks one from the clock
}

func (c Config) withDefaults() Config {
	if c.Count <= 0 {
		c.Count = DefaultCount
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Stats summarizes a seeding run.
type Stats struct {
	Generated   int
	Imported    int
	Duplicates  int
	Batches     int
	Leaderboard int
	StartTime   time.Time
	Duration    time.Duration
}
