// Package loadtest drives a running link engine with concurrent game rounds
// and can write synthetic player dumps to seed it.
package loadtest

import "time"

// Config holds configuration for a load test run.
type Config struct {
	BaseURL string        // Base URL of the service
	Rounds  int           // Number of challenge rounds to play
	Workers int           // Number of concurrent rounds
	Timeout time.Duration // Per-request timeout
	Verbose bool          // Log every failed round
}

// DumpConfig controls the synthetic dump generator.
type DumpConfig struct {
	Players  int    // Number of player blocks
	Teams    int    // Size of the club pool
	Nations  int    // Size of the national team pool
	MaxStint int    // Most club stints per player
	Seed     uint64 // Seed for reproducible dumps
}

// Stats holds run statistics.
type Stats struct {
	Rounds        int
	Linked        int // find_link returned a chain
	Unlinked      int // find_link answered no_link
	Verified      int // returned chain passed validate_chain
	Rejected      int // returned chain failed validate_chain
	Failed        int // transport or unexpected status errors
	AvgFindMillis float64
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
