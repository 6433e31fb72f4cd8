package storage

import (
	"context"
	"time"
)

// Window is the state of one key's rate window after a hit
type Window struct {
	// Count is the number of hits in the current window, including this one
	Count int
	// Start is when the current window opened
	Start time.Time
	// ResetAt is when the current window closes
	ResetAt time.Time
}

// WindowStore keeps per-key request counters for a single rate limiter.
// A store is owned by exactly one limiter and is never shared between limiters.
type WindowStore interface {
	// Hit records one request for key. If the key has no live window a new
	// window of the given length is opened with Count 1, otherwise Count is
	// incremented. The whole read-check-increment-write is atomic per store.
	Hit(ctx context.Context, key string, window time.Duration) (Window, error)

	// Reset forgets the window for the given key
	Reset(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}

// Stats describes the occupancy of a store
type Stats struct {
	// Keys is the number of tracked keys
	Keys int `json:"keys"`
	// Capacity is the maximum number of tracked keys, 0 means unbounded
	Capacity int `json:"capacity"`
}

// StatsReporter is implemented by stores that can report their occupancy
type StatsReporter interface {
	Stats() Stats
}

// StoreConfig defines common configuration for window stores
type StoreConfig struct {
	// CleanupInterval is how often expired windows are swept in the background
	CleanupInterval time.Duration
	// MaxEntries is the maximum number of tracked keys (0 = unlimited)
	MaxEntries int
	// Clock overrides time.Now when set
	Clock func() time.Time
}

// DefaultConfig returns default configuration
func DefaultConfig() *StoreConfig {
	return &StoreConfig{
		CleanupInterval: time.Minute,
		MaxEntries:      10000,
	}
}
