package ratelimit

import (
	"log/slog"
	"time"

	"deskgate/internal/storage"
	"deskgate/pkg/metrics"
)

// Config defines one rate limiter group
type Config struct {
	// Name identifies the group in logs, metrics and the debug endpoints
	Name string
	// Window is the length of a counting window
	Window time.Duration
	// Max is the number of requests allowed per key per window
	Max int
	// KeyFunc extracts the rate limit key from request
	KeyFunc KeyFunc
	// Store holds the group's windows; it is owned by the limiter
	Store storage.WindowStore
	// Logger for logging
	Logger *slog.Logger
	// Metrics is optional
	Metrics *metrics.Metrics
}
