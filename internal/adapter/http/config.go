package http

import "time"

// Config holds HTTP adapter configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// MaxRequestSize bounds request bodies in bytes (0 = no limit)
	MaxRequestSize int64
}
