package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"

	httpAdapter "deskgate/internal/adapter/http"
	"deskgate/internal/app/factory"
	"deskgate/internal/config"
	"deskgate/internal/middleware/ratelimit"
	"deskgate/internal/telemetry"
)

// Server represents the deskgate server
type Server struct {
	config      *config.Config
	httpAdapter *httpAdapter.Adapter
	limits      []ratelimit.Rule
	redis       *goredis.Client
	telemetry   *telemetry.Telemetry
	logger      *slog.Logger
}

// NewServer creates a new deskgate server
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	return NewBuilder(cfg, logger).Build(ctx)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpAdapter
}

// Addr returns the listening address once started
func (s *Server) Addr() string {
	return s.httpAdapter.Addr()
}

// Start starts the server. It returns once the listener is bound; requests
// are served in the background until Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		"host", s.config.Deskgate.HTTP.Host,
		"port", s.config.Deskgate.HTTP.Port,
	)
	if err := s.httpAdapter.Start(ctx); err != nil {
		return fmt.Errorf("HTTP server: %w", err)
	}

	s.logger.Info("deskgate started successfully")
	return nil
}

// Stop drains in-flight requests, then closes the limiter stores, the
// Redis client and the tracer provider
func (s *Server) Stop(ctx context.Context) error {
	var errs []error

	if s.httpAdapter != nil {
		if err := s.httpAdapter.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping HTTP server: %w", err))
		}
	}
	if err := s.release(ctx); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %w", errors.Join(errs...))
	}

	s.logger.Info("deskgate stopped successfully")
	return nil
}

// release closes everything except the HTTP server
func (s *Server) release(ctx context.Context) error {
	var errs []error

	if err := factory.CloseLimiters(s.limits); err != nil {
		errs = append(errs, fmt.Errorf("closing rate limit stores: %w", err))
	}
	s.limits = nil

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing redis client: %w", err))
		}
		s.redis = nil
	}

	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down telemetry: %w", err))
		}
		s.telemetry = nil
	}

	return errors.Join(errs...)
}
