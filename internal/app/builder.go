package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	httpAdapter "deskgate/internal/adapter/http"
	"deskgate/internal/app/factory"
	"deskgate/internal/config"
	"deskgate/internal/core"
	"deskgate/internal/handler"
	"deskgate/internal/middleware/auth"
	"deskgate/internal/middleware/ratelimit"
	"deskgate/internal/storage/redis"
)

// Version is reported to the tracing backend; set at link time
var Version = "dev"

// Builder builds the deskgate application
type Builder struct {
	config *config.Config
	logger *slog.Logger
}

// NewBuilder creates a new application builder
func NewBuilder(cfg *config.Config, logger *slog.Logger) *Builder {
	return &Builder{
		config: cfg,
		logger: logger,
	}
}

// Build constructs the server. Resources created before a failure are
// released before returning.
func (b *Builder) Build(ctx context.Context) (s *Server, err error) {
	d := &b.config.Deskgate
	s = &Server{config: b.config, logger: b.logger}
	defer func() {
		if err != nil {
			s.release(context.WithoutCancel(ctx))
			s = nil
		}
	}()

	s.telemetry, err = factory.CreateTelemetry(ctx, &d.Telemetry, Version, b.logger)
	if err != nil {
		return s, err
	}

	m, registry := factory.CreateMetrics(&d.Metrics)

	var client redis.Client
	if d.RateLimit.Storage == "redis" {
		s.redis, err = factory.CreateRedisClient(ctx, d.RateLimit.Redis, b.logger)
		if err != nil {
			return s, fmt.Errorf("creating redis client: %w", err)
		}
		client = redis.NewClientAdapter(s.redis)
	}

	s.limits, err = factory.CreateLimiters(&d.RateLimit, client, b.logger, m)
	if err != nil {
		return s, fmt.Errorf("creating rate limiters: %w", err)
	}

	provider := factory.CreateTokenProvider(&d.Auth, b.logger)
	loginHandler, err := factory.CreateLoginHandler(&d.Auth, provider, b.logger, m)
	if err != nil {
		return s, fmt.Errorf("creating login handler: %w", err)
	}

	pipeline := &factory.Pipeline{
		Logger:   b.logger.With("middleware", "logging"),
		Metrics:  m,
		Sanitize: factory.CreateSanitizeMiddleware(&d.Sanitizer, b.logger, m),
		Limits:   factory.CreateLimitsMiddleware(s.limits),
		Gate:     factory.CreateGate(provider, b.logger, m),
	}
	if s.telemetry.Enabled() {
		pipeline.Telemetry = s.telemetry
	}

	s.httpAdapter = httpAdapter.New(httpAdapter.Config{
		Host:           d.HTTP.Host,
		Port:           d.HTTP.Port,
		ReadTimeout:    d.HTTP.ReadTimeout,
		WriteTimeout:   d.HTTP.WriteTimeout,
		IdleTimeout:    d.HTTP.IdleTimeout,
		MaxRequestSize: d.HTTP.MaxRequestSize,
	}, b.logger)
	if s.telemetry.Enabled() {
		s.httpAdapter.Use(s.telemetry.WrapHTTP)
	}

	b.registerRoutes(s.httpAdapter, pipeline, loginHandler.Handle, s.limits)

	if registry != nil {
		s.httpAdapter.Mount(d.Metrics.Path, factory.CreateMetricsHandler(registry))
		b.logger.Info("Metrics enabled", "path", d.Metrics.Path)
	}

	return s, nil
}

// registerRoutes mounts every route behind the shared pipeline
func (b *Builder) registerRoutes(a *httpAdapter.Adapter, p *factory.Pipeline, login core.Handler, rules []ratelimit.Rule) {
	debug := handler.NewRateLimitDebug(b.logger, factory.Limiters(rules)...)

	a.Handle(http.MethodGet, "/api/health",
		p.Wrap("/api/health", handler.Health(), false))
	a.Handle(http.MethodPost, "/api/admin/login",
		p.Wrap("/api/admin/login", login, false))
	a.Handle(http.MethodGet, "/api/admin/session",
		p.Wrap("/api/admin/session", handler.Session(), true))
	a.Handle(http.MethodPost, "/api/ingest/events",
		p.Wrap("/api/ingest/events", handler.Ingest(b.logger), false))
	a.Handle(http.MethodGet, "/api/debug/ratelimit",
		p.Wrap("/api/debug/ratelimit", debug.Stats, true, auth.RoleSuperAdmin))
	a.Handle(http.MethodDelete, "/api/debug/ratelimit/{group}/{key}",
		p.Wrap("/api/debug/ratelimit/{group}/{key}", debug.Reset, true, auth.RoleSuperAdmin))
}
