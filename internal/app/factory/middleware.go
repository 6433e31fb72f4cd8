package factory

import (
	"log/slog"

	"deskgate/internal/config"
	"deskgate/internal/core"
	"deskgate/internal/middleware"
	"deskgate/internal/middleware/auth"
	metricsMiddleware "deskgate/internal/middleware/metrics"
	"deskgate/internal/middleware/ratelimit"
	"deskgate/internal/middleware/recovery"
	sanitizeMiddleware "deskgate/internal/middleware/sanitize"
	"deskgate/internal/sanitize"
	"deskgate/internal/telemetry"
	"deskgate/pkg/metrics"
)

// Pipeline holds the shared middleware every route is wrapped in
type Pipeline struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Telemetry *telemetry.Telemetry
	Sanitize  core.Middleware
	Limits    core.Middleware
	Gate      *auth.Gate
}

// CreateSanitizeMiddleware creates the payload sanitizer middleware
func CreateSanitizeMiddleware(cfg *config.Sanitizer, logger *slog.Logger, m *metrics.Metrics) core.Middleware {
	return sanitizeMiddleware.Middleware(sanitizeMiddleware.Config{
		Sanitizer: sanitize.New(sanitize.Config{
			MaxDepth: cfg.MaxDepth,
			MaxNodes: cfg.MaxNodes,
		}),
		Logger:  logger.With("middleware", "sanitize"),
		Metrics: m,
	})
}

// Wrap builds the chain for one route:
// recovery, logging, tracing, metrics, sanitizer, limiters, gate, audit.
// The gate and audit stages are only added for routes with gated set.
func (p *Pipeline) Wrap(route string, handler core.Handler, gated bool, roles ...auth.Role) core.Handler {
	chain := []core.Middleware{
		recovery.Default(p.Logger),
		middleware.Logging(p.Logger),
	}
	if p.Telemetry != nil {
		chain = append(chain, p.Telemetry.Middleware(route))
	}
	if p.Metrics != nil {
		chain = append(chain, metricsMiddleware.Middleware(p.Metrics, route))
	}
	if p.Sanitize != nil {
		chain = append(chain, p.Sanitize)
	}
	if p.Limits != nil {
		chain = append(chain, p.Limits)
	}
	if gated {
		chain = append(chain, p.Gate.Require(roles...), middleware.Audit(p.Logger))
	}
	return middleware.Chain(chain...)(handler)
}

// CreateLimitsMiddleware applies every group whose paths match the request
func CreateLimitsMiddleware(rules []ratelimit.Rule) core.Middleware {
	return ratelimit.PerRoute(rules)
}
