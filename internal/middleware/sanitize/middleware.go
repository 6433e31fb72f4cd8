package sanitize

import (
	"context"
	"log/slog"

	"deskgate/internal/core"
	"deskgate/internal/sanitize"
	"deskgate/pkg/errors"
	"deskgate/pkg/metrics"
)

// Config holds sanitizer middleware configuration
type Config struct {
	Sanitizer *sanitize.Sanitizer
	Logger    *slog.Logger
	// Metrics is optional
	Metrics *metrics.Metrics
}

// Middleware strips blocked keys from the request payload before anything
// else inspects it, and rejects payloads that trip a depth or size guard.
func Middleware(cfg Config) core.Middleware {
	if cfg.Sanitizer == nil {
		cfg.Sanitizer = sanitize.New(sanitize.Config{})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next core.Handler) core.Handler {
		return func(ctx context.Context, req core.Request) (core.Response, error) {
			result := cfg.Sanitizer.Sanitize(req.Payload().Roots()...)

			if !result.OK() {
				cfg.Logger.Warn("Payload rejected",
					"request_id", req.ID(),
					"path", req.Path(),
					"reason", result.Violation.String(),
					"visited", result.Visited,
				)
				if cfg.Metrics != nil {
					cfg.Metrics.SanitizerRejected.WithLabelValues(reasonLabel(result.Violation)).Inc()
				}
				return nil, errors.NewError(errors.ErrorTypeBadRequest, result.Violation.String()).
					WithDetail("visited", result.Visited)
			}

			if result.Removed > 0 {
				cfg.Logger.Warn("Removed blocked keys from payload",
					"request_id", req.ID(),
					"path", req.Path(),
					"removed", result.Removed,
				)
				if cfg.Metrics != nil {
					cfg.Metrics.SanitizerKeysRemoved.Add(float64(result.Removed))
				}
			}

			return next(ctx, req)
		}
	}
}

func reasonLabel(v sanitize.Violation) string {
	switch v {
	case sanitize.ViolationTooDeep:
		return "too_deep"
	case sanitize.ViolationTooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}
