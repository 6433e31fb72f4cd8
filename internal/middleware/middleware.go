package middleware

import (
	"context"
	"log/slog"
	"time"

	"deskgate/internal/core"
	"deskgate/internal/middleware/auth"
	"deskgate/pkg/errors"
)

// Chain combines multiple middleware
func Chain(middlewares ...core.Middleware) core.Middleware {
	return func(next core.Handler) core.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// Logging adds request logging
func Logging(logger *slog.Logger) core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(ctx context.Context, req core.Request) (core.Response, error) {
			start := time.Now()

			logger.Debug("request",
				"id", req.ID(),
				"method", req.Method(),
				"path", req.Path(),
			)

			resp, err := next(ctx, req)

			status := 200
			switch {
			case err != nil:
				status = errors.From(err).HTTPStatusCode()
			case resp != nil:
				status = resp.StatusCode()
			}

			args := []any{
				"id", req.ID(),
				"method", req.Method(),
				"path", req.Path(),
				"status", status,
				"duration", time.Since(start),
			}
			if err != nil {
				args = append(args, "error", err)
			}

			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "response", args...)

			return resp, err
		}
	}
}

// Audit logs every request that carries verified admin claims. It must sit
// inside the auth gate so the claims are in the context it receives.
func Audit(logger *slog.Logger) core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(ctx context.Context, req core.Request) (core.Response, error) {
			if claims, ok := auth.ClaimsFromContext(ctx); ok {
				logger.Info("admin action",
					"id", req.ID(),
					"method", req.Method(),
					"path", req.Path(),
					"email", claims.Email,
					"role", claims.Role,
					"jti", claims.ID,
				)
			}
			return next(ctx, req)
		}
	}
}
