package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"deskgate/internal/core"
	"deskgate/pkg/errors"
)

// Config holds recovery middleware configuration
type Config struct {
	// StackTrace enables stack trace logging
	StackTrace bool
	// PanicHandler is called when a panic occurs (optional)
	PanicHandler func(ctx context.Context, recovered any, stack []byte)
}

// Middleware creates panic recovery middleware. A panic anywhere below it
// becomes a generic internal error; the panic value only reaches the logs.
func Middleware(config Config, logger *slog.Logger) core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(ctx context.Context, req core.Request) (resp core.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()

					args := []any{
						"panic", r,
						"request_id", req.ID(),
						"path", req.Path(),
						"method", req.Method(),
					}
					if config.StackTrace {
						args = append(args, "stack", string(stack))
					}
					logger.Error("panic recovered", args...)

					if config.PanicHandler != nil {
						config.PanicHandler(ctx, r, stack)
					}

					resp = nil
					err = errors.NewError(errors.ErrorTypeInternal, "Internal server error").
						WithDetail("panic", fmt.Sprintf("%v", r))
				}
			}()

			return next(ctx, req)
		}
	}
}

// Default creates recovery middleware with default configuration
func Default(logger *slog.Logger) core.Middleware {
	return Middleware(Config{
		StackTrace: true,
	}, logger)
}
