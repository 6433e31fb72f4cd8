package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"deskgate/internal/core"
	"deskgate/internal/middleware/auth"
	"deskgate/pkg/errors"
)

func newRequest() core.Request {
	return core.NewRequest("test-123", "GET", "/api/admin/session", "/api/admin/session",
		"127.0.0.1:12345", nil, nil, context.Background())
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := Logging(logger)(func(ctx context.Context, req core.Request) (core.Response, error) {
		return core.NewResponse(200, []byte("OK")), nil
	})

	resp, err := handler(context.Background(), newRequest())
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if resp.StatusCode() != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode())
	}

	logs := buf.String()
	for _, want := range []string{"test-123", "GET", "/api/admin/session", "status=200", "duration"} {
		if !strings.Contains(logs, want) {
			t.Errorf("log should contain %q:\n%s", want, logs)
		}
	}
}

func TestLoggingMiddlewareWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	want := errors.NewError(errors.ErrorTypeRateLimit, "Too many requests. Please try again later.")
	handler := Logging(logger)(func(ctx context.Context, req core.Request) (core.Response, error) {
		return nil, want
	})

	if _, err := handler(context.Background(), newRequest()); err != want {
		t.Errorf("error = %v, want %v", err, want)
	}
	if !strings.Contains(buf.String(), "status=429") {
		t.Errorf("log should carry the mapped status:\n%s", buf.String())
	}
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := Audit(logger)(func(ctx context.Context, req core.Request) (core.Response, error) {
		return core.NewResponse(204, nil), nil
	})

	t.Run("anonymous requests are not audited", func(t *testing.T) {
		buf.Reset()
		handler(context.Background(), newRequest())
		if buf.Len() != 0 {
			t.Errorf("unexpected audit log: %s", buf.String())
		}
	})

	t.Run("admin requests are audited", func(t *testing.T) {
		buf.Reset()
		ctx := auth.WithClaims(context.Background(), &auth.Claims{
			Email: "chief@desk.example",
			Role:  auth.RoleSuperAdmin,
			ID:    "jti-1",
		})
		handler(ctx, newRequest())

		logs := buf.String()
		for _, want := range []string{"admin action", "chief@desk.example", "super_admin", "jti-1"} {
			if !strings.Contains(logs, want) {
				t.Errorf("audit log should contain %q:\n%s", want, logs)
			}
		}
	})
}

func TestMiddlewareChaining(t *testing.T) {
	var order []string
	mark := func(name string) core.Middleware {
		return func(next core.Handler) core.Handler {
			return func(ctx context.Context, req core.Request) (core.Response, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	handler := Chain(mark("sanitize"), mark("ratelimit"), mark("auth"))(func(ctx context.Context, req core.Request) (core.Response, error) {
		order = append(order, "handler")
		return core.NewResponse(200, nil), nil
	})
	handler(context.Background(), newRequest())

	if got := strings.Join(order, ","); got != "sanitize,ratelimit,auth,handler" {
		t.Errorf("order = %s", got)
	}
}

func TestChainEmpty(t *testing.T) {
	handler := Chain()(func(ctx context.Context, req core.Request) (core.Response, error) {
		return core.NewResponse(200, nil), nil
	})
	resp, _ := handler(context.Background(), newRequest())
	if resp.StatusCode() != 200 {
		t.Errorf("StatusCode = %d", resp.StatusCode())
	}
}
