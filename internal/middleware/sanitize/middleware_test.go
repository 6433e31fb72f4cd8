package sanitize

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"deskgate/internal/core"
	"deskgate/internal/sanitize"
	"deskgate/pkg/errors"
	"deskgate/pkg/metrics"
)

func newRequest(payload *core.Payload) core.Request {
	return core.NewRequest("req-1", "POST", "/api/ingest/events", "/api/ingest/events",
		"127.0.0.1:4000", nil, payload, context.Background())
}

func nested(depth int) any {
	var v any = "leaf"
	for i := 0; i < depth; i++ {
		v = map[string]any{"child": v}
	}
	return v
}

func TestMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		payload     *core.Payload
		wantCalled  bool
		wantMessage string
	}{
		{
			name: "clean payload passes",
			payload: &core.Payload{
				Body: map[string]any{"headline": "Markets rally"},
			},
			wantCalled: true,
		},
		{
			name: "blocked keys are stripped and request proceeds",
			payload: &core.Payload{
				Body:   map[string]any{"__proto__": map[string]any{"isAdmin": true}, "ok": 1},
				Query:  map[string][]string{"constructor": {"x"}},
				Params: map[string]string{"prototype": "y"},
			},
			wantCalled: true,
		},
		{
			name:        "deep payload rejected",
			payload:     &core.Payload{Body: nested(25)},
			wantMessage: "Payload too deeply nested",
		},
		{
			name: "large payload rejected",
			payload: func() *core.Payload {
				items := make([]any, 6000)
				for i := range items {
					items[i] = i
				}
				return &core.Payload{Body: items}
			}(),
			wantMessage: "Payload too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var seen *core.Payload
			handler := Middleware(Config{Logger: logger})(func(ctx context.Context, req core.Request) (core.Response, error) {
				called = true
				seen = req.Payload()
				return core.NewResponse(200, nil), nil
			})

			_, err := handler(context.Background(), newRequest(tt.payload))

			if called != tt.wantCalled {
				t.Fatalf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantMessage != "" {
				var e *errors.Error
				if !errors.As(err, &e) {
					t.Fatalf("expected structured error, got %v", err)
				}
				if e.Type != errors.ErrorTypeBadRequest || e.Message != tt.wantMessage {
					t.Errorf("error = %s %q, want bad_request %q", e.Type, e.Message, tt.wantMessage)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if body, ok := seen.Body.(map[string]any); ok {
				if _, found := body["__proto__"]; found {
					t.Error("__proto__ reached the handler")
				}
			}
			if _, found := seen.Query["constructor"]; found {
				t.Error("constructor reached the handler")
			}
			if _, found := seen.Params["prototype"]; found {
				t.Error("prototype reached the handler")
			}
		})
	}
}

func TestMiddlewareMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	handler := Middleware(Config{
		Sanitizer: sanitize.New(sanitize.Config{MaxDepth: 2}),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:   m,
	})(func(ctx context.Context, req core.Request) (core.Response, error) {
		return core.NewResponse(200, nil), nil
	})

	_, _ = handler(context.Background(), newRequest(&core.Payload{
		Body: map[string]any{"__proto__": 1, "constructor": 2},
	}))
	_, _ = handler(context.Background(), newRequest(&core.Payload{Body: nested(5)}))

	if got := testutil.ToFloat64(m.SanitizerKeysRemoved); got != 2 {
		t.Errorf("keys removed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SanitizerRejected.WithLabelValues("too_deep")); got != 1 {
		t.Errorf("too_deep rejections = %v, want 1", got)
	}
}
