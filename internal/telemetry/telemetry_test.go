package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"deskgate/internal/core"
	"deskgate/pkg/errors"
)

func newRecorded(t *testing.T) (*Telemetry, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tel, err := New(context.Background(), Config{
		Enabled:     true,
		ServiceName: "deskgate-test",
		SampleRate:  1,
	}, WithSpanProcessor(rec))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })
	return tel, rec
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tel.Enabled() {
		t.Error("Enabled() = true, want false")
	}
	if tel.Tracer() == nil {
		t.Fatal("expected a no-op tracer")
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, "root:AlwaysOffSampler"},
		{0.25, "root:TraceIDRatioBased"},
		{1, "root:AlwaysOnSampler"},
	}
	for _, tt := range tests {
		desc := sampler(tt.rate).Description()
		if !strings.Contains(desc, tt.want) {
			t.Errorf("sampler(%v) = %q, want containing %q", tt.rate, desc, tt.want)
		}
	}
}

func TestWrapHTTP(t *testing.T) {
	tel, rec := newRecorded(t)

	r := chi.NewRouter()
	r.Use(tel.WrapHTTP)
	r.Get("/api/debug/ratelimit/{group}", func(w http.ResponseWriter, r *http.Request) {
		if TraceID(r.Context()) == "" {
			t.Error("handler context should carry a trace id")
		}
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/debug/ratelimit/login", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "GET /api/debug/ratelimit/{group}" {
		t.Errorf("span name = %q", span.Name())
	}
	if v, ok := attr(span.Attributes(), "http.response.status_code"); !ok || v.AsInt64() != http.StatusTeapot {
		t.Errorf("status attribute = %v", v)
	}
	if v, ok := attr(span.Attributes(), "http.route"); !ok || v.AsString() != "/api/debug/ratelimit/{group}" {
		t.Errorf("route attribute = %v", v)
	}
	if span.Status().Code == codes.Error {
		t.Error("4xx should not mark the server span as failed")
	}
}

func TestWrapHTTP_PropagatesParent(t *testing.T) {
	tel, rec := newRecorded(t)

	h := tel.WrapHTTP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	h.ServeHTTP(httptest.NewRecorder(), req)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got := spans[0].SpanContext().TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace id = %s, want parent's", got)
	}
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		handler    core.Handler
		wantStatus int64
		wantError  bool
	}{
		{
			name: "success",
			handler: func(ctx context.Context, req core.Request) (core.Response, error) {
				return core.NewResponse(http.StatusAccepted, nil), nil
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name: "client error",
			handler: func(ctx context.Context, req core.Request) (core.Response, error) {
				return nil, errors.NewError(errors.ErrorTypeRateLimit, "Too many requests")
			},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name: "server error",
			handler: func(ctx context.Context, req core.Request) (core.Response, error) {
				return nil, errors.NewError(errors.ErrorTypeInternal, "Admin auth is not configured")
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tel, rec := newRecorded(t)
			req := core.NewRequest("req-1", http.MethodPost, "/api/ingest/events", "", "", nil, nil, context.Background())

			_, _ = tel.Middleware("ingest")(tt.handler)(context.Background(), req)

			spans := rec.Ended()
			if len(spans) != 1 {
				t.Fatalf("got %d spans, want 1", len(spans))
			}
			span := spans[0]
			if span.SpanKind().String() != "internal" {
				t.Errorf("span kind = %v", span.SpanKind())
			}
			if v, _ := attr(span.Attributes(), "http.response.status_code"); v.AsInt64() != tt.wantStatus {
				t.Errorf("status = %d, want %d", v.AsInt64(), tt.wantStatus)
			}
			if v, _ := attr(span.Attributes(), "deskgate.request_id"); v.AsString() != "req-1" {
				t.Errorf("request id = %q", v.AsString())
			}
			if got := span.Status().Code == codes.Error; got != tt.wantError {
				t.Errorf("error status = %v, want %v", got, tt.wantError)
			}
		})
	}
}

func TestTraceID_Empty(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID() = %q, want empty", got)
	}
}
