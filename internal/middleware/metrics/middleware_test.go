package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"deskgate/internal/core"
	"deskgate/pkg/errors"
	"deskgate/pkg/metrics"
)

func newRequest(method, path string) core.Request {
	return core.NewRequest("test-request-id", method, path, path, "127.0.0.1:12345", nil, nil, context.Background())
}

func TestMiddleware(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	ok := Middleware(m, "/api/health")(func(ctx context.Context, req core.Request) (core.Response, error) {
		return core.NewResponse(200, nil), nil
	})
	for i := 0; i < 3; i++ {
		if _, err := ok(context.Background(), newRequest("GET", "/api/health")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/health", "200")); got != 3 {
		t.Errorf("requests = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.ActiveRequests.WithLabelValues("GET")); got != 0 {
		t.Errorf("active requests = %v, want 0", got)
	}
}

func TestMiddlewareErrorStatus(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	route := "/api/debug/ratelimit/{group}/{key}"

	denied := Middleware(m, route)(func(ctx context.Context, req core.Request) (core.Response, error) {
		return nil, errors.NewError(errors.ErrorTypeForbidden, "Forbidden")
	})
	denied(context.Background(), newRequest("DELETE", "/api/debug/ratelimit/login/203.0.113.4"))
	denied(context.Background(), newRequest("DELETE", "/api/debug/ratelimit/api/203.0.113.5"))

	// Both requests share the route pattern label
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("DELETE", route, "403")); got != 2 {
		t.Errorf("403 requests = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.RequestDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}
