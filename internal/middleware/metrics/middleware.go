package metrics

import (
	"context"
	"strconv"
	"time"

	"deskgate/internal/core"
	"deskgate/pkg/errors"
	"deskgate/pkg/metrics"
)

// Middleware creates metrics collection middleware for one route. The route
// label is the route pattern, not the request path, so path parameters do not
// create new series.
func Middleware(m *metrics.Metrics, route string) core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(ctx context.Context, req core.Request) (core.Response, error) {
			method := req.Method()

			m.ActiveRequests.WithLabelValues(method).Inc()
			defer m.ActiveRequests.WithLabelValues(method).Dec()

			start := time.Now()
			resp, err := next(ctx, req)
			duration := time.Since(start).Seconds()

			statusCode := 200
			switch {
			case err != nil:
				statusCode = errors.From(err).HTTPStatusCode()
			case resp != nil:
				statusCode = resp.StatusCode()
			}
			statusStr := strconv.Itoa(statusCode)

			m.RequestsTotal.WithLabelValues(method, route, statusStr).Inc()
			m.RequestDuration.WithLabelValues(method, route, statusStr).Observe(duration)

			return resp, err
		}
	}
}
