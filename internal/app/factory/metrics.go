package factory

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"deskgate/internal/config"
	internalmetrics "deskgate/internal/metrics"
	"deskgate/pkg/metrics"
)

// CreateMetrics creates the collectors on a fresh registry, so that several
// servers can live in one process. Returns nil when metrics are disabled.
func CreateMetrics(cfg *config.Metrics) (*metrics.Metrics, *prometheus.Registry) {
	if !ShouldEnableMetrics(cfg) {
		return nil, nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewWithRegistry(registry), registry
}

// CreateMetricsHandler creates the Prometheus metrics HTTP handler
func CreateMetricsHandler(registry *prometheus.Registry) http.Handler {
	return internalmetrics.Handler(registry)
}

// ShouldEnableMetrics checks if metrics should be enabled based on config
func ShouldEnableMetrics(cfg *config.Metrics) bool {
	return cfg != nil && cfg.Enabled
}
