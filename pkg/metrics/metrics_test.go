package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.RequestsTotal.WithLabelValues("GET", "/api/health", "200").Inc()
	m.SanitizerKeysRemoved.Add(2)
	m.RateLimitRejected.WithLabelValues("login").Inc()
	m.AuthFailures.WithLabelValues("missing_token").Inc()
	m.TokensIssued.Inc()

	if got := testutil.ToFloat64(m.SanitizerKeysRemoved); got != 2 {
		t.Errorf("SanitizerKeysRemoved = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RateLimitRejected.WithLabelValues("login")); got != 1 {
		t.Errorf("RateLimitRejected{login} = %v, want 1", got)
	}

	expected := `
# HELP deskgate_auth_failures_total Total number of rejected admin requests
# TYPE deskgate_auth_failures_total counter
deskgate_auth_failures_total{reason="missing_token"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "deskgate_auth_failures_total"); err != nil {
		t.Error(err)
	}
}

func TestNewWithRegistryTwice(t *testing.T) {
	// Separate registries must not collide
	NewWithRegistry(prometheus.NewRegistry())
	NewWithRegistry(prometheus.NewRegistry())
}
