package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"deskgate/internal/storage"
	"deskgate/pkg/errors"
	"deskgate/pkg/metrics"
)

// Header names set on every limited response
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// DeniedMessage is the client-facing message for a rejected request
const DeniedMessage = "Too many requests. Please try again later."

// Decision is the outcome of counting one request
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Headers returns the rate limit headers describing the decision
func (d Decision) Headers(now time.Time) map[string]string {
	h := map[string]string{
		HeaderLimit:     strconv.Itoa(d.Limit),
		HeaderRemaining: strconv.Itoa(d.Remaining),
		HeaderReset:     strconv.FormatInt(int64(math.Ceil(float64(d.ResetAt.UnixMilli())/1000)), 10),
	}
	if !d.Allowed {
		h[HeaderRetryAfter] = strconv.Itoa(d.RetryAfter(now))
	}
	return h
}

// RetryAfter returns the whole seconds until the window closes, at least 1
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(math.Ceil(d.ResetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// GroupStats describes a limiter for the debug endpoints
type GroupStats struct {
	Name   string         `json:"name"`
	Max    int            `json:"max"`
	Window string         `json:"window"`
	Store  *storage.Stats `json:"store,omitempty"`
}

// Limiter counts requests per key over fixed windows anchored at the first
// request of each window
type Limiter struct {
	name    string
	max     int
	window  time.Duration
	keyFunc KeyFunc
	store   storage.WindowStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewLimiter creates a limiter from cfg
func NewLimiter(cfg Config) (*Limiter, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("rate limiter %q: store is required", cfg.Name)
	}
	if cfg.Max <= 0 {
		return nil, fmt.Errorf("rate limiter %q: max must be positive", cfg.Name)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limiter %q: window must be positive", cfg.Name)
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ByClientIP
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Limiter{
		name:    cfg.Name,
		max:     cfg.Max,
		window:  cfg.Window,
		keyFunc: cfg.KeyFunc,
		store:   cfg.Store,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     time.Now,
	}, nil
}

// Name returns the group name
func (l *Limiter) Name() string {
	return l.name
}

// Allow counts one request for key. Store failures admit the request.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	w, err := l.store.Hit(ctx, key, l.window)
	if err != nil {
		if l.metrics != nil {
			l.metrics.RateLimitFallback.WithLabelValues(l.name).Inc()
		}
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max, ResetAt: l.now().Add(l.window)},
			errors.Wrap(err, "rate limit store")
	}

	d := Decision{
		Allowed:   w.Count <= l.max,
		Limit:     l.max,
		Remaining: max(0, l.max-w.Count),
		ResetAt:   w.ResetAt,
	}

	if l.metrics != nil {
		l.metrics.RateLimitHits.WithLabelValues(l.name).Inc()
		if !d.Allowed {
			l.metrics.RateLimitRejected.WithLabelValues(l.name).Inc()
		}
		if r, ok := l.store.(storage.StatsReporter); ok {
			l.metrics.RateLimitKeys.WithLabelValues(l.name).Set(float64(r.Stats().Keys))
		}
	}

	return d, nil
}

// Reset forgets the window for key
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}

// Stats returns the limiter configuration and store occupancy
func (l *Limiter) Stats() GroupStats {
	s := GroupStats{
		Name:   l.name,
		Max:    l.max,
		Window: l.window.String(),
	}
	if r, ok := l.store.(storage.StatsReporter); ok {
		st := r.Stats()
		s.Store = &st
	}
	return s
}

// Close closes the limiter's store
func (l *Limiter) Close() error {
	return l.store.Close()
}

// deny builds the 429 error for a rejected decision
func (l *Limiter) deny(d Decision) *errors.Error {
	err := errors.NewError(errors.ErrorTypeRateLimit, DeniedMessage).
		WithDetail("group", l.name)
	for k, v := range d.Headers(l.now()) {
		err = err.WithHeader(k, v)
	}
	return err
}
