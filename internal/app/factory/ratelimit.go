package factory

import (
	"log/slog"

	"deskgate/internal/config"
	"deskgate/internal/middleware/ratelimit"
	"deskgate/internal/storage"
	"deskgate/internal/storage/memory"
	"deskgate/internal/storage/redis"
	"deskgate/pkg/metrics"
)

// CreateLimiters creates one limiter per configured group, in application
// order. Every limiter owns its store. With Redis storage each group gets
// its own key prefix and an in-memory fallback; client may be nil for
// memory storage.
func CreateLimiters(cfg *config.RateLimit, client redis.Client, logger *slog.Logger, m *metrics.Metrics) ([]ratelimit.Rule, error) {
	groups := cfg.Groups.Named()
	rules := make([]ratelimit.Rule, 0, len(groups))

	for _, g := range groups {
		store := createStore(cfg, g, client, logger)

		limiter, err := ratelimit.NewLimiter(ratelimit.Config{
			Name:    g.Name,
			Window:  g.Window,
			Max:     g.Max,
			KeyFunc: ratelimit.ByClientIP,
			Store:   store,
			Logger:  logger.With("middleware", "ratelimit", "group", g.Name),
			Metrics: m,
		})
		if err != nil {
			store.Close()
			CloseLimiters(rules)
			return nil, err
		}

		logger.Info("Rate limit group configured",
			"group", g.Name,
			"window", g.Window,
			"max", g.Max,
			"paths", g.Paths,
			"storage", cfg.Storage,
		)
		rules = append(rules, ratelimit.Rule{Limiter: limiter, Patterns: g.Paths})
	}

	return rules, nil
}

func createStore(cfg *config.RateLimit, g config.NamedGroup, client redis.Client, logger *slog.Logger) storage.WindowStore {
	local := memory.NewStore(&storage.StoreConfig{
		CleanupInterval: cfg.CleanupInterval,
		MaxEntries:      g.MaxKeys,
	})
	if cfg.Storage != "redis" || client == nil {
		return local
	}
	return redis.NewStore(client, cfg.KeyPrefix+":"+g.Name, local, logger.With("store", "redis", "group", g.Name))
}

// Limiters returns the limiters of rules
func Limiters(rules []ratelimit.Rule) []*ratelimit.Limiter {
	limiters := make([]*ratelimit.Limiter, 0, len(rules))
	for _, r := range rules {
		limiters = append(limiters, r.Limiter)
	}
	return limiters
}

// CloseLimiters closes every limiter's store
func CloseLimiters(rules []ratelimit.Rule) error {
	var firstErr error
	for _, r := range rules {
		if err := r.Limiter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
