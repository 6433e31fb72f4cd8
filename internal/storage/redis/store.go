package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"deskgate/internal/storage"
)

// Client defines the Redis operations the store needs
type Client interface {
	// Eval executes a Lua script
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
	// Del deletes keys
	Del(ctx context.Context, keys ...string) error
	// Close closes the connection
	Close() error
}

// hitScript opens or increments a fixed window atomically.
// Returns {count, milliseconds until the window closes}.
const hitScript = `
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {current, ttl}
`

// Store implements storage.WindowStore on Redis. Windows expire through key
// TTLs, so the key count is bounded by Redis rather than by MaxEntries.
type Store struct {
	client   Client
	prefix   string
	script   string
	fallback storage.WindowStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates a new Redis store. Keys are namespaced under prefix so
// that limiters sharing one Redis never share windows. When fallback is
// non-nil it serves hits while Redis is failing.
func NewStore(client Client, prefix string, fallback storage.WindowStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:   client,
		prefix:   prefix,
		script:   hitScript,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// Hit records a request for key
func (s *Store) Hit(ctx context.Context, key string, window time.Duration) (storage.Window, error) {
	w, err := s.hit(ctx, key, window)
	if err == nil {
		return w, nil
	}
	if s.fallback == nil {
		return storage.Window{}, err
	}

	s.logger.Warn("Redis rate limit error, falling back to in-memory",
		"error", err,
		"key", key,
	)
	return s.fallback.Hit(ctx, key, window)
}

func (s *Store) hit(ctx context.Context, key string, window time.Duration) (storage.Window, error) {
	now := s.now()

	result, err := s.client.Eval(ctx, s.script, []string{s.redisKey(key)}, window.Milliseconds())
	if err != nil {
		return storage.Window{}, fmt.Errorf("failed to execute rate limit script: %w", err)
	}

	res, ok := result.([]interface{})
	if !ok || len(res) != 2 {
		return storage.Window{}, errors.New("invalid rate limit script result")
	}

	count, ok1 := res[0].(int64)
	ttl, ok2 := res[1].(int64)
	if !ok1 || !ok2 {
		return storage.Window{}, errors.New("invalid rate limit script result types")
	}

	resetAt := now.Add(time.Duration(ttl) * time.Millisecond)
	return storage.Window{
		Count:   int(count),
		Start:   resetAt.Add(-window),
		ResetAt: resetAt,
	}, nil
}

// Reset resets the counter for a key
func (s *Store) Reset(ctx context.Context, key string) error {
	if s.fallback != nil {
		if err := s.fallback.Reset(ctx, key); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, s.redisKey(key))
}

// Close closes the store and its fallback. The client is shared between
// stores and is closed by its owner.
func (s *Store) Close() error {
	if s.fallback != nil {
		return s.fallback.Close()
	}
	return nil
}

func (s *Store) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

var _ storage.WindowStore = (*Store)(nil)
