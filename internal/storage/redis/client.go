package redis

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ClientAdapter adapts a go-redis client to Client. Scripts are sent with
// EVALSHA and only uploaded again when Redis reports them missing.
type ClientAdapter struct {
	client redis.UniversalClient

	mu      sync.Mutex
	scripts map[string]*redis.Script
}

// NewClientAdapter creates a new client adapter
func NewClientAdapter(client redis.UniversalClient) *ClientAdapter {
	return &ClientAdapter{
		client:  client,
		scripts: make(map[string]*redis.Script),
	}
}

// Eval executes a Lua script
func (c *ClientAdapter) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return c.script(script).Run(ctx, c.client, keys, args...).Result()
}

// Del deletes keys
func (c *ClientAdapter) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Close closes the connection
func (c *ClientAdapter) Close() error {
	return c.client.Close()
}

func (c *ClientAdapter) script(src string) *redis.Script {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.scripts[src]
	if !ok {
		s = redis.NewScript(src)
		c.scripts[src] = s
	}
	return s
}

var _ Client = (*ClientAdapter)(nil)
