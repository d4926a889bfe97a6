package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Material cache keys. Every material write drops MaterialPattern.
const (
	MaterialStatsKey = "materiais:stats"
	StockValueKey    = "materiais:valor-estoque"
	MaterialPattern  = "materiais:*"
)

// Client wraps redis with graceful degradation: a nil *Client, or one whose
// server is unreachable, behaves as an always-missing cache.
type Client struct {
	rdb *redis.Client
}

// Open connects to url (redis://...). An empty url yields a nil client.
func Open(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &Client{rdb: rdb}, nil
}

func New(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Redis exposes the underlying client; nil when caching is disabled.
func (c *Client) Redis() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Client) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if c == nil {
		return
	}
	c.rdb.Set(ctx, key, data, ttl)
}

// GetJSON decodes a cached value into dest. It reports false on miss or
// undecodable data.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern.
func (c *Client) InvalidatePattern(ctx context.Context, pattern string) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iter.Err() == nil && len(keys) > 0 {
		c.rdb.Del(ctx, keys...)
	}
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Enabled() bool {
	return c != nil
}
