package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSON caches loader results as JSON documents under a key prefix.
type JSON struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewJSON instantiates the cache helper. A nil client disables caching and
// every fetch goes to the loader.
func NewJSON(client *redis.Client, prefix string, ttl time.Duration) *JSON {
	return &JSON{client: client, prefix: prefix, ttl: ttl}
}

// Key composes a cache key under the configured prefix.
func (c *JSON) Key(parts ...string) string {
	if c == nil {
		return strings.Join(parts, ":")
	}
	return strings.Join(append([]string{c.prefix}, parts...), ":")
}

// Fetch loads a cached value into dest or populates it using the loader.
// Redis failures on read fall through to the loader.
func (c *JSON) Fetch(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return load(ctx, dest, loader, nil)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(payload, dest); jsonErr == nil {
			return nil
		}
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return ctx.Err()
	}
	return load(ctx, dest, loader, func(raw []byte) error {
		return c.client.Set(ctx, key, raw, c.ttl).Err()
	})
}

func load(ctx context.Context, dest any, loader func(context.Context) (any, error), store func([]byte) error) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if store != nil {
		// A failed write leaves the value uncached; the caller still gets it.
		_ = store(raw)
	}
	return json.Unmarshal(raw, dest)
}
