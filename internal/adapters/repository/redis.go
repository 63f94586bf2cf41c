package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "nova:"

// RedisOption configures a Redis gateway.
type RedisOption func(*Redis)

// WithKeyPrefix namespaces every key. The default is "nova:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// Redis stores each key as a plain string value.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// DialRedis connects to a Redis URL such as "redis://localhost:6379/0" and
// verifies the connection.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Write sets every entry inside one MULTI/EXEC so the snapshot lands
// together.
func (r *Redis) Write(ctx context.Context, entries map[string][]byte) error {
	defer observe(BackendRedis, "write", time.Now())
	keys := sortedKeys(entries)
	if err := validKeys(keys); err != nil {
		return err
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Set(ctx, r.key(k), entries[k], 0)
		}
		return nil
	})
	if err != nil {
		return backendErr(BackendRedis, "write", err)
	}
	return nil
}

func (r *Redis) Read(ctx context.Context, keys []string) (map[string][]byte, error) {
	defer observe(BackendRedis, "read", time.Now())
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	vals, err := r.rdb.MGet(ctx, full...).Result()
	if err != nil {
		return nil, backendErr(BackendRedis, "read", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	return out, nil
}

func (r *Redis) Delete(ctx context.Context, keys []string) error {
	defer observe(BackendRedis, "delete", time.Now())
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.rdb.Del(ctx, full...).Err(); err != nil {
		return backendErr(BackendRedis, "delete", err)
	}
	return nil
}
