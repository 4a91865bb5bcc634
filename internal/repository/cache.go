package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

const (
	snapshotKeyPrefix = "backoffice:snapshot:"
	defaultCacheTTL   = 10 * time.Minute
)

// RedisSnapshotCache implements SnapshotCache using Redis.
type RedisSnapshotCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisSnapshotCache creates a new Redis-based snapshot cache.
func NewRedisSnapshotCache(cfg config.RedisConfig) *RedisSnapshotCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisSnapshotCacheWithClient(client, cfg.TTL)
}

// NewRedisSnapshotCacheWithClient wraps an existing client.
func NewRedisSnapshotCacheWithClient(client redis.UniversalClient, ttl time.Duration) *RedisSnapshotCache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &RedisSnapshotCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLoggerV2("snapshot-cache"),
	}
}

func snapshotKey(slice store.Slice) string {
	return snapshotKeyPrefix + string(slice)
}

// Ping checks the connection.
func (c *RedisSnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Load decodes the cached list of slice into out.
func (c *RedisSnapshotCache) Load(ctx context.Context, slice store.Slice, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, snapshotKey(slice)).Bytes()
	if err == redis.Nil {
		metrics.SnapshotCache.WithLabelValues(string(slice), "miss").Inc()
		c.logger.Debug("Cache miss", logging.Fields{"slice": slice})
		return false, nil
	}
	if err != nil {
		metrics.SnapshotCache.WithLabelValues(string(slice), "error").Inc()
		c.logger.Error("Cache get error", logging.Fields{
			"slice": slice,
			"error": err.Error(),
		})
		return false, err
	}

	if err := json.Unmarshal(data, out); err != nil {
		metrics.SnapshotCache.WithLabelValues(string(slice), "error").Inc()
		return false, err
	}

	metrics.SnapshotCache.WithLabelValues(string(slice), "hit").Inc()
	c.logger.Debug("Cache hit", logging.Fields{"slice": slice})
	return true, nil
}

// Save stores v as the snapshot of slice.
func (c *RedisSnapshotCache) Save(ctx context.Context, slice store.Slice, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, snapshotKey(slice), data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"slice": slice,
			"error": err.Error(),
		})
		return err
	}

	c.logger.Debug("Snapshot cached", logging.Fields{
		"slice": slice,
		"ttl":   c.ttl.String(),
	})
	return nil
}

// Invalidate removes the snapshots of the given slices.
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, slices ...store.Slice) error {
	if len(slices) == 0 {
		return nil
	}
	keys := make([]string, 0, len(slices))
	for _, s := range slices {
		keys = append(keys, snapshotKey(s))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("Cache delete error", logging.Fields{
			"slices": keys,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}
