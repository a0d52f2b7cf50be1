package users

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/lumina-social/lumina/internal/logging"
)

// ExistenceCache answers "has this username/email possibly been registered
// before?" ahead of the authoritative database check. False positives are
// fine (the database decides); false negatives only cost one extra query.
type ExistenceCache interface {
	// MightExist reports whether the value was possibly seen before.
	MightExist(ctx context.Context, kind, value string) bool
	// Remember records the value as taken.
	Remember(ctx context.Context, kind, value string)
}

// RedisExistenceCache backs ExistenceCache with Redis bloom filters
// (BF.EXISTS / BF.ADD), one filter per kind. Any Redis failure degrades to
// "might exist" so the database check still runs.
type RedisExistenceCache struct {
	client *redis.Client
	logger logging.Logger
}

func NewRedisExistenceCache(client *redis.Client, logger logging.Logger) *RedisExistenceCache {
	return &RedisExistenceCache{client: client, logger: logger.With("module", "existence_cache")}
}

func (c *RedisExistenceCache) key(kind string) string {
	return "bloom:" + kind
}

func (c *RedisExistenceCache) MightExist(ctx context.Context, kind, value string) bool {
	exists, err := c.client.Do(ctx, "BF.EXISTS", c.key(kind), value).Bool()
	if err != nil {
		c.logger.Warn(ctx, "bloom lookup failed, assuming hit", "kind", kind, "error", err)
		return true
	}
	return exists
}

func (c *RedisExistenceCache) Remember(ctx context.Context, kind, value string) {
	if err := c.client.Do(ctx, "BF.ADD", c.key(kind), value).Err(); err != nil {
		c.logger.Warn(ctx, "bloom add failed", "kind", kind, "error", err)
	}
}

// NoopExistenceCache is used when no Redis address is configured; every
// check falls through to the database.
type NoopExistenceCache struct{}

func (NoopExistenceCache) MightExist(ctx context.Context, kind, value string) bool { return true }

func (NoopExistenceCache) Remember(ctx context.Context, kind, value string) {}
