// Package cache provides the Redis-backed hierarchy snapshot used by
// eligibility and recall checks. A snapshot read saves a full users
// table scan on every allocation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"telstock/internal/domain/hierarchy"
	"telstock/pkg/logger"
)

const usersSnapshotKey = "telstock:users:snapshot"

// SnapshotCache caches the full user hierarchy in Redis. Every method
// degrades gracefully: when Redis is down or the client is nil, reads
// miss and writes are dropped, so the service keeps working off the
// database.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewSnapshotCache wraps a Redis client. A nil client disables caching
// entirely.
func NewSnapshotCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SnapshotCache{client: client, ttl: ttl, log: log}
}

func (c *SnapshotCache) GetUsers(ctx context.Context) ([]*hierarchy.User, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, usersSnapshotKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnw("hierarchy snapshot read failed", "error", err)
		}
		return nil, false
	}

	var users []*hierarchy.User
	if err := json.Unmarshal(raw, &users); err != nil {
		c.log.Warnw("hierarchy snapshot corrupt, dropping", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return users, true
}

func (c *SnapshotCache) SetUsers(ctx context.Context, users []*hierarchy.User) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(users)
	if err != nil {
		c.log.Warnw("hierarchy snapshot marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, usersSnapshotKey, raw, c.ttl).Err(); err != nil {
		c.log.Warnw("hierarchy snapshot write failed", "error", err)
	}
}

func (c *SnapshotCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, usersSnapshotKey).Err(); err != nil {
		c.log.Warnw("hierarchy snapshot invalidate failed", "error", err)
	}
}
