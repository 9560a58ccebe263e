package cache

import (
	"context"
	"fmt"
	"time"

	"carebook/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// AvailabilityCache stores per-window availability classifications in Redis,
// one hash per (worker, date) so a write for that worker/day can drop every
// cached window at once. A cache failure is never fatal; callers fall back to
// the registries.
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *AvailabilityCache {
	return &AvailabilityCache{
		rdb: rdb,
		ttl: ttl,
		log: log,
	}
}

func key(workerID, date string) string {
	return fmt.Sprintf("availability:%s:%s", workerID, date)
}

func field(start, end string) string {
	return start + "-" + end
}

// Get returns the cached classification for a window, or "" on miss.
func (c *AvailabilityCache) Get(ctx context.Context, workerID, date, start, end string) string {
	if c == nil || c.rdb == nil {
		return ""
	}

	val, err := c.rdb.HGet(ctx, key(workerID, date), field(start, end)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Availability cache read failed", "worker_id", workerID, "date", date, "error", err)
		}
		return ""
	}
	return val
}

// Set stores a window classification. Best effort.
func (c *AvailabilityCache) Set(ctx context.Context, workerID, date, start, end, classification string) {
	if c == nil || c.rdb == nil {
		return
	}

	k := key(workerID, date)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, k, field(start, end), classification)
	pipe.Expire(ctx, k, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("Availability cache write failed", "worker_id", workerID, "date", date, "error", err)
	}
}

// Invalidate drops all cached windows for a worker on one date. Called after
// every working-hours, booking or schedule-event write touching that day so
// stale "available" classifications are never served.
func (c *AvailabilityCache) Invalidate(ctx context.Context, workerID, date string) {
	if c == nil || c.rdb == nil {
		return
	}

	if err := c.rdb.Del(ctx, key(workerID, date)).Err(); err != nil {
		c.log.Warn("Availability cache invalidation failed", "worker_id", workerID, "date", date, "error", err)
	}
}

// InvalidateRange drops cached windows for every date a timestamp interval
// touches, in the given location.
func (c *AvailabilityCache) InvalidateRange(ctx context.Context, workerID string, start, end time.Time, loc *time.Location) {
	if c == nil || c.rdb == nil {
		return
	}

	day := time.Date(start.In(loc).Year(), start.In(loc).Month(), start.In(loc).Day(), 0, 0, 0, 0, loc)
	last := end.In(loc)
	for !day.After(last) {
		c.Invalidate(ctx, workerID, day.Format("2006-01-02"))
		day = day.AddDate(0, 0, 1)
	}
}
