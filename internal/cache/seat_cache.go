// Package cache holds the Redis-backed zone seat-map cache: a keyed
// store with an explicit TTL instead of an in-process map with ad hoc
// cleanup. Entries are additionally dropped whenever a seat event is
// published for the zone, so readers converge quickly after a
// transition.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studycafe/seat-reservation/internal/logger"
	"github.com/studycafe/seat-reservation/internal/model"
)

const keyPrefix = "seatmap:"

// SeatMapCache caches the seat list of a zone. A cache failure is never
// surfaced to callers; the browse path just falls through to the
// database.
type SeatMapCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeatMapCache returns a cache bound to the given client.
func NewSeatMapCache(client *redis.Client, ttl time.Duration) *SeatMapCache {
	return &SeatMapCache{client: client, ttl: ttl}
}

func key(zoneID uint64) string { return fmt.Sprintf("%s%d", keyPrefix, zoneID) }

// Get returns the cached seat list for a zone. The second result is
// false on miss or any cache error.
func (c *SeatMapCache) Get(ctx context.Context, zoneID uint64) ([]model.Seat, bool) {
	body, err := c.client.Get(ctx, key(zoneID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("seat map cache read failed", zap.Uint64("zone_id", zoneID), zap.Error(err))
		}
		return nil, false
	}
	var seats []model.Seat
	if err := json.Unmarshal(body, &seats); err != nil {
		return nil, false
	}
	return seats, true
}

// Set stores the seat list for a zone with the configured TTL.
func (c *SeatMapCache) Set(ctx context.Context, zoneID uint64, seats []model.Seat) {
	body, err := json.Marshal(seats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(zoneID), body, c.ttl).Err(); err != nil {
		logger.Warn("seat map cache write failed", zap.Uint64("zone_id", zoneID), zap.Error(err))
	}
}

// Invalidate drops the cached seat list for a zone.
func (c *SeatMapCache) Invalidate(ctx context.Context, zoneID uint64) {
	if err := c.client.Del(ctx, key(zoneID)).Err(); err != nil {
		logger.Warn("seat map cache invalidate failed", zap.Uint64("zone_id", zoneID), zap.Error(err))
	}
}
