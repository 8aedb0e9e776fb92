package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studycafe/seat-reservation/internal/logger"
)

// Channel is the Redis pub/sub channel the broadcast layer subscribes
// to. All zones share one channel; subscribers filter on zoneId.
const Channel = "seat-events"

// Invalidator is notified whenever a zone's seat state changed, so
// cached seat maps can be dropped.
type Invalidator interface {
	Invalidate(ctx context.Context, zoneID uint64)
}

// RedisPublisher publishes seat events to the seat-events channel.
// Publishing happens on a separate goroutine with its own timeout:
// the triggering transaction has already committed and must not be
// delayed or failed by a slow broker. Errors are logged and swallowed,
// never retried.
type RedisPublisher struct {
	client *redis.Client
	inval  Invalidator // may be nil
}

// NewRedisPublisher returns a publisher backed by the given client.
// inval may be nil when no seat-map cache is configured.
func NewRedisPublisher(client *redis.Client, inval Invalidator) *RedisPublisher {
	return &RedisPublisher{client: client, inval: inval}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ev SeatEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if p.inval != nil {
			p.inval.Invalidate(ctx, ev.ZoneID)
		}

		body, err := json.Marshal(ev)
		if err != nil {
			logger.Error("seat event marshal failed", zap.Error(err))
			return
		}
		if err := p.client.Publish(ctx, Channel, body).Err(); err != nil {
			logger.Error("seat event publish failed",
				zap.String("event_type", string(ev.EventType)),
				zap.Uint64("zone_id", ev.ZoneID),
				zap.Error(err))
		}
	}()
}
