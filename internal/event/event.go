// Package event defines the seat state-change notifications the core
// emits and the publisher that hands them to the external broadcast
// layer. Delivery to clients (WebSocket or otherwise) is someone else's
// job; the Redis channel is the boundary.
package event

import (
	"time"

	"github.com/studycafe/seat-reservation/internal/model"
)

// Type names the transition that produced an event.
type Type string

const (
	TypeHold    Type = "hold"
	TypeRelease Type = "release"
	TypeReserve Type = "reserve"
	TypeCancel  Type = "cancel"
	TypeSweep   Type = "sweep"
)

// SeatEvent is the wire payload consumed by the broadcast layer. Field
// names match what the frontend seat map already expects.
type SeatEvent struct {
	SeatIDs   []uint64         `json:"seatIds"`
	Status    model.SeatStatus `json:"status"`
	HoldUntil *time.Time       `json:"holdUntil"`
	ByUser    *uint64          `json:"byUser"`
	EventType Type             `json:"eventType"`
	ZoneID    uint64           `json:"zoneId"`
}

// Publisher delivers seat events to the broadcast layer. Publication is
// fire-and-forget: it must never block or fail the transaction that
// triggered it.
type Publisher interface {
	Publish(ev SeatEvent)
}

// NopPublisher discards events. Used in tests and when Redis is down at
// startup.
type NopPublisher struct{}

func (NopPublisher) Publish(SeatEvent) {}
