// Package queue defines the durable messages exchanged over RabbitMQ
// and the background consumer that processes them.
package queue

// ReservationConfirmedEvent is published when a seat is committed into
// a confirmed reservation. It carries enough information for downstream
// consumers to log, notify, or feed analytics without querying the
// primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	SeatID        uint64 `json:"seat_id"`
	SeatName      string `json:"seat_name"`
	ZoneID        uint64 `json:"zone_id"`
	UserID        uint64 `json:"user_id"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	ApprovalRef   string `json:"approval_ref"`
	ConfirmedAt   string `json:"confirmed_at"`
}
