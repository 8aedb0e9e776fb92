package model

import "time"

// ReservationStatus is the closed set of lifecycle states for a
// confirmed booking.
type ReservationStatus string

const (
	ReservationReserved ReservationStatus = "RESERVED"
	ReservationCanceled ReservationStatus = "CANCELED"
)

// Valid reports whether s is one of the known reservation states.
func (s ReservationStatus) Valid() bool {
	return s == ReservationReserved || s == ReservationCanceled
}

// Reservation records a confirmed, time-bounded booking of one seat by
// one user, linked to exactly one approval record. The approval ref is
// opaque to the core: payment verification happens in an external
// collaborator and only its reference is stored. The entry token and
// entered flag are reservation-scoped and mutated by the external
// check-in flow, never by the booking paths.
//
// Fields:
//  ID          – primary key identifier.
//  SeatID      – seat being booked.
//  UserID      – user who owns the booking.
//  StartTime   – start of the booked interval (inclusive).
//  EndTime     – end of the booked interval (exclusive).
//  Status      – RESERVED or CANCELED.
//  ApprovalRef – opaque reference to the approval/payment record.
//  EntryToken  – one-time token presented at check-in.
//  Entered     – whether the user has already checked in.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
//
// Invariant: for a fixed seat, no two RESERVED rows may have
// overlapping [StartTime, EndTime) intervals.
type Reservation struct {
	ID          uint64            // reservations.id
	SeatID      uint64            // reservations.seat_id
	UserID      uint64            // reservations.user_id
	StartTime   time.Time         // reservations.start_time
	EndTime     time.Time         // reservations.end_time
	Status      ReservationStatus // reservations.status
	ApprovalRef string            // reservations.approval_ref
	EntryToken  string            // reservations.entry_token
	Entered     bool              // reservations.entered
	CreatedAt   time.Time         // reservations.created_at
	UpdatedAt   time.Time         // reservations.updated_at
}
