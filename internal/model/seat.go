package model

import "time"

// SeatStatus is the closed set of states a seat can be in. It replaces
// the free-form status strings of earlier iterations; repositories reject
// any value outside this set on scan.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available" // no active hold, open for holds
	SeatHeld      SeatStatus = "hold"      // soft hold pending confirmation
	SeatReserved  SeatStatus = "reserved"  // confirmed booking in effect
)

// Valid reports whether s is one of the known seat states.
func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatHeld, SeatReserved:
		return true
	}
	return false
}

// Seat describes a physical bookable seat inside a study zone. A seat
// carries at most one soft hold at a time: the hold slot is embedded in
// the row itself rather than stored in a separate table. Two users with
// genuinely disjoint windows therefore cannot hold the same seat
// simultaneously; confirmed reservations have no such limit because they
// live in their own table.
//
// Fields:
//  ID            – primary key identifier.
//  ZoneID        – zone to which this seat belongs (immutable).
//  Name          – display name of the seat within its zone.
//  PosX, PosY    – layout coordinates for the floor map.
//  Price         – price per hour in won.
//  WindowSide    – seat is adjacent to a window.
//  HasOutlet     – seat has a power outlet.
//  Quiet         – seat is inside the quiet area.
//  Status        – current state (available, hold, reserved).
//  HoldUserID    – user owning the active hold (nil when not held).
//  HoldStart     – start of the negotiated hold window (nil when not held).
//  HoldEnd       – end of the negotiated hold window (nil when not held).
//  HoldExpiresAt – instant the hold lapses (nil when not held).
//  Version       – optimistic stamp, bumped on every mutation.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
//
// Invariant: Status == SeatHeld exactly when all four hold fields are
// set; Status == SeatAvailable exactly when all four are nil. A reserved
// seat has its hold fields cleared during commit and any stale value must
// never be read as meaningful.
type Seat struct {
	ID            uint64     // seats.id
	ZoneID        uint64     // seats.zone_id
	Name          string     // seats.name
	PosX          int32      // seats.pos_x
	PosY          int32      // seats.pos_y
	Price         int32      // seats.price
	WindowSide    bool       // seats.window_side
	HasOutlet     bool       // seats.has_outlet
	Quiet         bool       // seats.quiet
	Status        SeatStatus // seats.status
	HoldUserID    *uint64    // seats.hold_user_id (nullable)
	HoldStart     *time.Time // seats.hold_start_time (nullable)
	HoldEnd       *time.Time // seats.hold_end_time (nullable)
	HoldExpiresAt *time.Time // seats.hold_expires_at (nullable)
	Version       int64      // seats.version
	CreatedAt     time.Time  // seats.created_at
	UpdatedAt     time.Time  // seats.updated_at
}

// IsHoldActive reports whether the seat carries a hold that has not yet
// lapsed as of now.
func (s *Seat) IsHoldActive(now time.Time) bool {
	return s.Status == SeatHeld && s.HoldExpiresAt != nil && s.HoldExpiresAt.After(now)
}

// HoldOverlaps reports whether the seat has an active hold whose window
// overlaps the requested [start, end) interval.
func (s *Seat) HoldOverlaps(now, start, end time.Time) bool {
	return s.IsHoldActive(now) &&
		s.HoldStart != nil && s.HoldEnd != nil &&
		Overlaps(*s.HoldStart, *s.HoldEnd, start, end)
}

// IsHeldBy reports whether the seat's hold slot currently belongs to the
// given user. It does not check expiry; combine with IsHoldActive.
func (s *Seat) IsHeldBy(userID uint64) bool {
	return s.Status == SeatHeld && s.HoldUserID != nil && *s.HoldUserID == userID
}

// MarkHold transitions the seat into the held state for userID over the
// [start, end) window, expiring ttl from now. It overwrites whatever was
// in the hold slot before; callers are responsible for the conflict
// checks that decide whether overwriting is legal.
func (s *Seat) MarkHold(userID uint64, start, end, now time.Time, ttl time.Duration) {
	exp := now.Add(ttl)
	s.Status = SeatHeld
	s.HoldUserID = &userID
	s.HoldStart = &start
	s.HoldEnd = &end
	s.HoldExpiresAt = &exp
}

// ClearHold empties the hold slot. A seat that was held becomes
// available; a reserved seat keeps its reserved status and only loses the
// stale hold metadata.
func (s *Seat) ClearHold() {
	s.HoldUserID = nil
	s.HoldStart = nil
	s.HoldEnd = nil
	s.HoldExpiresAt = nil
	if s.Status == SeatHeld {
		s.Status = SeatAvailable
	}
}
