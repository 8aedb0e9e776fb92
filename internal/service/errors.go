// Package service implements the seat booking core: soft holds with a
// TTL, confirmed reservations, and their reversal. Every state
// transition runs inside a transaction that holds an exclusive row lock
// on the seat for its entire duration.
package service

import "errors"

// ErrInvalidRange is returned when start >= end or a bound is zero.
var ErrInvalidRange = errors.New("invalid time range")

// ErrOverlapConflict is returned when the requested window collides
// with an existing confirmed reservation on the seat.
var ErrOverlapConflict = errors.New("window overlaps an existing reservation")

// ErrHoldConflict is returned when another user's active hold blocks
// the request.
var ErrHoldConflict = errors.New("seat is held by another user")

// ErrNotHoldOwner is returned when a release is attempted by someone
// other than the hold's owner.
var ErrNotHoldOwner = errors.New("hold belongs to another user")
