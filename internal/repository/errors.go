// Package repository provides data access to the seats, reservations,
// users and zones tables. Sentinel errors defined here let higher layers
// distinguish failure scenarios with errors.Is instead of string
// matching.
package repository

import "errors"

// ErrSeatNotFound is returned when the requested seat row does not exist.
var ErrSeatNotFound = errors.New("seat not found")

// ErrUserNotFound is returned when the requested user does not exist or
// is inactive.
var ErrUserNotFound = errors.New("user not found")

// ErrZoneNotFound is returned when the requested zone does not exist.
var ErrZoneNotFound = errors.New("zone not found")

// ErrReservationNotFound is returned when no reservation matches the
// given identifier or entry token.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrAlreadyEntered is returned when an entry token is presented a
// second time.
var ErrAlreadyEntered = errors.New("entry token already used")

// ErrVersionConflict is returned when an update touched zero rows
// because the seat's version stamp moved underneath it. The row lock is
// the primary guard; this is the secondary detector for lost updates.
var ErrVersionConflict = errors.New("seat version conflict")
