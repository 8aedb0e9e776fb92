package model

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Windows that merely touch at a
// boundary (one ends exactly where the other begins) do not overlap, so
// back-to-back bookings on the same seat are legal.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
