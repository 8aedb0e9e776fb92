package service

import (
	"context"
	"time"

	"github.com/studycafe/seat-reservation/internal/event"
	"github.com/studycafe/seat-reservation/internal/metrics"
	"github.com/studycafe/seat-reservation/internal/model"
	"github.com/studycafe/seat-reservation/internal/repository"
)

// HoldService creates, renews and releases soft holds on seats.
type HoldService struct {
	txr          repository.TxRunner
	seats        SeatStore
	reservations ReservationStore
	users        UserStore
	publisher    event.Publisher
	metrics      *metrics.Metrics
	holdTTL      time.Duration
	now          func() time.Time
}

// NewHoldService constructs a HoldService. holdTTL is how long a hold
// survives without renewal (5 minutes in production).
func NewHoldService(txr repository.TxRunner, seats SeatStore, reservations ReservationStore,
	users UserStore, pub event.Publisher, m *metrics.Metrics, holdTTL time.Duration) *HoldService {
	return &HoldService{
		txr:          txr,
		seats:        seats,
		reservations: reservations,
		users:        users,
		publisher:    pub,
		metrics:      m,
		holdTTL:      holdTTL,
		now:          time.Now,
	}
}

// HoldSeat places or renews a soft hold on a seat for userID over the
// half-open [start, end) window. The whole read-modify-write runs under
// an exclusive lock on the seat row. Outcomes:
//
//   - seat available (or reserved for a disjoint window): a fresh hold
//     is placed, expiring holdTTL from now;
//   - already held by userID: the hold is renewed — the window is
//     replaced if the new one does not overlap the old, and the expiry
//     is pushed out unconditionally;
//   - held by someone else with an overlapping window: ErrHoldConflict;
//   - held by someone else with a disjoint window: the single hold slot
//     is overwritten (the seat carries at most one hold at a time);
//   - window collides with a confirmed reservation: ErrOverlapConflict.
//
// A hold whose expiry has passed is reclaimed before any of the above.
func (s *HoldService) HoldSeat(ctx context.Context, seatID, userID uint64, start, end time.Time) error {
	start, end = start.UTC(), end.UTC()
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		s.metrics.HoldsTotal.WithLabelValues("error").Inc()
		return ErrInvalidRange
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		s.metrics.HoldsTotal.WithLabelValues("error").Inc()
		return err
	}
	if !ok {
		s.metrics.HoldsTotal.WithLabelValues("error").Inc()
		return repository.ErrUserNotFound
	}

	var ev event.SeatEvent
	err = s.txr.WithinTx(ctx, func(tx repository.Tx) error {
		seat, err := s.seats.GetByIDForUpdate(ctx, tx, seatID)
		if err != nil {
			return err
		}
		now := s.now().UTC()

		// Lazy reclamation: a lapsed hold is treated as if the seat were
		// already available.
		if seat.Status == model.SeatHeld && !seat.IsHoldActive(now) {
			seat.ClearHold()
		}

		overlap, err := s.reservations.ExistsOverlapTx(ctx, tx, seatID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlapConflict
		}

		switch {
		case seat.IsHeldBy(userID):
			// Renew. Keep the old window when the new request overlaps it
			// (same negotiation continuing); otherwise switch to the new one.
			if !seat.HoldOverlaps(now, start, end) {
				seat.HoldStart = &start
				seat.HoldEnd = &end
			}
			exp := now.Add(s.holdTTL)
			seat.HoldExpiresAt = &exp
		case seat.Status == model.SeatHeld:
			if seat.HoldOverlaps(now, start, end) {
				return ErrHoldConflict
			}
			// Disjoint window: the single hold slot is overwritten.
			seat.MarkHold(userID, start, end, now, s.holdTTL)
		default:
			seat.MarkHold(userID, start, end, now, s.holdTTL)
		}

		if err := s.seats.UpdateTx(ctx, tx, seat); err != nil {
			return err
		}
		holdUntil := *seat.HoldExpiresAt
		ev = event.SeatEvent{
			SeatIDs:   []uint64{seat.ID},
			Status:    model.SeatHeld,
			HoldUntil: &holdUntil,
			ByUser:    &userID,
			EventType: event.TypeHold,
			ZoneID:    seat.ZoneID,
		}
		return nil
	})
	if err != nil {
		s.metrics.HoldsTotal.WithLabelValues(holdOutcome(err)).Inc()
		return err
	}

	s.publisher.Publish(ev)
	s.metrics.HoldsTotal.WithLabelValues("success").Inc()
	return nil
}

// ReleaseHold clears the hold on a seat if it belongs to userID.
// Releasing a seat that is not held is a no-op; releasing someone
// else's hold is ErrNotHoldOwner. A lapsed hold is reclaimed first, so
// releasing an expired hold also succeeds as a no-op.
func (s *HoldService) ReleaseHold(ctx context.Context, seatID, userID uint64) error {
	var (
		ev       event.SeatEvent
		released bool
	)
	err := s.txr.WithinTx(ctx, func(tx repository.Tx) error {
		seat, err := s.seats.GetByIDForUpdate(ctx, tx, seatID)
		if err != nil {
			return err
		}
		now := s.now().UTC()

		if seat.Status == model.SeatHeld && !seat.IsHoldActive(now) {
			// Reclaim the lapsed hold; there is nothing left to release.
			seat.ClearHold()
			if err := s.seats.UpdateTx(ctx, tx, seat); err != nil {
				return err
			}
			ev = availableEvent(seat, event.TypeRelease, nil)
			released = true
			return nil
		}
		if seat.Status != model.SeatHeld {
			return nil // idempotent no-op
		}
		if !seat.IsHeldBy(userID) {
			return ErrNotHoldOwner
		}

		seat.ClearHold()
		if err := s.seats.UpdateTx(ctx, tx, seat); err != nil {
			return err
		}
		ev = availableEvent(seat, event.TypeRelease, &userID)
		released = true
		return nil
	})
	if err != nil {
		s.metrics.ReleasesTotal.WithLabelValues(releaseOutcome(err)).Inc()
		return err
	}

	if released {
		s.publisher.Publish(ev)
		s.metrics.ReleasesTotal.WithLabelValues("success").Inc()
	} else {
		s.metrics.ReleasesTotal.WithLabelValues("noop").Inc()
	}
	return nil
}

// availableEvent builds the notification for a seat returning to the
// available state.
func availableEvent(seat *model.Seat, t event.Type, byUser *uint64) event.SeatEvent {
	return event.SeatEvent{
		SeatIDs:   []uint64{seat.ID},
		Status:    model.SeatAvailable,
		ByUser:    byUser,
		EventType: t,
		ZoneID:    seat.ZoneID,
	}
}

func holdOutcome(err error) string {
	switch err {
	case ErrOverlapConflict:
		return "overlap_conflict"
	case ErrHoldConflict:
		return "hold_conflict"
	default:
		return "error"
	}
}

func releaseOutcome(err error) string {
	if err == ErrNotHoldOwner {
		return "not_owner"
	}
	return "error"
}
