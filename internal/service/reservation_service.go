package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studycafe/seat-reservation/internal/event"
	"github.com/studycafe/seat-reservation/internal/logger"
	"github.com/studycafe/seat-reservation/internal/metrics"
	"github.com/studycafe/seat-reservation/internal/model"
	"github.com/studycafe/seat-reservation/internal/queue"
	"github.com/studycafe/seat-reservation/internal/repository"
)

// ReservationService commits seats into confirmed reservations on
// approval and reverses them on cancellation.
type ReservationService struct {
	txr          repository.TxRunner
	seats        SeatStore
	reservations ReservationStore
	users        UserStore
	publisher    event.Publisher
	confirmed    ConfirmationPublisher
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewReservationService constructs a ReservationService.
func NewReservationService(txr repository.TxRunner, seats SeatStore, reservations ReservationStore,
	users UserStore, pub event.Publisher, confirmed ConfirmationPublisher, m *metrics.Metrics) *ReservationService {
	return &ReservationService{
		txr:          txr,
		seats:        seats,
		reservations: reservations,
		users:        users,
		publisher:    pub,
		confirmed:    confirmed,
		metrics:      m,
		now:          time.Now,
	}
}

// ReserveSeats commits each of the given seats into a confirmed
// reservation for userID over [start, end), linked to the opaque
// approval record. Commitment is atomic per seat, not across the batch:
// every seat gets its own transaction and a failure partway through
// leaves earlier seats committed. The returned error names the failing
// seat so the caller can compensate via CancelReservationsByApproval.
//
// Seat ids are deduplicated and locked in ascending order so two
// concurrent batches over the same seats cannot deadlock.
func (s *ReservationService) ReserveSeats(ctx context.Context, seatIDs []uint64, userID uint64,
	start, end time.Time, approvalRef string) error {
	start, end = start.UTC(), end.UTC()
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrInvalidRange
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrUserNotFound
	}

	// Canonical lock order: sorted, unique.
	ids := make([]uint64, 0, len(seatIDs))
	seen := make(map[uint64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if _, dup := seen[id]; dup || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := s.reserveOne(ctx, id, userID, start, end, approvalRef); err != nil {
			s.metrics.ReservationsTotal.WithLabelValues(holdOutcome(err)).Inc()
			return fmt.Errorf("seat %d: %w", id, err)
		}
		s.metrics.ReservationsTotal.WithLabelValues("success").Inc()
	}
	return nil
}

func (s *ReservationService) reserveOne(ctx context.Context, seatID, userID uint64,
	start, end time.Time, approvalRef string) error {
	var (
		ev        event.SeatEvent
		confirmed queue.ReservationConfirmedEvent
	)
	err := s.txr.WithinTx(ctx, func(tx repository.Tx) error {
		seat, err := s.seats.GetByIDForUpdate(ctx, tx, seatID)
		if err != nil {
			return err
		}
		now := s.now().UTC()

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

		// An active hold by another party blocks confirmation even when
		// its window does not overlap the requested one: the slot is
		// being negotiated.
		if seat.Status == model.SeatHeld && !seat.IsHeldBy(userID) {
			return ErrHoldConflict
		}

		res := &model.Reservation{
			SeatID:      seat.ID,
			UserID:      userID,
			StartTime:   start,
			EndTime:     end,
			Status:      model.ReservationReserved,
			ApprovalRef: approvalRef,
			EntryToken:  uuid.NewString(),
		}
		if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
			return err
		}

		seat.Status = model.SeatReserved
		seat.ClearHold() // clears the slot, keeps the reserved status
		if err := s.seats.UpdateTx(ctx, tx, seat); err != nil {
			return err
		}

		ev = event.SeatEvent{
			SeatIDs:   []uint64{seat.ID},
			Status:    model.SeatReserved,
			ByUser:    &userID,
			EventType: event.TypeReserve,
			ZoneID:    seat.ZoneID,
		}
		confirmed = queue.ReservationConfirmedEvent{
			ReservationID: res.ID,
			SeatID:        seat.ID,
			SeatName:      seat.Name,
			ZoneID:        seat.ZoneID,
			UserID:        userID,
			StartsAt:      start.Format(time.RFC3339),
			EndsAt:        end.Format(time.RFC3339),
			ApprovalRef:   approvalRef,
			ConfirmedAt:   now.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(ev)
	s.confirmed.PublishConfirmed(confirmed)
	return nil
}

// CancelReservationsByApproval reverses every reservation linked to the
// given approval record: each row becomes CANCELED and its seat returns
// to available with the hold slot cleared. Each reversal runs in its
// own transaction under the seat's row lock — the same discipline as
// every other mutator. A failing item is logged and skipped so one bad
// row cannot abort the rest of the batch. Returns the number of
// reservations actually reversed.
func (s *ReservationService) CancelReservationsByApproval(ctx context.Context, approvalRef string) (int, error) {
	list, err := s.reservations.FindByApprovalRef(ctx, approvalRef)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range list {
		res := &list[i]
		if res.Status != model.ReservationReserved {
			continue // already reversed
		}
		var ev event.SeatEvent
		err := s.txr.WithinTx(ctx, func(tx repository.Tx) error {
			seat, err := s.seats.GetByIDForUpdate(ctx, tx, res.SeatID)
			if err != nil {
				return err
			}
			if err := s.reservations.CancelTx(ctx, tx, res.ID); err != nil {
				return err
			}
			seat.Status = model.SeatAvailable
			seat.ClearHold()
			if err := s.seats.UpdateTx(ctx, tx, seat); err != nil {
				return err
			}
			ev = availableEvent(seat, event.TypeCancel, &res.UserID)
			return nil
		})
		if err != nil {
			logger.Error("cancel reservation failed",
				zap.Uint64("reservation_id", res.ID),
				zap.String("approval_ref", approvalRef),
				zap.Error(err))
			continue
		}
		s.publisher.Publish(ev)
		s.metrics.CancellationsTotal.Inc()
		count++
	}
	return count, nil
}
