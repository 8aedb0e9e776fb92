// Package worker contains the background sweeper that reclaims seats
// whose hold has lapsed without being renewed, released or confirmed.
package worker

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/studycafe/seat-reservation/internal/event"
	"github.com/studycafe/seat-reservation/internal/logger"
	"github.com/studycafe/seat-reservation/internal/metrics"
	"github.com/studycafe/seat-reservation/internal/model"
	"github.com/studycafe/seat-reservation/internal/repository"
)

// SeatStore is the slice of the seat repository the sweeper needs.
type SeatStore interface {
	FindExpiredHoldIDs(ctx context.Context, now time.Time) ([]uint64, error)
	GetByIDForUpdate(ctx context.Context, tx repository.Tx, id uint64) (*model.Seat, error)
	UpdateTx(ctx context.Context, tx repository.Tx, s *model.Seat) error
}

// Sweeper periodically clears expired holds. It runs independently of
// request traffic and races with interactive mutators on the same seat
// rows, so every clear happens under the same FOR UPDATE row lock the
// request paths use; whoever locks first wins and the loser observes
// the new state.
type Sweeper struct {
	txr       repository.TxRunner
	seats     SeatStore
	publisher event.Publisher
	metrics   *metrics.Metrics
	interval  time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSweeper constructs a Sweeper ticking at the given interval.
func NewSweeper(txr repository.TxRunner, seats SeatStore, pub event.Publisher,
	m *metrics.Metrics, interval time.Duration) *Sweeper {
	return &Sweeper{
		txr:       txr,
		seats:     seats,
		publisher: pub,
		metrics:   m,
		interval:  interval,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is canceled or Stop is
// called. A failed cycle is logged and does not affect the next one.
func (s *Sweeper) Start(ctx context.Context) {
	logger.Info("expired-hold sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("expired-hold sweeper stopped (context canceled)")
			return
		case <-s.stopCh:
			logger.Info("expired-hold sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepExpiredHolds(ctx); err != nil {
				logger.Error("sweep cycle failed", zap.Error(err))
			}
		}
	}
}

// Stop signals the loop to exit and waits for it.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// SweepExpiredHolds performs one sweep cycle and returns the number of
// seats cleared. The candidate scan takes no locks; each candidate row
// is then re-read FOR UPDATE inside the batch transaction and its
// expiry re-checked, so a hold renewed between scan and lock is left
// alone. Cleared seats are announced as one batch event per zone.
func (s *Sweeper) SweepExpiredHolds(ctx context.Context) (int, error) {
	ids, err := s.seats.FindExpiredHoldIDs(ctx, s.now().UTC())
	if err != nil {
		s.metrics.SweepCyclesTotal.WithLabelValues("error").Inc()
		return 0, err
	}
	if len(ids) == 0 {
		s.metrics.SweepCyclesTotal.WithLabelValues("success").Inc()
		return 0, nil
	}

	cleared := make(map[uint64][]uint64) // zone id -> seat ids
	count := 0
	err = s.txr.WithinTx(ctx, func(tx repository.Tx) error {
		for _, id := range ids {
			seat, err := s.seats.GetByIDForUpdate(ctx, tx, id)
			if errors.Is(err, repository.ErrSeatNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			// Re-check under the lock: the hold may have been renewed,
			// released or confirmed since the scan.
			if seat.Status != model.SeatHeld || seat.IsHoldActive(s.now().UTC()) {
				continue
			}
			seat.ClearHold()
			if err := s.seats.UpdateTx(ctx, tx, seat); err != nil {
				return err
			}
			cleared[seat.ZoneID] = append(cleared[seat.ZoneID], seat.ID)
			count++
		}
		return nil
	})
	if err != nil {
		s.metrics.SweepCyclesTotal.WithLabelValues("error").Inc()
		return 0, err
	}

	zones := make([]uint64, 0, len(cleared))
	for z := range cleared {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })
	for _, z := range zones {
		s.publisher.Publish(event.SeatEvent{
			SeatIDs:   cleared[z],
			Status:    model.SeatAvailable,
			EventType: event.TypeSweep,
			ZoneID:    z,
		})
	}

	if count > 0 {
		logger.Info("expired holds swept", zap.Int("count", count))
		s.metrics.SweptSeatsTotal.Add(float64(count))
	}
	s.metrics.SweepCyclesTotal.WithLabelValues("success").Inc()
	return count, nil
}
