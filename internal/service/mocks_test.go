package service

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"

	"github.com/studycafe/seat-reservation/internal/event"
	"github.com/studycafe/seat-reservation/internal/metrics"
	"github.com/studycafe/seat-reservation/internal/model"
	"github.com/studycafe/seat-reservation/internal/queue"
	"github.com/studycafe/seat-reservation/internal/repository"
)

// stubTxRunner runs the callback without a real transaction. The nil Tx
// is never touched because the stores are mocked.
type stubTxRunner struct{ beginErr error }

func (s stubTxRunner) WithinTx(_ context.Context, fn func(tx repository.Tx) error) error {
	if s.beginErr != nil {
		return s.beginErr
	}
	return fn(nil)
}

type mockSeatStore struct{ mock.Mock }

func (m *mockSeatStore) GetByIDForUpdate(ctx context.Context, tx repository.Tx, id uint64) (*model.Seat, error) {
	args := m.Called(ctx, tx, id)
	if s, ok := args.Get(0).(*model.Seat); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSeatStore) UpdateTx(ctx context.Context, tx repository.Tx, s *model.Seat) error {
	return m.Called(ctx, tx, s).Error(0)
}

type mockReservationStore struct{ mock.Mock }

func (m *mockReservationStore) ExistsOverlapTx(ctx context.Context, tx repository.Tx, seatID uint64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, tx, seatID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *mockReservationStore) CreateTx(ctx context.Context, tx repository.Tx, res *model.Reservation) error {
	return m.Called(ctx, tx, res).Error(0)
}

func (m *mockReservationStore) FindByApprovalRef(ctx context.Context, ref string) ([]model.Reservation, error) {
	args := m.Called(ctx, ref)
	if list, ok := args.Get(0).([]model.Reservation); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReservationStore) CancelTx(ctx context.Context, tx repository.Tx, id uint64) error {
	return m.Called(ctx, tx, id).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Exists(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// capturePublisher records published seat events in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []event.SeatEvent
}

func (p *capturePublisher) Publish(ev event.SeatEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *capturePublisher) all() []event.SeatEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.SeatEvent(nil), p.events...)
}

// captureConfirmations records the confirmations handed to the queue.
type captureConfirmations struct {
	mu     sync.Mutex
	events []queue.ReservationConfirmedEvent
}

func (p *captureConfirmations) PublishConfirmed(ev queue.ReservationConfirmedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *captureConfirmations) all() []queue.ReservationConfirmedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.ReservationConfirmedEvent(nil), p.events...)
}

func testMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry())
}

func ptrUint(v uint64) *uint64       { return &v }
func ptrTime(v time.Time) *time.Time { return &v }

// heldSeat builds a seat carrying an active hold.
func heldSeat(id, zone, user uint64, start, end, expires time.Time) *model.Seat {
	return &model.Seat{
		ID:            id,
		ZoneID:        zone,
		Status:        model.SeatHeld,
		HoldUserID:    ptrUint(user),
		HoldStart:     ptrTime(start),
		HoldEnd:       ptrTime(end),
		HoldExpiresAt: ptrTime(expires),
	}
}
