package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studycafe/seat-reservation/internal/event"
	"github.com/studycafe/seat-reservation/internal/model"
	"github.com/studycafe/seat-reservation/internal/repository"
)

func newReservationFixture(t *testing.T) (*ReservationService, *mockSeatStore, *mockReservationStore, *mockUserStore, *capturePublisher, *captureConfirmations) {
	t.Helper()
	seats := &mockSeatStore{}
	reservations := &mockReservationStore{}
	users := &mockUserStore{}
	pub := &capturePublisher{}
	conf := &captureConfirmations{}
	svc := NewReservationService(stubTxRunner{}, seats, reservations, users, pub, conf, testMetrics())
	svc.now = func() time.Time { return baseTime }
	return svc, seats, reservations, users, pub, conf
}

func TestReserveSeatsSingleSeat(t *testing.T) {
	svc, seats, reservations, users, pub, conf := newReservationFixture(t)

	seat := &model.Seat{ID: 1, ZoneID: 3, Name: "A-01", Status: model.SeatAvailable}
	users.On("Exists", mock.Anything, uint64(42)).Return(true, nil)
	seats.On("GetByIDForUpdate", mock.Anything, nil, uint64(1)).Return(seat, nil)
	reservations.On("ExistsOverlapTx", mock.Anything, nil, uint64(1), hour(2), hour(4)).Return(false, nil)
	reservations.On("CreateTx", mock.Anything, nil, mock.MatchedBy(func(r *model.Reservation) bool {
		return r.SeatID == 1 && r.UserID == 42 &&
			r.Status == model.ReservationReserved &&
			r.ApprovalRef == "pay-77" && r.EntryToken != ""
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(2).(*model.Reservation).ID = 100
	})
	seats.On("UpdateTx", mock.Anything, nil, seat).Return(nil)

	err := svc.ReserveSeats(context.Background(), []uint64{1}, 42, hour(2), hour(4), "pay-77")
	require.NoError(t, err)

	assert.Equal(t, model.SeatReserved, seat.Status)
	assert.Nil(t, seat.HoldUserID)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, event.TypeReserve, events[0].EventType)
	assert.Equal(t, model.SeatReserved, events[0].Status)

	confs := conf.all()
	require.Len(t, confs, 1)
	assert.Equal(t, uint64(100), confs[0].ReservationID)
	assert.Equal(t, "A-01", confs[0].SeatName)
	assert.Equal(t, "pay-77", confs[0].ApprovalRef)
}

func TestReserveSeatsDeduplicatesAndSorts(t *testing.T) {
	svc, seats, reservations, users, _, _ := newReservationFixture(t)

	users.On("Exists", mock.Anything, uint64(42)).Return(true, nil)

	var order []uint64
	for _, id := range []uint64{1, 2} {
		seat := &model.Seat{ID: id, ZoneID: 3, Status: model.SeatAvailable}
		id := id
		seats.On("GetByIDForUpdate", mock.Anything, nil, id).Return(seat, nil).Run(func(mock.Arguments) {
			order = append(order, id)
		})
		reservations.On("ExistsOverlapTx", mock.Anything, nil, id, hour(2), hour(4)).Return(false, nil)
		seats.On("UpdateTx", mock.Anything, nil, seat).Return(nil)
	}
	reservations.On("CreateTx", mock.Anything, nil, mock.Anything).Return(nil)

	// Duplicates and reverse order in, canonical ascending lock order out.
	err := svc.ReserveSeats(context.Background(), []uint64{2, 1, 2, 1}, 42, hour(2), hour(4), "pay-77")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, order)
	reservations.AssertNumberOfCalls(t, "CreateTx", 2)
}

func TestReserveSeatsOverlapRejected(t *testing.T) {
	svc, seats, reservations, users, pub, conf := newReservationFixture(t)

	seat := &model.Seat{ID: 1, ZoneID: 3, Status: model.SeatAvailable}
	users.On("Exists", mock.Anything, uint64(42)).Return(true, nil)
	seats.On("GetByIDForUpdate", mock.Anything, nil, uint64(1)).Return(seat, nil)
	reservations.On("ExistsOverlapTx", mock.Anything, nil, uint64(1), hour(2), hour(4)).Return(true, nil)

	err := svc.ReserveSeats(context.Background(), []uint64{1}, 42, hour(2), hour(4), "pay-77")
	assert.ErrorIs(t, err, ErrOverlapConflict)
	assert.ErrorContains(t, err, "seat 1", "error names the failing seat")
	assert.Empty(t, pub.all())
	assert.Empty(t, conf.all())
}

func TestReserveSeatsBlockedByForeignHold(t *testing.T) {
	svc, seats, reservations, users, _, _ := newReservationFixture(t)

	// Active hold by another user, window disjoint from the requested
	// one: confirmation is still blocked while the slot is negotiated.
	seat := heldSeat(1, 3, 7, hour(6), hour(8), baseTime.Add(2*time.Minute))
	users.On("Exists", mock.Anything, uint64(42)).Return(true, nil)
	seats.On("GetByIDForUpdate", mock.Anything, nil, uint64(1)).Return(seat, nil)
	reservations.On("ExistsOverlapTx", mock.Anything, nil, uint64(1), hour(2), hour(4)).Return(false, nil)

	err := svc.ReserveSeats(context.Background(), []uint64{1}, 42, hour(2), hour(4), "pay-77")
	assert.ErrorIs(t, err, ErrHoldConflict)
}

func TestReserveSeatsOwnHoldConfirmed(t *testing.T) {
	svc, seats, reservations, users, _, _ := newReservationFixture(t)

	seat := heldSeat(1, 3, 42, hour(2), hour(4), baseTime.Add(2*time.Minute))
	users.On("Exists", mock.Anything, uint64(42)).Return(true, nil)
	seats.On("GetByIDForUpdate", mock.Anything, nil, uint64(1)).Return(seat, nil)
	reservations.On("ExistsOverlapTx", mock.Anything, nil, uint64(1), hour(2), hour(4)).Return(false, nil)
	reservations.On("CreateTx", mock.Anything, nil, mock.Anything).Return(nil)
	seats.On("UpdateTx", mock.Anything, nil, seat).Return(nil)

	err := svc.ReserveSeats(context.Background(), []uint64{1}, 42, hour(2), hour(4), "pay-77")
	require.NoError(t, err)
	assert.Equal(t, model.SeatReserved, seat.Status)
	assert.Nil(t, seat.HoldUserID, "hold slot cleared on commit")
}

func TestReserveSeatsExpiredForeignHoldReclaimed(t *testing.T) {
	svc, seats, reservations, users, _, _ := newReservationFixture(t)

	seat := heldSeat(1, 3, 7, hour(2), hour(4), baseTime.Add(-time.Minute))
	users.On("Exists", mock.Anything, uint64(42)).Return(true, nil)
	seats.On("GetByIDForUpdate", mock.Anything, nil, uint64(1)).Return(seat, nil)
	reservations.On("ExistsOverlapTx", mock.Anything, nil, uint64(1), hour(2), hour(4)).Return(false, nil)
	reservations.On("CreateTx", mock.Anything, nil, mock.Anything).Return(nil)
	seats.On("UpdateTx", mock.Anything, nil, seat).Return(nil)

	err := svc.ReserveSeats(context.Background(), []uint64{1}, 42, hour(2), hour(4), "pay-77")
	require.NoError(t, err)
	assert.Equal(t, model.SeatReserved, seat.Status)
}

func TestReserveSeatsBoundaryTouchingWindowsAllowed(t *testing.T) {
	svc, seats, reservations, users, _, _ := newReservationFixture(t)

	// The repository's half-open overlap predicate treats [2h,4h) and
	// [4h,6h) as disjoint; from the service's perspective the check just
	// comes back false.
	seat := &model.Seat{ID: 1, ZoneID: 3, Status: model.SeatReserved}
	users.On("Exists", mock.Anything, uint64(42)).Return(true, nil)
	seats.On("GetByIDForUpdate", mock.Anything, nil, uint64(1)).Return(seat, nil)
	reservations.On("ExistsOverlapTx", mock.Anything, nil, uint64(1), hour(4), hour(6)).Return(false, nil)
	reservations.On("CreateTx", mock.Anything, nil, mock.Anything).Return(nil)
	seats.On("UpdateTx", mock.Anything, nil, seat).Return(nil)

	err := svc.ReserveSeats(context.Background(), []uint64{1}, 42, hour(4), hour(6), "pay-77")
	require.NoError(t, err)
}

func TestReserveSeatsInvalidRange(t *testing.T) {
	svc, _, _, _, _, _ := newReservationFixture(t)
	err := svc.ReserveSeats(context.Background(), []uint64{1}, 42, hour(4), hour(2), "pay-77")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCancelReservationsByApproval(t *testing.T) {
	svc, seats, reservations, _, pub, _ := newReservationFixture(t)

	list := []model.Reservation{
		{ID: 100, SeatID: 1, UserID: 42, Status: model.ReservationReserved},
		{ID: 101, SeatID: 2, UserID: 42, Status: model.ReservationCanceled}, // already reversed
		{ID: 102, SeatID: 3, UserID: 42, Status: model.ReservationReserved},
	}
	reservations.On("FindByApprovalRef", mock.Anything, "pay-77").Return(list, nil)

	for _, seatID := range []uint64{1, 3} {
		seat := &model.Seat{ID: seatID, ZoneID: 3, Status: model.SeatReserved}
		seats.On("GetByIDForUpdate", mock.Anything, nil, seatID).Return(seat, nil)
		seats.On("UpdateTx", mock.Anything, nil, seat).Return(nil)
	}
	reservations.On("CancelTx", mock.Anything, nil, uint64(100)).Return(nil)
	reservations.On("CancelTx", mock.Anything, nil, uint64(102)).Return(nil)

	count, err := svc.CancelReservationsByApproval(context.Background(), "pay-77")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	events := pub.all()
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, event.TypeCancel, ev.EventType)
		assert.Equal(t, model.SeatAvailable, ev.Status)
	}
	reservations.AssertNotCalled(t, "CancelTx", mock.Anything, mock.Anything, uint64(101))
}

func TestCancelReservationsByApprovalSkipsFailingItem(t *testing.T) {
	svc, seats, reservations, _, pub, _ := newReservationFixture(t)

	list := []model.Reservation{
		{ID: 100, SeatID: 1, UserID: 42, Status: model.ReservationReserved},
		{ID: 101, SeatID: 2, UserID: 42, Status: model.ReservationReserved},
	}
	reservations.On("FindByApprovalRef", mock.Anything, "pay-77").Return(list, nil)

	// First item's seat row is gone; second cancels fine.
	seats.On("GetByIDForUpdate", mock.Anything, nil, uint64(1)).Return(nil, repository.ErrSeatNotFound)
	seat2 := &model.Seat{ID: 2, ZoneID: 3, Status: model.SeatReserved}
	seats.On("GetByIDForUpdate", mock.Anything, nil, uint64(2)).Return(seat2, nil)
	seats.On("UpdateTx", mock.Anything, nil, seat2).Return(nil)
	reservations.On("CancelTx", mock.Anything, nil, uint64(101)).Return(nil)

	count, err := svc.CancelReservationsByApproval(context.Background(), "pay-77")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, pub.all(), 1)
}

func TestCancelReservationsByApprovalNoneFound(t *testing.T) {
	svc, _, reservations, _, pub, _ := newReservationFixture(t)
	reservations.On("FindByApprovalRef", mock.Anything, "pay-00").Return([]model.Reservation{}, nil)

	count, err := svc.CancelReservationsByApproval(context.Background(), "pay-00")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, pub.all())
}
