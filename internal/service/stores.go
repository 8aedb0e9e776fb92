package service

import (
	"context"
	"time"

	"github.com/studycafe/seat-reservation/internal/model"
	"github.com/studycafe/seat-reservation/internal/queue"
	"github.com/studycafe/seat-reservation/internal/repository"
)

// SeatStore is the slice of the seat repository the services need.
type SeatStore interface {
	GetByIDForUpdate(ctx context.Context, tx repository.Tx, id uint64) (*model.Seat, error)
	UpdateTx(ctx context.Context, tx repository.Tx, s *model.Seat) error
}

// ReservationStore is the slice of the reservation repository the
// services need.
type ReservationStore interface {
	ExistsOverlapTx(ctx context.Context, tx repository.Tx, seatID uint64, start, end time.Time) (bool, error)
	CreateTx(ctx context.Context, tx repository.Tx, res *model.Reservation) error
	FindByApprovalRef(ctx context.Context, ref string) ([]model.Reservation, error)
	CancelTx(ctx context.Context, tx repository.Tx, id uint64) error
}

// UserStore answers existence checks against the users table.
type UserStore interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// ConfirmationPublisher hands confirmed reservations to the durable
// queue. Best-effort: implementations log and swallow broker failures.
type ConfirmationPublisher interface {
	PublishConfirmed(ev queue.ReservationConfirmedEvent)
}

// NopConfirmationPublisher discards confirmations. Used in tests and
// when the broker is not configured.
type NopConfirmationPublisher struct{}

func (NopConfirmationPublisher) PublishConfirmed(queue.ReservationConfirmedEvent) {}
