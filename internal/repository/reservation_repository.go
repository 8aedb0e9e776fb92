package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studycafe/seat-reservation/internal/model"
)

const reservationColumns = `id, seat_id, user_id, start_time, end_time,
       status, approval_ref, entry_token, entered, created_at, updated_at`

// ReservationRepo provides data access to the reservations table.
type ReservationRepo struct{ db *sql.DB }

// NewReservationRepo returns a ReservationRepo bound to the provided
// database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

func scanReservation(rs rowScanner) (*model.Reservation, error) {
	var (
		r      model.Reservation
		status string
	)
	err := rs.Scan(&r.ID, &r.SeatID, &r.UserID, &r.StartTime, &r.EndTime,
		&status, &r.ApprovalRef, &r.EntryToken, &r.Entered,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = model.ReservationStatus(status)
	if !r.Status.Valid() {
		return nil, fmt.Errorf("reservation %d: unknown status %q", r.ID, status)
	}
	return &r, nil
}

// ExistsOverlapTx reports whether the seat already has a RESERVED
// reservation overlapping the half-open [start, end) window. Runs inside
// tx so the check and the subsequent insert see the same snapshot while
// the seat row is locked.
func (r *ReservationRepo) ExistsOverlapTx(ctx context.Context, tx Tx, seatID uint64, start, end time.Time) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (
            SELECT 1 FROM reservations
             WHERE seat_id = ? AND status = ?
               AND start_time < ? AND end_time > ?)`,
		seatID, string(model.ReservationReserved), end.UTC(), start.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("overlap check for seat %d: %w", seatID, err)
	}
	return exists, nil
}

// CreateTx inserts a reservation row and fills in its generated id.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx Tx, res *model.Reservation) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations
            (seat_id, user_id, start_time, end_time, status, approval_ref, entry_token, entered)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.SeatID, res.UserID, res.StartTime.UTC(), res.EndTime.UTC(),
		string(res.Status), res.ApprovalRef, res.EntryToken, res.Entered)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// FindByApprovalRef returns every reservation linked to the given
// approval record, regardless of status. Display read, no locks.
func (r *ReservationRepo) FindByApprovalRef(ctx context.Context, ref string) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE approval_ref = ?`, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// CancelTx marks a reservation CANCELED. Idempotent: canceling an
// already-canceled row is a no-op.
func (r *ReservationRepo) CancelTx(ctx context.Context, tx Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`,
		string(model.ReservationCanceled), id)
	if err != nil {
		return fmt.Errorf("cancel reservation %d: %w", id, err)
	}
	return nil
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations
          WHERE user_id = ? ORDER BY start_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// GetByEntryToken looks up a reservation by its one-time entry token.
func (r *ReservationRepo) GetByEntryToken(ctx context.Context, token string) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE entry_token = ?`, token)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// MarkEntered consumes an entry token. The conditional update makes the
// token one-time: a second presentation matches zero rows and is
// reported as ErrAlreadyEntered (or ErrReservationNotFound when the
// token never existed).
func (r *ReservationRepo) MarkEntered(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET entered = 1
          WHERE entry_token = ? AND entered = 0 AND status = ?`,
		token, string(model.ReservationReserved))
	if err != nil {
		return fmt.Errorf("mark entered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, lookupErr := r.GetByEntryToken(ctx, token); lookupErr != nil {
			return lookupErr
		}
		return ErrAlreadyEntered
	}
	return nil
}
