package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studycafe/seat-reservation/internal/model"
)

const seatColumns = `id, zone_id, name, pos_x, pos_y, price,
       window_side, has_outlet, quiet, status,
       hold_user_id, hold_start_time, hold_end_time, hold_expires_at,
       version, created_at, updated_at`

// SeatRepo provides data access to the seats table. Every state
// transition on a seat must go through GetByIDForUpdate + UpdateTx
// inside one transaction so the row stays exclusively locked for the
// whole read-modify-write.
type SeatRepo struct{ db *sql.DB }

// NewSeatRepo returns a SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// SeatFilter narrows ListByZone by the static feature tags. Nil fields
// are ignored. The tags are read-only from the core's perspective.
type SeatFilter struct {
	WindowSide *bool
	HasOutlet  *bool
	Quiet      *bool
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSeat(rs rowScanner) (*model.Seat, error) {
	var (
		s          model.Seat
		status     string
		holdUser   sql.NullInt64
		holdStart  sql.NullTime
		holdEnd    sql.NullTime
		holdExpiry sql.NullTime
	)
	err := rs.Scan(&s.ID, &s.ZoneID, &s.Name, &s.PosX, &s.PosY, &s.Price,
		&s.WindowSide, &s.HasOutlet, &s.Quiet, &status,
		&holdUser, &holdStart, &holdEnd, &holdExpiry,
		&s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Status = model.SeatStatus(status)
	if !s.Status.Valid() {
		return nil, fmt.Errorf("seat %d: unknown status %q", s.ID, status)
	}
	if holdUser.Valid {
		uid := uint64(holdUser.Int64)
		s.HoldUserID = &uid
	}
	if holdStart.Valid {
		t := holdStart.Time
		s.HoldStart = &t
	}
	if holdEnd.Valid {
		t := holdEnd.Time
		s.HoldEnd = &t
	}
	if holdExpiry.Valid {
		t := holdExpiry.Time
		s.HoldExpiresAt = &t
	}
	return &s, nil
}

// GetByID loads a seat without locking it. Suitable only for display
// reads; a stale status is tolerated and corrected by lazy reclamation
// on the next write path.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = ?`, id)
	s, err := scanSeat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeatNotFound
	}
	return s, err
}

// GetByIDForUpdate loads a seat inside tx with an exclusive, blocking
// row lock. The lock is held until the surrounding transaction commits
// or rolls back.
func (r *SeatRepo) GetByIDForUpdate(ctx context.Context, tx Tx, id uint64) (*model.Seat, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = ? FOR UPDATE`, id)
	s, err := scanSeat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeatNotFound
	}
	return s, err
}

// UpdateTx persists the mutable seat fields and bumps the version
// stamp. The WHERE clause carries the version read earlier; a zero-row
// update means another writer slipped in despite the row lock and is
// surfaced as ErrVersionConflict. On success the in-memory version is
// advanced to match the row.
func (r *SeatRepo) UpdateTx(ctx context.Context, tx Tx, s *model.Seat) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE seats
            SET status = ?, hold_user_id = ?, hold_start_time = ?,
                hold_end_time = ?, hold_expires_at = ?, version = version + 1
          WHERE id = ? AND version = ?`,
		string(s.Status), nullUint(s.HoldUserID), nullTime(s.HoldStart),
		nullTime(s.HoldEnd), nullTime(s.HoldExpiresAt), s.ID, s.Version)
	if err != nil {
		return fmt.Errorf("update seat %d: %w", s.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	s.Version++
	return nil
}

// FindExpiredHoldIDs returns the ids of all seats whose hold has lapsed
// as of now. The scan takes no locks; the sweeper re-reads each row FOR
// UPDATE and re-checks expiry before clearing it.
func (r *SeatRepo) FindExpiredHoldIDs(ctx context.Context, now time.Time) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM seats WHERE status = ? AND hold_expires_at < ? ORDER BY id`,
		string(model.SeatHeld), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByZone returns all seats in a zone, optionally narrowed by the
// feature-tag filter, ordered by name.
func (r *SeatRepo) ListByZone(ctx context.Context, zoneID uint64, f SeatFilter) ([]model.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE zone_id = ?`
	args := []any{zoneID}
	if f.WindowSide != nil {
		query += ` AND window_side = ?`
		args = append(args, *f.WindowSide)
	}
	if f.HasOutlet != nil {
		query += ` AND has_outlet = ?`
		args = append(args, *f.HasOutlet)
	}
	if f.Quiet != nil {
		query += ` AND quiet = ?`
		args = append(args, *f.Quiet)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *s)
	}
	return seats, rows.Err()
}

func nullUint(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC()
}
