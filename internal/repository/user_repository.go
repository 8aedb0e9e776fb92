package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/studycafe/seat-reservation/internal/model"
)

// UserRepo provides read access to the users table. The booking core
// never creates or mutates users; it only verifies existence before
// attaching a hold or reservation.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetByID loads an active user.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, is_active, created_at
           FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists reports whether an active user with the given id exists.
func (r *UserRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = ? AND is_active = 1)`, id).
		Scan(&exists)
	return exists, err
}
