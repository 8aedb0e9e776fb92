package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/studycafe/seat-reservation/internal/model"
)

// ZoneRepo provides read access to the zones table. Zones are
// provisioned out of band.
type ZoneRepo struct{ db *sql.DB }

// NewZoneRepo returns a ZoneRepo bound to the provided database.
func NewZoneRepo(db *sql.DB) *ZoneRepo { return &ZoneRepo{db: db} }

// GetByID loads a single zone.
func (r *ZoneRepo) GetByID(ctx context.Context, id uint64) (*model.Zone, error) {
	var z model.Zone
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, latitude, longitude, created_at
           FROM zones WHERE id = ?`, id).
		Scan(&z.ID, &z.Name, &z.Description, &z.Latitude, &z.Longitude, &z.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrZoneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// List returns all zones ordered by name.
func (r *ZoneRepo) List(ctx context.Context) ([]model.Zone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, latitude, longitude, created_at
           FROM zones ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var zones []model.Zone
	for rows.Next() {
		var z model.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Description, &z.Latitude, &z.Longitude, &z.CreatedAt); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}
