package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spotcircle/internal/domain"
	"spotcircle/internal/repository"
)

const createSpotsTable = `
CREATE TABLE IF NOT EXISTS spots (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	privacy_level TEXT NOT NULL DEFAULT 'PUBLIC',
	photo_key TEXT NOT NULL DEFAULT '',
	creator_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_spots_creator_id ON spots(creator_id);
`

const spotColumns = `id, name, description, latitude, longitude, address, privacy_level, photo_key, creator_id, created_at, updated_at`

type SpotRepository struct {
	db *sql.DB
}

func NewSpotRepository(db *sql.DB) repository.SpotRepository {
	return &SpotRepository{db: db}
}

func (r *SpotRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSpotsTable); err != nil {
		return fmt.Errorf("create spots table: %w", err)
	}
	return nil
}

func (r *SpotRepository) Create(ctx context.Context, spot *domain.Spot) error {
	now := time.Now().UTC()
	spot.CreatedAt = now
	spot.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO spots (id, name, description, latitude, longitude, address, privacy_level, photo_key, creator_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		spot.ID,
		spot.Name,
		spot.Description,
		spot.Latitude,
		spot.Longitude,
		spot.Address,
		string(spot.PrivacyLevel),
		spot.PhotoKey,
		spot.CreatorID,
		spot.CreatedAt,
		spot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert spot: %w", err)
	}
	return nil
}

func (r *SpotRepository) Get(ctx context.Context, id string) (*domain.Spot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+spotColumns+` FROM spots WHERE id = ?`, id)
	return scanSpot(row)
}

func (r *SpotRepository) Update(ctx context.Context, spot *domain.Spot) error {
	spot.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE spots
SET name=?, description=?, latitude=?, longitude=?, address=?, privacy_level=?, updated_at=?
WHERE id=?`,
		spot.Name,
		spot.Description,
		spot.Latitude,
		spot.Longitude,
		spot.Address,
		string(spot.PrivacyLevel),
		spot.UpdatedAt,
		spot.ID,
	)
	if err != nil {
		return fmt.Errorf("update spot: %w", err)
	}
	return requireAffected(res, "update spot")
}

func (r *SpotRepository) SetPhotoKey(ctx context.Context, id, key string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE spots SET photo_key=?, updated_at=? WHERE id=?`, key, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set spot photo: %w", err)
	}
	return requireAffected(res, "set spot photo")
}

func (r *SpotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spots WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete spot: %w", err)
	}
	return requireAffected(res, "delete spot")
}

func (r *SpotRepository) ListVisible(ctx context.Context, viewerID string) ([]domain.Spot, error) {
	query := `SELECT ` + spotColumns + ` FROM spots WHERE privacy_level = ?`
	args := []any{string(domain.PrivacyPublic)}
	if viewerID != "" {
		query += ` OR creator_id = ?`
		args = append(args, viewerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query spots: %w", err)
	}
	defer rows.Close()

	var spots []domain.Spot
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, err
		}
		spots = append(spots, *spot)
	}
	return spots, rows.Err()
}

func (r *SpotRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count spots: %w", err)
	}
	return n, nil
}

func (r *SpotRepository) CountByPrivacy(ctx context.Context, level domain.PrivacyLevel) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spots WHERE privacy_level = ?`, string(level)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count spots by privacy: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result, op string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if aff == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}

func scanSpot(row interface {
	Scan(dest ...any) error
}) (*domain.Spot, error) {
	var (
		spot    domain.Spot
		privacy string
	)
	if err := row.Scan(
		&spot.ID,
		&spot.Name,
		&spot.Description,
		&spot.Latitude,
		&spot.Longitude,
		&spot.Address,
		&privacy,
		&spot.PhotoKey,
		&spot.CreatorID,
		&spot.CreatedAt,
		&spot.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("spot: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan spot: %w", err)
	}
	spot.PrivacyLevel = domain.PrivacyLevel(privacy)
	return &spot, nil
}
