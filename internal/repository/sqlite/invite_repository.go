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

const createInvitesTable = `
CREATE TABLE IF NOT EXISTS invites (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	created_by TEXT NOT NULL,
	is_used INTEGER NOT NULL DEFAULT 0,
	used_at DATETIME NULL,
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL
);
`

type InviteRepository struct {
	db *sql.DB
}

func NewInviteRepository(db *sql.DB) repository.InviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createInvitesTable); err != nil {
		return fmt.Errorf("create invites table: %w", err)
	}
	return nil
}

func (r *InviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	invite.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO invites (id, code, email, created_by, is_used, used_at, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		invite.ID,
		invite.Code,
		invite.Email,
		invite.CreatedBy,
		invite.IsUsed,
		nullTime(invite.UsedAt),
		invite.ExpiresAt.UTC(),
		invite.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert invite: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func (r *InviteRepository) GetByCode(ctx context.Context, code string) (*domain.Invite, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, code, email, created_by, is_used, used_at, expires_at, created_at
FROM invites
WHERE code = ?`, code)
	return scanInvite(row)
}

func (r *InviteRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE invites SET is_used=1, used_at=? WHERE id=?`, usedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark invite used: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark invite used rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("mark invite used: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *InviteRepository) List(ctx context.Context) ([]domain.Invite, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, code, email, created_by, is_used, used_at, expires_at, created_at
FROM invites
ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query invites: %w", err)
	}
	defer rows.Close()

	var invites []domain.Invite
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *invite)
	}
	return invites, rows.Err()
}

func scanInvite(row interface {
	Scan(dest ...any) error
}) (*domain.Invite, error) {
	var (
		invite domain.Invite
		usedAt sql.NullTime
	)
	if err := row.Scan(
		&invite.ID,
		&invite.Code,
		&invite.Email,
		&invite.CreatedBy,
		&invite.IsUsed,
		&usedAt,
		&invite.ExpiresAt,
		&invite.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invite: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan invite: %w", err)
	}
	if usedAt.Valid {
		t := usedAt.Time
		invite.UsedAt = &t
	}
	return &invite, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
