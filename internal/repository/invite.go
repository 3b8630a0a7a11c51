package repository

import (
	"context"
	"time"

	"spotcircle/internal/domain"
)

// InviteRepository defines persistence operations for Invite entities.
type InviteRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, invite *domain.Invite) error
	GetByCode(ctx context.Context, code string) (*domain.Invite, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
	List(ctx context.Context) ([]domain.Invite, error)
}
