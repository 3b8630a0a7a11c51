package repository

import (
	"context"

	"spotcircle/internal/domain"
)

// SpotRepository exposes persistence operations for Spot entities.
type SpotRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, spot *domain.Spot) error
	Get(ctx context.Context, id string) (*domain.Spot, error)
	Update(ctx context.Context, spot *domain.Spot) error
	SetPhotoKey(ctx context.Context, id, key string) error
	Delete(ctx context.Context, id string) error
	// ListVisible returns public spots plus, when viewerID is non-empty, the
	// viewer's own non-public spots, newest first.
	ListVisible(ctx context.Context, viewerID string) ([]domain.Spot, error)
	Count(ctx context.Context) (int, error)
	CountByPrivacy(ctx context.Context, level domain.PrivacyLevel) (int, error)
}
