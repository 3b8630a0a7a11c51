package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"spotcircle/internal/domain"
	"spotcircle/internal/repository"
	"spotcircle/internal/storage"
)

// CreateSpotInput carries a new spot submission.
type CreateSpotInput struct {
	Name         string
	Description  string
	Latitude     float64
	Longitude    float64
	Address      string
	PrivacyLevel domain.PrivacyLevel
}

// UpdateSpotInput holds partial spot updates; nil fields are left untouched.
type UpdateSpotInput struct {
	Name         *string
	Description  *string
	Latitude     *float64
	Longitude    *float64
	Address      *string
	PrivacyLevel *domain.PrivacyLevel
}

// NearbySpot pairs a spot with its distance from the query point.
type NearbySpot struct {
	Spot     domain.Spot
	Distance float64
}

// SpotStats aggregates spot counts per privacy level.
type SpotStats struct {
	TotalSpots       int
	PublicSpots      int
	PrivateSpots     int
	FriendsOnlySpots int
}

// SpotService manages spots and their photos.
type SpotService interface {
	Create(ctx context.Context, creatorID string, input CreateSpotInput) (*domain.Spot, error)
	List(ctx context.Context, viewerID string) ([]domain.Spot, error)
	Nearby(ctx context.Context, viewerID string, lat, lng, radiusKm float64) ([]NearbySpot, error)
	Get(ctx context.Context, id, viewerID string) (*domain.Spot, error)
	Update(ctx context.Context, id, userID string, input UpdateSpotInput) (*domain.Spot, error)
	Delete(ctx context.Context, id, userID string) error
	UploadPhoto(ctx context.Context, id, userID, filename, contentType string, body io.Reader) (*domain.Spot, error)
	PhotoURL(ctx context.Context, spot *domain.Spot) (string, error)
	GetStats(ctx context.Context) (*SpotStats, error)
}

type spotService struct {
	spots     repository.SpotRepository
	storage   storage.Service
	bucket    string
	keyPrefix string
}

func NewSpotService(spots repository.SpotRepository, store storage.Service, bucket, keyPrefix string) SpotService {
	return &spotService{
		spots:     spots,
		storage:   store,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}
}

func (s *spotService) Create(ctx context.Context, creatorID string, input CreateSpotInput) (*domain.Spot, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidState)
	}
	if err := validateCoordinates(input.Latitude, input.Longitude); err != nil {
		return nil, err
	}
	if err := validatePrivacy(input.PrivacyLevel); err != nil {
		return nil, err
	}

	spot := &domain.Spot{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Address:      input.Address,
		PrivacyLevel: input.PrivacyLevel,
		CreatorID:    creatorID,
	}
	if err := s.spots.Create(ctx, spot); err != nil {
		return nil, err
	}
	return spot, nil
}

func (s *spotService) List(ctx context.Context, viewerID string) ([]domain.Spot, error) {
	return s.spots.ListVisible(ctx, viewerID)
}

func (s *spotService) Nearby(ctx context.Context, viewerID string, lat, lng, radiusKm float64) ([]NearbySpot, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = 10
	}

	spots, err := s.spots.ListVisible(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	var nearby []NearbySpot
	for i := range spots {
		dist := domain.DistanceKm(lat, lng, spots[i].Latitude, spots[i].Longitude)
		if dist <= radiusKm {
			nearby = append(nearby, NearbySpot{Spot: spots[i], Distance: dist})
		}
	}
	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby, nil
}

func (s *spotService) Get(ctx context.Context, id, viewerID string) (*domain.Spot, error) {
	spot, err := s.spots.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: spot", ErrNotFound)
		}
		return nil, err
	}
	if spot.PrivacyLevel == domain.PrivacyPrivate && spot.CreatorID != viewerID {
		return nil, fmt.Errorf("%w: you do not have access to this spot", ErrForbidden)
	}
	return spot, nil
}

func (s *spotService) Update(ctx context.Context, id, userID string, input UpdateSpotInput) (*domain.Spot, error) {
	spot, err := s.ownedSpot(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidState)
		}
		spot.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		spot.Description = *input.Description
	}
	if input.Latitude != nil {
		spot.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		spot.Longitude = *input.Longitude
	}
	if err := validateCoordinates(spot.Latitude, spot.Longitude); err != nil {
		return nil, err
	}
	if input.Address != nil {
		spot.Address = *input.Address
	}
	if input.PrivacyLevel != nil {
		if err := validatePrivacy(*input.PrivacyLevel); err != nil {
			return nil, err
		}
		spot.PrivacyLevel = *input.PrivacyLevel
	}

	if err := s.spots.Update(ctx, spot); err != nil {
		return nil, err
	}
	return spot, nil
}

func (s *spotService) Delete(ctx context.Context, id, userID string) error {
	spot, err := s.ownedSpot(ctx, id, userID, "delete")
	if err != nil {
		return err
	}

	if err := s.spots.Delete(ctx, id); err != nil {
		return err
	}

	// best effort: a dangling object costs storage, not correctness
	if spot.PhotoKey != "" && s.storage != nil && s.bucket != "" {
		_ = s.storage.Delete(ctx, s.bucket, spot.PhotoKey)
	}
	return nil
}

func (s *spotService) UploadPhoto(ctx context.Context, id, userID, filename, contentType string, body io.Reader) (*domain.Spot, error) {
	if s.storage == nil || s.bucket == "" {
		return nil, fmt.Errorf("storage service not configured")
	}

	spot, err := s.ownedSpot(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("spots/%s/%s%s", spot.ID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + key
	}

	if _, err := s.storage.Upload(ctx, s.bucket, key, body, contentType); err != nil {
		return nil, err
	}

	oldKey := spot.PhotoKey
	if err := s.spots.SetPhotoKey(ctx, spot.ID, key); err != nil {
		return nil, err
	}
	if oldKey != "" {
		_ = s.storage.Delete(ctx, s.bucket, oldKey)
	}

	spot.PhotoKey = key
	return spot, nil
}

func (s *spotService) PhotoURL(ctx context.Context, spot *domain.Spot) (string, error) {
	if spot.PhotoKey == "" || s.storage == nil || s.bucket == "" {
		return "", nil
	}
	return s.storage.GetObjectURL(ctx, s.bucket, spot.PhotoKey, 15*time.Minute)
}

func (s *spotService) GetStats(ctx context.Context) (*SpotStats, error) {
	total, err := s.spots.Count(ctx)
	if err != nil {
		return nil, err
	}
	public, err := s.spots.CountByPrivacy(ctx, domain.PrivacyPublic)
	if err != nil {
		return nil, err
	}
	private, err := s.spots.CountByPrivacy(ctx, domain.PrivacyPrivate)
	if err != nil {
		return nil, err
	}
	friends, err := s.spots.CountByPrivacy(ctx, domain.PrivacyFriendsOnly)
	if err != nil {
		return nil, err
	}
	return &SpotStats{
		TotalSpots:       total,
		PublicSpots:      public,
		PrivateSpots:     private,
		FriendsOnlySpots: friends,
	}, nil
}

func (s *spotService) ownedSpot(ctx context.Context, id, userID, action string) (*domain.Spot, error) {
	spot, err := s.spots.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: spot", ErrNotFound)
		}
		return nil, err
	}
	if spot.CreatorID != userID {
		return nil, fmt.Errorf("%w: you can only %s your own spots", ErrForbidden, action)
	}
	return spot, nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude out of range", ErrInvalidState)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude out of range", ErrInvalidState)
	}
	return nil
}

func validatePrivacy(level domain.PrivacyLevel) error {
	switch level {
	case domain.PrivacyPublic, domain.PrivacyPrivate, domain.PrivacyFriendsOnly:
		return nil
	}
	return fmt.Errorf("%w: unknown privacy level %q", ErrInvalidState, level)
}
