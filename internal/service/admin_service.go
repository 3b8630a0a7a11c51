package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spotcircle/internal/domain"
	"spotcircle/internal/repository"
)

// Stats aggregates counts for the admin dashboard.
type Stats struct {
	TotalUsers    int
	ApprovedUsers int
	PendingUsers  int
	TotalSpots    int
	PublicSpots   int
}

// AdminService covers invite issuance and member approval.
type AdminService interface {
	CreateInvite(ctx context.Context, adminID, email string) (*domain.Invite, error)
	ListInvites(ctx context.Context) ([]domain.Invite, error)
	PendingUsers(ctx context.Context) ([]domain.User, error)
	AllUsers(ctx context.Context) ([]domain.User, error)
	ApproveUser(ctx context.Context, userID string) (*domain.User, error)
	RejectUser(ctx context.Context, userID string) error
	GetStats(ctx context.Context) (*Stats, error)
}

type adminService struct {
	users     repository.UserRepository
	invites   repository.InviteRepository
	spots     repository.SpotRepository
	clock     Clock
	inviteTTL time.Duration
}

func NewAdminService(users repository.UserRepository, invites repository.InviteRepository, spots repository.SpotRepository, clock Clock, inviteTTL time.Duration) AdminService {
	if clock == nil {
		clock = SystemClock()
	}
	if inviteTTL <= 0 {
		inviteTTL = 5 * time.Hour
	}
	return &adminService{
		users:     users,
		invites:   invites,
		spots:     spots,
		clock:     clock,
		inviteTTL: inviteTTL,
	}
}

func (s *adminService) CreateInvite(ctx context.Context, adminID, email string) (*domain.Invite, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidState)
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate invite code: %w", err)
	}

	invite := &domain.Invite{
		ID:        uuid.NewString(),
		Code:      hex.EncodeToString(buf),
		Email:     email,
		CreatedBy: adminID,
		ExpiresAt: s.clock.Now().Add(s.inviteTTL),
	}

	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *adminService) ListInvites(ctx context.Context) ([]domain.Invite, error) {
	return s.invites.List(ctx)
}

func (s *adminService) PendingUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}

func (s *adminService) AllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}

func (s *adminService) ApproveUser(ctx context.Context, userID string) (*domain.User, error) {
	if err := s.users.UpdateApproval(ctx, userID, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *adminService) RejectUser(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *adminService) GetStats(ctx context.Context) (*Stats, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	approved, err := s.users.CountApproved(ctx, true)
	if err != nil {
		return nil, err
	}
	pending, err := s.users.CountApproved(ctx, false)
	if err != nil {
		return nil, err
	}
	spots, err := s.spots.Count(ctx)
	if err != nil {
		return nil, err
	}
	public, err := s.spots.CountByPrivacy(ctx, domain.PrivacyPublic)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalUsers:    total,
		ApprovedUsers: approved,
		PendingUsers:  pending,
		TotalSpots:    spots,
		PublicSpots:   public,
	}, nil
}

func sanitizeUsers(users []domain.User) []domain.User {
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users
}
