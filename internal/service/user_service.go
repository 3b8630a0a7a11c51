package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"spotcircle/internal/domain"
	"spotcircle/internal/repository"
)

// RegisterInput carries an invite-gated registration request.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	InviteCode      string
	InstagramHandle string
}

// UserService describes member lifecycle operations.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type userService struct {
	users     repository.UserRepository
	invites   repository.InviteRepository
	clock     Clock
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewUserService(users repository.UserRepository, invites repository.InviteRepository, clock Clock, jwtSecret string, tokenTTL time.Duration) UserService {
	if clock == nil {
		clock = SystemClock()
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &userService{
		users:     users,
		invites:   invites,
		clock:     clock,
		jwtSecret: []byte(strings.TrimSpace(jwtSecret)),
		tokenTTL:  tokenTTL,
	}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidState)
	}
	if !strings.HasPrefix(username, "@") {
		return nil, fmt.Errorf("%w: username must start with @", ErrInvalidState)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidState)
	}

	invite, err := s.invites.GetByCode(ctx, strings.TrimSpace(input.InviteCode))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid invite code", ErrInvalidState)
		}
		return nil, err
	}
	if invite.IsUsed {
		return nil, fmt.Errorf("%w: invite code has already been used", ErrInvalidState)
	}
	if s.clock.Now().After(invite.ExpiresAt) {
		return nil, fmt.Errorf("%w: invite code has expired", ErrInvalidState)
	}
	if !strings.EqualFold(invite.Email, email) {
		return nil, fmt.Errorf("%w: email does not match the invite", ErrInvalidState)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:              uuid.NewString(),
		Username:        username,
		Email:           email,
		PasswordHash:    string(hash),
		Role:            domain.RoleUser,
		IsApproved:      false,
		InstagramHandle: strings.TrimSpace(input.InstagramHandle),
		InvitedBy:       invite.ID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email or username already exists", ErrConflict)
		}
		return nil, err
	}

	if err := s.invites.MarkUsed(ctx, invite.ID, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("consume invite: %w", err)
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.IsApproved {
		return "", nil, ErrPendingApproval
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return token, sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
