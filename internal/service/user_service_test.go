package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"spotcircle/internal/domain"
)

const testJWTSecret = "test-secret"

func newUserFixture(t *testing.T) (*testRepos, *fakeClock, UserService, AdminService) {
	t.Helper()
	repos := openTestRepos(t)
	clock := newFakeClock()
	users := NewUserService(repos.users, repos.invites, clock, testJWTSecret, time.Hour)
	admin := NewAdminService(repos.users, repos.invites, repos.spots, clock, 5*time.Hour)
	return repos, clock, users, admin
}

func TestRegisterWithInvite(t *testing.T) {
	ctx := context.Background()
	repos, _, users, admin := newUserFixture(t)

	owner := repos.seedUser(t, "owner", domain.RoleSuperAdmin)
	invite, err := admin.CreateInvite(ctx, owner.ID, "newbie@example.com")
	require.NoError(t, err)
	require.Len(t, invite.Code, 32)

	user, err := users.Register(ctx, RegisterInput{
		Username:   "@newbie",
		Email:      "Newbie@Example.com",
		Password:   "hunter2hunter2",
		InviteCode: invite.Code,
	})
	require.NoError(t, err)

	assert.Equal(t, "@newbie", user.Username)
	assert.Equal(t, "newbie@example.com", user.Email, "email is normalized")
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.False(t, user.IsApproved, "new members wait for approval")
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, invite.ID, user.InvitedBy)

	invites, err := admin.ListInvites(ctx)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.True(t, invites[0].IsUsed, "invite is consumed on registration")

	_, err = users.Register(ctx, RegisterInput{
		Username:   "@other",
		Email:      "newbie@example.com",
		Password:   "hunter2hunter2",
		InviteCode: invite.Code,
	})
	assert.ErrorIs(t, err, ErrInvalidState, "invite is single use")
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	repos, clock, users, admin := newUserFixture(t)

	owner := repos.seedUser(t, "owner", domain.RoleSuperAdmin)
	invite, err := admin.CreateInvite(ctx, owner.ID, "newbie@example.com")
	require.NoError(t, err)

	base := RegisterInput{
		Username:   "@newbie",
		Email:      "newbie@example.com",
		Password:   "hunter2hunter2",
		InviteCode: invite.Code,
	}

	bad := base
	bad.Username = "newbie"
	_, err = users.Register(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidState, "username must start with @")

	bad = base
	bad.Password = "short"
	_, err = users.Register(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidState, "password too short")

	bad = base
	bad.InviteCode = "deadbeef"
	_, err = users.Register(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidState, "unknown invite code")

	bad = base
	bad.Email = "impostor@example.com"
	bad.Username = "@impostor"
	_, err = users.Register(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidState, "email must match the invite")

	clock.Advance(6 * time.Hour)
	_, err = users.Register(ctx, base)
	assert.ErrorIs(t, err, ErrInvalidState, "invite expired")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repos, _, users, admin := newUserFixture(t)

	repos.seedUser(t, "taken", domain.RoleUser)
	owner := repos.seedUser(t, "owner", domain.RoleSuperAdmin)
	invite, err := admin.CreateInvite(ctx, owner.ID, "newbie@example.com")
	require.NoError(t, err)

	_, err = users.Register(ctx, RegisterInput{
		Username:   "@taken",
		Email:      "newbie@example.com",
		Password:   "hunter2hunter2",
		InviteCode: invite.Code,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repos, clock, users, admin := newUserFixture(t)

	owner := repos.seedUser(t, "owner", domain.RoleSuperAdmin)
	invite, err := admin.CreateInvite(ctx, owner.ID, "member@example.com")
	require.NoError(t, err)

	registered, err := users.Register(ctx, RegisterInput{
		Username:   "@member",
		Email:      "member@example.com",
		Password:   "hunter2hunter2",
		InviteCode: invite.Code,
	})
	require.NoError(t, err)

	_, _, err = users.Login(ctx, "member@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrPendingApproval, "unapproved members cannot log in")

	_, err = admin.ApproveUser(ctx, registered.ID)
	require.NoError(t, err)

	_, _, err = users.Login(ctx, "member@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = users.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, user, err := users.Login(ctx, "member@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	}, jwt.WithoutClaimsValidation())
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, registered.ID, claims["sub"])
	assert.Equal(t, "@member", claims["username"])
	assert.Equal(t, string(domain.RoleUser), claims["role"])
	assert.Equal(t, float64(clock.Now().Add(time.Hour).Unix()), claims["exp"])
}

func TestRejectUser(t *testing.T) {
	ctx := context.Background()
	repos, _, users, admin := newUserFixture(t)

	pending := &domain.User{
		ID:           "pending-id",
		Username:     "@pending",
		Email:        "pending@example.com",
		PasswordHash: mustHash(t, "hunter2hunter2"),
		Role:         domain.RoleUser,
	}
	require.NoError(t, repos.users.Create(ctx, pending))

	listed, err := admin.PendingUsers(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, admin.RejectUser(ctx, pending.ID))

	_, err = users.GetByID(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = admin.RejectUser(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	repos, _, _, admin := newUserFixture(t)

	repos.seedUser(t, "alice", domain.RoleSuperAdmin)
	repos.seedUser(t, "bob", domain.RoleUser)
	unapproved := &domain.User{
		ID:           "pending-id",
		Username:     "@pending",
		Email:        "pending@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
	}
	require.NoError(t, repos.users.Create(ctx, unapproved))

	stats, err := admin.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 2, stats.ApprovedUsers)
	assert.Equal(t, 1, stats.PendingUsers)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}
