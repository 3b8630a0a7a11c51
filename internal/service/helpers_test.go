package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"spotcircle/internal/domain"
	"spotcircle/internal/repository"
	"spotcircle/internal/repository/sqlite"
)

// fakeClock is a manually advanced Clock for exercising TTL behaviour.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testRepos struct {
	db      *sql.DB
	users   repository.UserRepository
	invites repository.InviteRepository
	spots   repository.SpotRepository
	votes   repository.VoteRepository
}

func openTestRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := &testRepos{
		db:      db,
		users:   sqlite.NewUserRepository(db),
		invites: sqlite.NewInviteRepository(db),
		spots:   sqlite.NewSpotRepository(db),
		votes:   sqlite.NewVoteRepository(db),
	}
	ctx := context.Background()
	require.NoError(t, r.users.Init(ctx))
	require.NoError(t, r.invites.Init(ctx))
	require.NoError(t, r.spots.Init(ctx))
	require.NoError(t, r.votes.Init(ctx))
	return r
}

func (r *testRepos) seedUser(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     "@" + username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsApproved:   true,
	}
	require.NoError(t, r.users.Create(context.Background(), user))
	return user
}
