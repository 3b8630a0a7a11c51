package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotcircle/internal/domain"
	"spotcircle/internal/repository"
)

func openVoteRepo(t *testing.T) repository.VoteRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := NewUserRepository(db)
	require.NoError(t, users.Init(ctx))
	votes := NewVoteRepository(db)
	require.NoError(t, votes.Init(ctx))
	return votes
}

func newVote(target string, now time.Time) *domain.Vote {
	return &domain.Vote{
		ID:            uuid.NewString(),
		Type:          domain.VoteTypeRemoveAdmin,
		TargetUserID:  target,
		CreatedByID:   "creator",
		Status:        domain.VoteStatusActive,
		RequiredVotes: 2,
		CreatedAt:     now,
		ExpiresAt:     now.Add(24 * time.Hour),
	}
}

func TestOneActiveVotePerTarget(t *testing.T) {
	ctx := context.Background()
	votes := openVoteRepo(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := newVote("target-1", now)
	require.NoError(t, votes.Create(ctx, first))

	err := votes.Create(ctx, newVote("target-1", now))
	assert.ErrorIs(t, err, repository.ErrDuplicate, "second active vote for the same target")

	require.NoError(t, votes.Create(ctx, newVote("target-2", now)))

	// once the first vote is closed a new one may open against the target
	applied, err := votes.Finalize(ctx, first.ID, domain.VoteStatusRejected, now, now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, votes.Create(ctx, newVote("target-1", now)))
}

func TestCastBallotOncePerVoter(t *testing.T) {
	ctx := context.Background()
	votes := openVoteRepo(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	vote := newVote("target-1", now)
	require.NoError(t, votes.Create(ctx, vote))

	comment := "seen enough"
	updated, err := votes.CastBallot(ctx, vote.ID, "voter-1", domain.DecisionApprove, &comment, now)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ApproveCount)
	assert.Equal(t, 0, updated.RejectCount)

	_, err = votes.CastBallot(ctx, vote.ID, "voter-1", domain.DecisionReject, nil, now)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// the rejected second ballot must not leak a counter increment
	got, err := votes.Get(ctx, vote.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ApproveCount)
	assert.Equal(t, 0, got.RejectCount)

	updated, err = votes.CastBallot(ctx, vote.ID, "voter-2", domain.DecisionReject, nil, now)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ApproveCount)
	assert.Equal(t, 1, updated.RejectCount)

	participants, err := votes.ListParticipants(ctx, vote.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)

	comments, err := votes.ListComments(ctx, vote.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, comment, comments[0].Comment)
}

func TestFinalizeGuard(t *testing.T) {
	ctx := context.Background()
	votes := openVoteRepo(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	vote := newVote("target-1", now)
	require.NoError(t, votes.Create(ctx, vote))

	applied, err := votes.Finalize(ctx, vote.ID, domain.VoteStatusApproved, now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = votes.Finalize(ctx, vote.ID, domain.VoteStatusExpired, now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, applied, "a closed vote cannot be closed again")

	got, err := votes.Get(ctx, vote.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VoteStatusApproved, got.Status)
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()
	votes := openVoteRepo(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	vote := newVote("target-1", now)
	require.NoError(t, votes.Create(ctx, vote))
	comment := "bye"
	_, err := votes.CastBallot(ctx, vote.ID, "voter-1", domain.DecisionApprove, &comment, now)
	require.NoError(t, err)

	require.NoError(t, votes.DeleteCascade(ctx, vote.ID))

	_, err = votes.Get(ctx, vote.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	participants, err := votes.ListParticipants(ctx, vote.ID)
	require.NoError(t, err)
	assert.Empty(t, participants)

	err = votes.DeleteCascade(ctx, vote.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListWindows(t *testing.T) {
	ctx := context.Background()
	votes := openVoteRepo(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	fresh := newVote("target-1", now)
	require.NoError(t, votes.Create(ctx, fresh))

	stale := newVote("target-2", now.Add(-48*time.Hour))
	require.NoError(t, votes.Create(ctx, stale))

	active, err := votes.ListActive(ctx, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, fresh.ID, active[0].ID)

	expired, err := votes.ListExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)

	due, err := votes.ListCleanupDue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due, "open votes are never cleanup candidates")

	applied, err := votes.Finalize(ctx, stale.ID, domain.VoteStatusExpired, now, now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, applied)

	due, err = votes.ListCleanupDue(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, stale.ID, due[0].ID)

	closed, err := votes.ListClosed(ctx, 50)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, domain.VoteStatusExpired, closed[0].Status)
}
