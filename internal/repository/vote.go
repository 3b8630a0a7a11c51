package repository

import (
	"context"
	"time"

	"spotcircle/internal/domain"
)

// VoteRepository manages governance votes and their owned participant and
// comment rows. Implementations must back the uniqueness rules (one ballot
// per voter per vote, one active vote per target) with durable constraints,
// and apply CastBallot as a single atomic unit.
type VoteRepository interface {
	Init(ctx context.Context) error

	// Create persists a new ACTIVE vote. Returns ErrDuplicate if the target
	// already has an active vote.
	Create(ctx context.Context, vote *domain.Vote) error

	Get(ctx context.Context, id string) (*domain.Vote, error)
	FindActiveByTarget(ctx context.Context, targetUserID string) (*domain.Vote, error)

	// CastBallot inserts the participant row, the optional comment, and bumps
	// the matching counter in one transaction, returning the updated vote.
	// Returns ErrDuplicate if the voter already has a ballot on this vote.
	CastBallot(ctx context.Context, voteID, userID string, decision domain.VoteDecision, comment *string, now time.Time) (*domain.Vote, error)

	// Finalize moves an ACTIVE vote to a terminal status, stamping closedAt
	// and cleanupAt. It reports whether the transition was applied; a vote
	// already out of ACTIVE is left untouched.
	Finalize(ctx context.Context, voteID string, status domain.VoteStatus, closedAt, cleanupAt time.Time) (bool, error)

	ListActive(ctx context.Context, now time.Time) ([]domain.Vote, error)
	ListClosed(ctx context.Context, limit int) ([]domain.Vote, error)
	ListExpired(ctx context.Context, now time.Time) ([]domain.Vote, error)
	ListCleanupDue(ctx context.Context, now time.Time) ([]domain.Vote, error)

	ListParticipants(ctx context.Context, voteID string) ([]domain.VoteParticipant, error)
	ListComments(ctx context.Context, voteID string) ([]domain.VoteComment, error)

	// DeleteCascade removes the vote and its participants and comments,
	// children first.
	DeleteCascade(ctx context.Context, voteID string) error
}
