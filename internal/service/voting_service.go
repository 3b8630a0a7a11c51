package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spotcircle/internal/domain"
	"spotcircle/internal/repository"
)

const voteHistoryLimit = 50

// VotingService runs the governance vote lifecycle: proposal creation, ballot
// casting, quorum resolution, role demotion on approval, and the periodic
// expiry and cleanup sweeps.
type VotingService interface {
	CreateVote(ctx context.Context, creatorID, targetUserID string, voteType domain.VoteType, reason string) (*domain.Vote, error)
	CastVote(ctx context.Context, voteID, voterID string, decision domain.VoteDecision, comment string) (*domain.Vote, error)
	GetActiveVotes(ctx context.Context) ([]domain.Vote, error)
	GetVoteHistory(ctx context.Context) ([]domain.Vote, error)
	GetVoteByID(ctx context.Context, voteID string) (*domain.Vote, error)
	SweepExpired(ctx context.Context) (int, error)
	SweepCleanup(ctx context.Context) (int, error)
}

type votingService struct {
	votes        repository.VoteRepository
	users        repository.UserRepository
	clock        Clock
	voteTTL      time.Duration
	cleanupDelay time.Duration
}

func NewVotingService(votes repository.VoteRepository, users repository.UserRepository, clock Clock, voteTTL, cleanupDelay time.Duration) VotingService {
	if clock == nil {
		clock = SystemClock()
	}
	if voteTTL <= 0 {
		voteTTL = 24 * time.Hour
	}
	if cleanupDelay <= 0 {
		cleanupDelay = time.Hour
	}
	return &votingService{
		votes:        votes,
		users:        users,
		clock:        clock,
		voteTTL:      voteTTL,
		cleanupDelay: cleanupDelay,
	}
}

func (s *votingService) CreateVote(ctx context.Context, creatorID, targetUserID string, voteType domain.VoteType, reason string) (*domain.Vote, error) {
	if voteType != domain.VoteTypeRemoveSuperAdmin && voteType != domain.VoteTypeRemoveAdmin {
		return nil, fmt.Errorf("%w: unknown vote type %q", ErrInvalidState, voteType)
	}

	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: only superadmins can create votes", ErrForbidden)
		}
		return nil, err
	}
	if creator.Role != domain.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: only superadmins can create votes", ErrForbidden)
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: target user", ErrNotFound)
		}
		return nil, err
	}
	if target.Role != voteType.RequiredRole() {
		return nil, fmt.Errorf("%w: target user is not a %s", ErrInvalidState, voteType.RequiredRole())
	}

	if _, err := s.votes.FindActiveByTarget(ctx, targetUserID); err == nil {
		return nil, fmt.Errorf("%w: an active vote already exists for this user", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	superAdmins, err := s.users.CountByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	vote := &domain.Vote{
		ID:            uuid.NewString(),
		Type:          voteType,
		TargetUserID:  targetUserID,
		CreatedByID:   creatorID,
		Reason:        reason,
		Status:        domain.VoteStatusActive,
		RequiredVotes: domain.QuorumThreshold(superAdmins),
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.voteTTL),
	}

	if err := s.votes.Create(ctx, vote); err != nil {
		// the partial unique index closes the check-then-insert race
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: an active vote already exists for this user", ErrConflict)
		}
		return nil, err
	}

	return s.hydrate(ctx, vote)
}

func (s *votingService) CastVote(ctx context.Context, voteID, voterID string, decision domain.VoteDecision, comment string) (*domain.Vote, error) {
	if decision != domain.DecisionApprove && decision != domain.DecisionReject {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrInvalidState, decision)
	}

	voter, err := s.users.GetByID(ctx, voterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: only superadmins can vote", ErrForbidden)
		}
		return nil, err
	}
	if voter.Role != domain.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: only superadmins can vote", ErrForbidden)
	}

	vote, err := s.votes.Get(ctx, voteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: vote", ErrNotFound)
		}
		return nil, err
	}

	if vote.Status != domain.VoteStatusActive {
		return nil, fmt.Errorf("%w: vote is not active", ErrInvalidState)
	}

	now := s.clock.Now()
	if now.After(vote.ExpiresAt) {
		// lazy expiry: a stale vote is closed the moment it is touched,
		// without waiting for the sweep
		if err := s.finalize(ctx, vote, domain.VoteStatusExpired); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: vote has expired", ErrInvalidState)
	}

	if vote.TargetUserID == voterID {
		return nil, fmt.Errorf("%w: you cannot vote on your own demotion", ErrForbidden)
	}

	var commentArg *string
	if comment != "" {
		commentArg = &comment
	}
	updated, err := s.votes.CastBallot(ctx, voteID, voterID, decision, commentArg, now)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: you have already voted", ErrConflict)
		}
		return nil, err
	}

	if updated.ApproveCount >= updated.RequiredVotes {
		if err := s.finalize(ctx, updated, domain.VoteStatusApproved); err != nil {
			return nil, err
		}
	} else if updated.RejectCount >= updated.RequiredVotes {
		if err := s.finalize(ctx, updated, domain.VoteStatusRejected); err != nil {
			return nil, err
		}
	}

	return s.GetVoteByID(ctx, voteID)
}

// finalize moves a vote out of ACTIVE and applies the role demotion for
// approved outcomes. The repository guard makes the transition single-shot:
// if another caller already closed the vote, nothing happens here.
func (s *votingService) finalize(ctx context.Context, vote *domain.Vote, outcome domain.VoteStatus) error {
	closedAt := s.clock.Now()
	applied, err := s.votes.Finalize(ctx, vote.ID, outcome, closedAt, closedAt.Add(s.cleanupDelay))
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	if outcome == domain.VoteStatusApproved {
		if err := s.users.UpdateRole(ctx, vote.TargetUserID, vote.Type.DemotedRole()); err != nil {
			return fmt.Errorf("demote target user: %w", err)
		}
	}
	return nil
}

func (s *votingService) GetActiveVotes(ctx context.Context) ([]domain.Vote, error) {
	votes, err := s.votes.ListActive(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, votes)
}

func (s *votingService) GetVoteHistory(ctx context.Context) ([]domain.Vote, error) {
	votes, err := s.votes.ListClosed(ctx, voteHistoryLimit)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, votes)
}

func (s *votingService) GetVoteByID(ctx context.Context, voteID string) (*domain.Vote, error) {
	vote, err := s.votes.Get(ctx, voteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: vote", ErrNotFound)
		}
		return nil, err
	}
	return s.hydrate(ctx, vote)
}

func (s *votingService) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.votes.ListExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	var (
		swept int
		errs  []error
	)
	for i := range expired {
		if err := s.finalize(ctx, &expired[i], domain.VoteStatusExpired); err != nil {
			errs = append(errs, fmt.Errorf("expire vote %s: %w", expired[i].ID, err))
			continue
		}
		swept++
	}
	return swept, errors.Join(errs...)
}

func (s *votingService) SweepCleanup(ctx context.Context) (int, error) {
	due, err := s.votes.ListCleanupDue(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	var (
		removed int
		errs    []error
	)
	for i := range due {
		if err := s.votes.DeleteCascade(ctx, due[i].ID); err != nil {
			errs = append(errs, fmt.Errorf("cleanup vote %s: %w", due[i].ID, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func (s *votingService) hydrateAll(ctx context.Context, votes []domain.Vote) ([]domain.Vote, error) {
	hydrated := make([]domain.Vote, 0, len(votes))
	for i := range votes {
		vote, err := s.hydrate(ctx, &votes[i])
		if err != nil {
			return nil, err
		}
		hydrated = append(hydrated, *vote)
	}
	return hydrated, nil
}

func (s *votingService) hydrate(ctx context.Context, vote *domain.Vote) (*domain.Vote, error) {
	vote.TargetUser = s.userSummary(ctx, vote.TargetUserID)
	vote.CreatedBy = s.userSummary(ctx, vote.CreatedByID)

	participants, err := s.votes.ListParticipants(ctx, vote.ID)
	if err != nil {
		return nil, err
	}
	vote.Participants = participants

	comments, err := s.votes.ListComments(ctx, vote.ID)
	if err != nil {
		return nil, err
	}
	vote.Comments = comments

	return vote, nil
}

// userSummary tolerates deleted accounts: the vote still renders with the
// bare user id when the referenced user no longer exists.
func (s *votingService) userSummary(ctx context.Context, userID string) domain.UserSummary {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.UserSummary{ID: userID}
	}
	return user.Summary()
}
