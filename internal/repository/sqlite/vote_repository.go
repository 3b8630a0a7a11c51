package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spotcircle/internal/domain"
	"spotcircle/internal/repository"
)

const createVoteTables = `
CREATE TABLE IF NOT EXISTS votes (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	target_user_id TEXT NOT NULL,
	created_by_id TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'ACTIVE',
	approve_count INTEGER NOT NULL DEFAULT 0,
	reject_count INTEGER NOT NULL DEFAULT 0,
	required_votes INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL,
	closed_at DATETIME NULL,
	cleanup_at DATETIME NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_one_active_per_target
	ON votes(target_user_id) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS vote_participants (
	id TEXT PRIMARY KEY,
	vote_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	decision TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE(vote_id, user_id),
	FOREIGN KEY(vote_id) REFERENCES votes(id)
);
CREATE INDEX IF NOT EXISTS idx_vote_participants_vote_id ON vote_participants(vote_id);

CREATE TABLE IF NOT EXISTS vote_comments (
	id TEXT PRIMARY KEY,
	vote_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	comment TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(vote_id) REFERENCES votes(id)
);
CREATE INDEX IF NOT EXISTS idx_vote_comments_vote_id ON vote_comments(vote_id);
`

const voteColumns = `id, type, target_user_id, created_by_id, reason, status, approve_count, reject_count, required_votes, created_at, expires_at, closed_at, cleanup_at`

type VoteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) repository.VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createVoteTables); err != nil {
		return fmt.Errorf("create vote tables: %w", err)
	}
	return nil
}

func (r *VoteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO votes (id, type, target_user_id, created_by_id, reason, status, approve_count, reject_count, required_votes, created_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?)`,
		vote.ID,
		string(vote.Type),
		vote.TargetUserID,
		vote.CreatedByID,
		vote.Reason,
		string(vote.Status),
		vote.RequiredVotes,
		vote.CreatedAt.UTC(),
		vote.ExpiresAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert vote: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

func (r *VoteRepository) Get(ctx context.Context, id string) (*domain.Vote, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+voteColumns+` FROM votes WHERE id = ?`, id)
	return scanVote(row)
}

func (r *VoteRepository) FindActiveByTarget(ctx context.Context, targetUserID string) (*domain.Vote, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+voteColumns+` FROM votes WHERE target_user_id = ? AND status = ?`,
		targetUserID, string(domain.VoteStatusActive))
	return scanVote(row)
}

func (r *VoteRepository) CastBallot(ctx context.Context, voteID, userID string, decision domain.VoteDecision, comment *string, now time.Time) (*domain.Vote, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO vote_participants (id, vote_id, user_id, decision, created_at)
VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), voteID, userID, string(decision), now.UTC(),
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert ballot: %w", repository.ErrDuplicate)
		}
		return nil, fmt.Errorf("insert ballot: %w", err)
	}

	if comment != nil && *comment != "" {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO vote_comments (id, vote_id, user_id, comment, created_at)
VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), voteID, userID, *comment, now.UTC(),
		); err != nil {
			return nil, fmt.Errorf("insert vote comment: %w", err)
		}
	}

	counter := "reject_count"
	if decision == domain.DecisionApprove {
		counter = "approve_count"
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE votes SET %s = %s + 1 WHERE id = ?`, counter, counter),
		voteID,
	); err != nil {
		return nil, fmt.Errorf("increment %s: %w", counter, err)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+voteColumns+` FROM votes WHERE id = ?`, voteID)
	vote, err := scanVote(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ballot: %w", err)
	}
	return vote, nil
}

func (r *VoteRepository) Finalize(ctx context.Context, voteID string, status domain.VoteStatus, closedAt, cleanupAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE votes
SET status=?, closed_at=?, cleanup_at=?
WHERE id=? AND status=?`,
		string(status),
		closedAt.UTC(),
		cleanupAt.UTC(),
		voteID,
		string(domain.VoteStatusActive),
	)
	if err != nil {
		return false, fmt.Errorf("finalize vote: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("finalize vote rows affected: %w", err)
	}
	return aff > 0, nil
}

func (r *VoteRepository) ListActive(ctx context.Context, now time.Time) ([]domain.Vote, error) {
	return r.queryVotes(ctx, `
SELECT `+voteColumns+` FROM votes
WHERE status = ? AND expires_at > ?
ORDER BY created_at DESC`,
		string(domain.VoteStatusActive), now.UTC())
}

func (r *VoteRepository) ListClosed(ctx context.Context, limit int) ([]domain.Vote, error) {
	return r.queryVotes(ctx, `
SELECT `+voteColumns+` FROM votes
WHERE status IN (?, ?, ?)
ORDER BY closed_at DESC
LIMIT ?`,
		string(domain.VoteStatusApproved),
		string(domain.VoteStatusRejected),
		string(domain.VoteStatusExpired),
		limit)
}

func (r *VoteRepository) ListExpired(ctx context.Context, now time.Time) ([]domain.Vote, error) {
	return r.queryVotes(ctx, `
SELECT `+voteColumns+` FROM votes
WHERE status = ? AND expires_at < ?
ORDER BY expires_at ASC`,
		string(domain.VoteStatusActive), now.UTC())
}

func (r *VoteRepository) ListCleanupDue(ctx context.Context, now time.Time) ([]domain.Vote, error) {
	return r.queryVotes(ctx, `
SELECT `+voteColumns+` FROM votes
WHERE cleanup_at IS NOT NULL AND cleanup_at < ?
ORDER BY cleanup_at ASC`,
		now.UTC())
}

func (r *VoteRepository) queryVotes(ctx context.Context, query string, args ...any) ([]domain.Vote, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		votes = append(votes, *vote)
	}
	return votes, rows.Err()
}

func (r *VoteRepository) ListParticipants(ctx context.Context, voteID string) ([]domain.VoteParticipant, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.vote_id, p.user_id, p.decision, p.created_at,
	COALESCE(u.username, ''), COALESCE(u.role, '')
FROM vote_participants p
LEFT JOIN users u ON u.id = p.user_id
WHERE p.vote_id = ?
ORDER BY p.created_at ASC`, voteID)
	if err != nil {
		return nil, fmt.Errorf("query vote participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.VoteParticipant
	for rows.Next() {
		var (
			p        domain.VoteParticipant
			decision string
			role     string
		)
		if err := rows.Scan(&p.ID, &p.VoteID, &p.UserID, &decision, &p.CreatedAt, &p.User.Username, &role); err != nil {
			return nil, fmt.Errorf("scan vote participant: %w", err)
		}
		p.Decision = domain.VoteDecision(decision)
		p.User.ID = p.UserID
		p.User.Role = domain.Role(role)
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *VoteRepository) ListComments(ctx context.Context, voteID string) ([]domain.VoteComment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.vote_id, c.user_id, c.comment, c.created_at,
	COALESCE(u.username, ''), COALESCE(u.role, '')
FROM vote_comments c
LEFT JOIN users u ON u.id = c.user_id
WHERE c.vote_id = ?
ORDER BY c.created_at DESC, c.id DESC`, voteID)
	if err != nil {
		return nil, fmt.Errorf("query vote comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.VoteComment
	for rows.Next() {
		var (
			c    domain.VoteComment
			role string
		)
		if err := rows.Scan(&c.ID, &c.VoteID, &c.UserID, &c.Comment, &c.CreatedAt, &c.User.Username, &role); err != nil {
			return nil, fmt.Errorf("scan vote comment: %w", err)
		}
		c.User.ID = c.UserID
		c.User.Role = domain.Role(role)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *VoteRepository) DeleteCascade(ctx context.Context, voteID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// children before parent to respect the foreign keys
	if _, err := tx.ExecContext(ctx, `DELETE FROM vote_comments WHERE vote_id=?`, voteID); err != nil {
		return fmt.Errorf("delete vote comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vote_participants WHERE vote_id=?`, voteID); err != nil {
		return fmt.Errorf("delete vote participants: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE id=?`, voteID)
	if err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("vote delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("delete vote: %w", repository.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit vote delete: %w", err)
	}
	return nil
}

func scanVote(row interface {
	Scan(dest ...any) error
}) (*domain.Vote, error) {
	var (
		vote      domain.Vote
		voteType  string
		status    string
		closedAt  sql.NullTime
		cleanupAt sql.NullTime
	)
	if err := row.Scan(
		&vote.ID,
		&voteType,
		&vote.TargetUserID,
		&vote.CreatedByID,
		&vote.Reason,
		&status,
		&vote.ApproveCount,
		&vote.RejectCount,
		&vote.RequiredVotes,
		&vote.CreatedAt,
		&vote.ExpiresAt,
		&closedAt,
		&cleanupAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vote: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan vote: %w", err)
	}
	vote.Type = domain.VoteType(voteType)
	vote.Status = domain.VoteStatus(status)
	if closedAt.Valid {
		t := closedAt.Time
		vote.ClosedAt = &t
	}
	if cleanupAt.Valid {
		t := cleanupAt.Time
		vote.CleanupAt = &t
	}
	return &vote, nil
}
