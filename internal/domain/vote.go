package domain

import "time"

type VoteType string

const (
	VoteTypeRemoveSuperAdmin VoteType = "REMOVE_SUPERADMIN"
	VoteTypeRemoveAdmin      VoteType = "REMOVE_ADMIN"
)

type VoteStatus string

const (
	VoteStatusActive   VoteStatus = "ACTIVE"
	VoteStatusApproved VoteStatus = "APPROVED"
	VoteStatusRejected VoteStatus = "REJECTED"
	VoteStatusExpired  VoteStatus = "EXPIRED"
)

type VoteDecision string

const (
	DecisionApprove VoteDecision = "APPROVE"
	DecisionReject  VoteDecision = "REJECT"
)

// Vote is a demotion proposal against a privileged user. Participants and
// comments are owned by the vote and removed alongside it during cleanup.
type Vote struct {
	ID            string
	Type          VoteType
	TargetUserID  string
	CreatedByID   string
	Reason        string
	Status        VoteStatus
	ApproveCount  int
	RejectCount   int
	RequiredVotes int
	CreatedAt     time.Time
	ExpiresAt     time.Time
	ClosedAt      *time.Time
	CleanupAt     *time.Time

	TargetUser   UserSummary
	CreatedBy    UserSummary
	Participants []VoteParticipant
	Comments     []VoteComment
}

// VoteParticipant records one ballot. A voter casts at most once per vote.
type VoteParticipant struct {
	ID        string
	VoteID    string
	UserID    string
	Decision  VoteDecision
	CreatedAt time.Time

	User UserSummary
}

// VoteComment is an optional annotation attached to a ballot.
type VoteComment struct {
	ID        string
	VoteID    string
	UserID    string
	Comment   string
	CreatedAt time.Time

	User UserSummary
}

// DemotedRole returns the role the target drops to when a vote of the given
// type passes.
func (t VoteType) DemotedRole() Role {
	if t == VoteTypeRemoveSuperAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// RequiredRole returns the role the target must currently hold for a vote of
// the given type to be created.
func (t VoteType) RequiredRole() Role {
	if t == VoteTypeRemoveSuperAdmin {
		return RoleSuperAdmin
	}
	return RoleAdmin
}

// QuorumThreshold computes the approvals (or rejections) needed to resolve a
// proposal: half the eligible voter population, rounded up. The threshold is
// frozen on the vote at creation time.
func QuorumThreshold(superAdminCount int) int {
	return (superAdminCount + 1) / 2
}
