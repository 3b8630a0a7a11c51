package http

import (
	"time"

	"spotcircle/internal/domain"
	"spotcircle/internal/service"
)

type UserResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	IsApproved      bool   `json:"is_approved"`
	InstagramHandle string `json:"instagram_handle,omitempty"`
	ProfileImage    string `json:"profile_image,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type UserSummaryResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type InviteResponse struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	Email     string  `json:"email"`
	IsUsed    bool    `json:"is_used"`
	UsedAt    *string `json:"used_at,omitempty"`
	ExpiresAt string  `json:"expires_at"`
	CreatedAt string  `json:"created_at"`
	Link      string  `json:"invite_link,omitempty"`
}

type SpotResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Address      string   `json:"address,omitempty"`
	PrivacyLevel string   `json:"privacy_level"`
	PhotoURL     string   `json:"photo_url,omitempty"`
	CreatorID    string   `json:"creator_id"`
	Distance     *float64 `json:"distance,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type VoteParticipantResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Decision  string              `json:"decision"`
	User      UserSummaryResponse `json:"user"`
	CreatedAt string              `json:"created_at"`
}

type VoteCommentResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Comment   string              `json:"comment"`
	User      UserSummaryResponse `json:"user"`
	CreatedAt string              `json:"created_at"`
}

type VoteResponse struct {
	ID            string                    `json:"id"`
	Type          string                    `json:"type"`
	Status        string                    `json:"status"`
	Reason        string                    `json:"reason,omitempty"`
	TargetUser    UserSummaryResponse       `json:"target_user"`
	CreatedBy     UserSummaryResponse       `json:"created_by"`
	ApproveCount  int                       `json:"approve_count"`
	RejectCount   int                       `json:"reject_count"`
	RequiredVotes int                       `json:"required_votes"`
	CreatedAt     string                    `json:"created_at"`
	ExpiresAt     string                    `json:"expires_at"`
	ClosedAt      *string                   `json:"closed_at,omitempty"`
	CleanupAt     *string                   `json:"cleanup_at,omitempty"`
	Participants  []VoteParticipantResponse `json:"participants"`
	Comments      []VoteCommentResponse     `json:"comments"`
}

type StatsResponse struct {
	TotalUsers    int `json:"total_users"`
	ApprovedUsers int `json:"approved_users"`
	PendingUsers  int `json:"pending_users"`
	TotalSpots    int `json:"total_spots"`
	PublicSpots   int `json:"public_spots"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Role:            string(user.Role),
		IsApproved:      user.IsApproved,
		InstagramHandle: user.InstagramHandle,
		ProfileImage:    user.ProfileImage,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
	}
}

func summaryToResponse(summary domain.UserSummary) UserSummaryResponse {
	return UserSummaryResponse{
		ID:       summary.ID,
		Username: summary.Username,
		Email:    summary.Email,
		Role:     string(summary.Role),
	}
}

func inviteToResponse(invite domain.Invite, link string) InviteResponse {
	resp := InviteResponse{
		ID:        invite.ID,
		Code:      invite.Code,
		Email:     invite.Email,
		IsUsed:    invite.IsUsed,
		ExpiresAt: invite.ExpiresAt.Format(time.RFC3339),
		CreatedAt: invite.CreatedAt.Format(time.RFC3339),
		Link:      link,
	}
	if invite.UsedAt != nil {
		v := invite.UsedAt.Format(time.RFC3339)
		resp.UsedAt = &v
	}
	return resp
}

func spotToResponse(spot domain.Spot, photoURL string, distance *float64) SpotResponse {
	return SpotResponse{
		ID:           spot.ID,
		Name:         spot.Name,
		Description:  spot.Description,
		Latitude:     spot.Latitude,
		Longitude:    spot.Longitude,
		Address:      spot.Address,
		PrivacyLevel: string(spot.PrivacyLevel),
		PhotoURL:     photoURL,
		CreatorID:    spot.CreatorID,
		Distance:     distance,
		CreatedAt:    spot.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    spot.UpdatedAt.Format(time.RFC3339),
	}
}

func voteToResponse(vote *domain.Vote) VoteResponse {
	resp := VoteResponse{
		ID:            vote.ID,
		Type:          string(vote.Type),
		Status:        string(vote.Status),
		Reason:        vote.Reason,
		TargetUser:    summaryToResponse(vote.TargetUser),
		CreatedBy:     summaryToResponse(vote.CreatedBy),
		ApproveCount:  vote.ApproveCount,
		RejectCount:   vote.RejectCount,
		RequiredVotes: vote.RequiredVotes,
		CreatedAt:     vote.CreatedAt.Format(time.RFC3339),
		ExpiresAt:     vote.ExpiresAt.Format(time.RFC3339),
		Participants:  make([]VoteParticipantResponse, len(vote.Participants)),
		Comments:      make([]VoteCommentResponse, len(vote.Comments)),
	}
	if vote.ClosedAt != nil {
		v := vote.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &v
	}
	if vote.CleanupAt != nil {
		v := vote.CleanupAt.Format(time.RFC3339)
		resp.CleanupAt = &v
	}
	for i := range vote.Participants {
		p := vote.Participants[i]
		resp.Participants[i] = VoteParticipantResponse{
			ID:        p.ID,
			UserID:    p.UserID,
			Decision:  string(p.Decision),
			User:      summaryToResponse(p.User),
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		}
	}
	for i := range vote.Comments {
		c := vote.Comments[i]
		resp.Comments[i] = VoteCommentResponse{
			ID:        c.ID,
			UserID:    c.UserID,
			Comment:   c.Comment,
			User:      summaryToResponse(c.User),
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp
}

func statsToResponse(stats *service.Stats) StatsResponse {
	return StatsResponse{
		TotalUsers:    stats.TotalUsers,
		ApprovedUsers: stats.ApprovedUsers,
		PendingUsers:  stats.PendingUsers,
		TotalSpots:    stats.TotalSpots,
		PublicSpots:   stats.PublicSpots,
	}
}
