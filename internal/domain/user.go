package domain

import "time"

type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// User represents a member of the platform. Accounts are created through
// invite redemption and stay unapproved until an admin confirms them.
type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	Role            Role
	IsApproved      bool
	InstagramHandle string
	ProfileImage    string
	InvitedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserSummary is the public projection of a user embedded in other payloads.
type UserSummary struct {
	ID       string
	Username string
	Email    string
	Role     Role
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
