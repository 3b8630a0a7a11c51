package domain

import "time"

// Invite is a single-use, time-limited registration code bound to an email.
type Invite struct {
	ID        string
	Code      string
	Email     string
	CreatedBy string
	IsUsed    bool
	UsedAt    *time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
}
