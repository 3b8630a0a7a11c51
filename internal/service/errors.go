package service

import "errors"

var (
	// ErrForbidden indicates the caller lacks the required role, or is acting
	// on their own demotion vote.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates a referenced user, spot, or vote does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState indicates the operation does not apply to the record's
	// current state (vote not active, vote expired, role mismatch, bad input).
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict indicates a uniqueness rule rejected the operation
	// (duplicate active vote, duplicate ballot, taken username/email).
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPendingApproval indicates the account has not been approved yet.
	ErrPendingApproval = errors.New("account is pending admin approval")
)
