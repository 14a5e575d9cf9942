package models

import "errors"

// Business error taxonomy. Callers match these with errors.Is; anything
// else bubbling out of a repository is an infrastructure failure.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
	ErrRequestNotFound     = errors.New("withdrawal request not found")
	ErrRequestNotPending   = errors.New("withdrawal request is not pending")
	ErrBelowThreshold      = errors.New("referral balance below transfer minimum")
	ErrSelfReferral        = errors.New("users cannot refer themselves")
)
