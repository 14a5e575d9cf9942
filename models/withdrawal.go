package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents the lifecycle state of a withdrawal request.
// Requests only move forward from pending; approved and rejected are final.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// Withdrawal represents a single withdrawal attempt. The amount is debited
// from the user's balance when the request is created, not when it is
// approved, so reserved funds can never be spent twice.
type Withdrawal struct {
	ID          string           `db:"id"`
	UserID      int64            `db:"user_id"`
	Amount      decimal.Decimal  `db:"amount"`
	Wallet      string           `db:"wallet"`
	Status      WithdrawalStatus `db:"status"`
	CreatedAt   time.Time        `db:"created_at"`
	ProcessedAt *time.Time       `db:"processed_at"`
}

// WithdrawalReceipt is returned by approve/reject so the caller can notify
// the affected user.
type WithdrawalReceipt struct {
	UserID int64
	Amount decimal.Decimal
}
