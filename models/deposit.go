package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit records a completed top-up.
type Deposit struct {
	ID        int64           `db:"id"`
	UserID    int64           `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	Method    string          `db:"method"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
}

// DepositResult is returned after a deposit has been applied. Commission is
// zero when the depositor has no referrer.
type DepositResult struct {
	NewBalance decimal.Decimal
	Commission decimal.Decimal
	ReferrerID *int64
}

// ReferralTransferResult describes a referral-balance sweep into the main
// balance.
type ReferralTransferResult struct {
	Moved      decimal.Decimal
	NewBalance decimal.Decimal
}
