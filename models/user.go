package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a platform user with a spendable balance and a separate
// referral-commission balance. ReferredBy is set once at registration and
// never changes afterwards.
type User struct {
	UserID        int64           `db:"user_id"`
	Username      string          `db:"username"`
	FirstName     string          `db:"first_name"`
	Balance       decimal.Decimal `db:"balance"`
	RefBalance    decimal.Decimal `db:"ref_balance"`
	TotalDeposits decimal.Decimal `db:"total_deposits"`
	GamesPlayed   int64           `db:"games_played"`
	RefPercent    int             `db:"ref_percent"`
	ReferredBy    *int64          `db:"referred_by"`
	CreatedAt     time.Time       `db:"created_at"`
	LastActivity  time.Time       `db:"last_activity"`
}

// BalanceSnapshot is the pair of balances returned to request handlers.
type BalanceSnapshot struct {
	Balance    decimal.Decimal
	RefBalance decimal.Decimal
}
