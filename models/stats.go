package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminStats is the operator dashboard snapshot.
type AdminStats struct {
	TotalUsers    int64
	OnlineNow     int64
	New24h        int64
	TotalDeposits decimal.Decimal
}

// LeaderboardEntry ranks users by lifetime deposits.
type LeaderboardEntry struct {
	Rank          int
	UserID        int64
	Username      string
	FirstName     string
	TotalDeposits decimal.Decimal
}

// Referral is one user attracted by another.
type Referral struct {
	UserID        int64
	Username      string
	TotalDeposits decimal.Decimal
	CreatedAt     time.Time
}

// UserStats bundles a user with their recent activity for profile views.
type UserStats struct {
	User        *User
	RecentGames []*GameRound
	History     []*BalanceHistory
}
