package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	GameResultWin  = "win"
	GameResultLose = "lose"
)

// GameRound records one applied game outcome. WinAmount is the gross payout
// (bet * multiplier) on a win and zero on a loss.
type GameRound struct {
	ID         int64           `db:"id"`
	UserID     int64           `db:"user_id"`
	BetAmount  decimal.Decimal `db:"bet_amount"`
	Multiplier decimal.Decimal `db:"multiplier"`
	WinAmount  decimal.Decimal `db:"win_amount"`
	Result     string          `db:"result"`
	CreatedAt  time.Time       `db:"created_at"`
}

// GameOutcome is returned to the caller after a round settles.
type GameOutcome struct {
	Won        bool
	BetAmount  decimal.Decimal
	WinAmount  decimal.Decimal
	NewBalance decimal.Decimal
}
