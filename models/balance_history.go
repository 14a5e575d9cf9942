package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeCredit           TransactionType = "credit"
	TransactionTypeDebit            TransactionType = "debit"
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeGameWin          TransactionType = "game_win"
	TransactionTypeGameLoss         TransactionType = "game_loss"
	TransactionTypeWithdrawalHold   TransactionType = "withdrawal_hold"
	TransactionTypeWithdrawalRefund TransactionType = "withdrawal_refund"
	TransactionTypeItemSale         TransactionType = "item_sale"
	TransactionTypeReferralTransfer TransactionType = "referral_transfer"
	TransactionTypeAdminAdjust      TransactionType = "admin_adjust"
)

// BalanceHistory represents a historical balance change. Every mutation of
// the spendable balance writes one row inside the same transaction.
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	BalanceBefore       decimal.Decimal `db:"balance_before"`
	BalanceAfter        decimal.Decimal `db:"balance_after"`
	ChangeAmount        decimal.Decimal `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
