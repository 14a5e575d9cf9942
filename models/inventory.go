package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is owned by exactly one user until sold. A sale deletes the
// item and credits its value in the same transaction.
type InventoryItem struct {
	ID         int64           `db:"id"`
	UserID     int64           `db:"user_id"`
	ItemName   string          `db:"item_name"`
	ItemValue  decimal.Decimal `db:"item_value"`
	ItemType   string          `db:"item_type"`
	AcquiredAt time.Time       `db:"acquired_at"`
}

// LiquidationResult describes a bulk sale. Total is the sum of the items
// actually liquidated; items removed concurrently between the scan and the
// per-item delete are skipped and not counted.
type LiquidationResult struct {
	ItemsSold  int
	Total      decimal.Decimal
	NewBalance decimal.Decimal
}
