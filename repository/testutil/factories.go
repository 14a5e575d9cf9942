package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/MuhammadaminPy/gifts/models"
)

// CreateTestItem creates an inventory item with default values
func CreateTestItem(userID int64, name string, value string) *models.InventoryItem {
	return &models.InventoryItem{
		UserID:    userID,
		ItemName:  name,
		ItemValue: Dec(value),
		ItemType:  "case_drop",
	}
}

// CreateTestHistory creates a balance history entry with default values
func CreateTestHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   Dec("100"),
		BalanceAfter:    Dec("90"),
		ChangeAmount:    Dec("-10"),
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// Dec parses a decimal literal, panicking on malformed test input
func Dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
