package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MuhammadaminPy/gifts/database"
	"github.com/MuhammadaminPy/gifts/models"
)

// InventoryRepository implements the service.InventoryRepository interface
type InventoryRepository struct {
	q queryable
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{q: db.Pool}
}

// newInventoryRepositoryWithTx creates a new inventory repository with a transaction
func newInventoryRepositoryWithTx(tx queryable) *InventoryRepository {
	return &InventoryRepository{q: tx}
}

// Add inserts a new inventory item for a user
func (r *InventoryRepository) Add(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory (user_id, item_name, item_value, item_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, acquired_at
	`

	err := r.q.QueryRow(ctx, query, item.UserID, item.ItemName, item.ItemValue, item.ItemType).
		Scan(&item.ID, &item.AcquiredAt)
	if err != nil {
		return fmt.Errorf("failed to add inventory item for user %d: %w", item.UserID, err)
	}

	return nil
}

// GetByUser returns a user's full inventory
func (r *InventoryRepository) GetByUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error) {
	query := `
		SELECT id, user_id, item_name, item_value, item_type, acquired_at
		FROM inventory
		WHERE user_id = $1
		ORDER BY acquired_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory for user %d: %w", userID, err)
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		err := rows.Scan(&item.ID, &item.UserID, &item.ItemName, &item.ItemValue, &item.ItemType, &item.AcquiredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}

	return items, nil
}

// DeleteReturningValue removes an item and reports its value. The delete
// only matches when the item exists and belongs to userID; a miss reports
// found=false with zero value and is not an error.
func (r *InventoryRepository) DeleteReturningValue(ctx context.Context, itemID, userID int64) (decimal.Decimal, bool, error) {
	query := `
		DELETE FROM inventory
		WHERE id = $1 AND user_id = $2
		RETURNING item_value
	`

	var value decimal.Decimal
	err := r.q.QueryRow(ctx, query, itemID, userID).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to sell inventory item %d: %w", itemID, err)
	}

	return value, true, nil
}
