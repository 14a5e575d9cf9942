package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MuhammadaminPy/gifts/database"
	"github.com/MuhammadaminPy/gifts/models"
)

// DepositRepository implements the service.DepositRepository interface
type DepositRepository struct {
	q queryable
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *database.DB) *DepositRepository {
	return &DepositRepository{q: db.Pool}
}

// newDepositRepositoryWithTx creates a new deposit repository with a transaction
func newDepositRepositoryWithTx(tx queryable) *DepositRepository {
	return &DepositRepository{q: tx}
}

// Create records a completed deposit
func (r *DepositRepository) Create(ctx context.Context, d *models.Deposit) error {
	query := `
		INSERT INTO deposits (user_id, amount, method, status)
		VALUES ($1, $2, $3, 'completed')
		RETURNING id, status, created_at
	`

	err := r.q.QueryRow(ctx, query, d.UserID, d.Amount, d.Method).Scan(&d.ID, &d.Status, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record deposit for user %d: %w", d.UserID, err)
	}

	return nil
}

// TotalAmount returns the platform-wide sum of all deposits
func (r *DepositRepository) TotalAmount(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM deposits`

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum deposits: %w", err)
	}

	return total, nil
}
