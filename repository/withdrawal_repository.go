package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MuhammadaminPy/gifts/database"
	"github.com/MuhammadaminPy/gifts/models"
)

// WithdrawalRepository implements the service.WithdrawalRepository interface
type WithdrawalRepository struct {
	q queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// newWithdrawalRepositoryWithTx creates a new withdrawal repository with a transaction
func newWithdrawalRepositoryWithTx(tx queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

// Create inserts a new pending withdrawal request. The request id is
// generated here; callers read it back from the withdrawal struct.
func (r *WithdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	w.ID = newRequestID()
	w.Status = models.WithdrawalStatusPending

	query := `
		INSERT INTO withdrawals (id, user_id, amount, wallet, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, w.ID, w.UserID, w.Amount, w.Wallet, w.Status).Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal request for user %d: %w", w.UserID, err)
	}

	return nil
}

// GetByID retrieves a withdrawal request by its id. Returns nil without an
// error when the request does not exist.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*models.Withdrawal, error) {
	query := `
		SELECT id, user_id, amount, wallet, status, created_at, processed_at
		FROM withdrawals
		WHERE id = $1
	`

	var w models.Withdrawal
	err := r.q.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.UserID,
		&w.Amount,
		&w.Wallet,
		&w.Status,
		&w.CreatedAt,
		&w.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal %s: %w", id, err)
	}

	return &w, nil
}

// MarkProcessed transitions a request out of pending into the given
// terminal status and stamps processed_at. The status guard makes the
// transition happen at most once: a request that is already terminal
// matches zero rows and nil is returned.
func (r *WithdrawalRepository) MarkProcessed(ctx context.Context, id string, status models.WithdrawalStatus) (*models.WithdrawalReceipt, error) {
	query := `
		UPDATE withdrawals
		SET status = $2, processed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING user_id, amount
	`

	var receipt models.WithdrawalReceipt
	err := r.q.QueryRow(ctx, query, id, status).Scan(&receipt.UserID, &receipt.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark withdrawal %s %s: %w", id, status, err)
	}

	return &receipt, nil
}

// GetByUser returns a user's withdrawal requests, newest first
func (r *WithdrawalRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Withdrawal, error) {
	query := `
		SELECT id, user_id, amount, wallet, status, created_at, processed_at
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawals for user %d: %w", userID, err)
	}
	defer rows.Close()

	var withdrawals []*models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		err := rows.Scan(&w.ID, &w.UserID, &w.Amount, &w.Wallet, &w.Status, &w.CreatedAt, &w.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawals: %w", err)
	}

	return withdrawals, nil
}
