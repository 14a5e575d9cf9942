package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MuhammadaminPy/gifts/database"
)

// FreeCaseRepository implements the service.FreeCaseRepository interface
type FreeCaseRepository struct {
	q queryable
}

// NewFreeCaseRepository creates a new free case repository
func NewFreeCaseRepository(db *database.DB) *FreeCaseRepository {
	return &FreeCaseRepository{q: db.Pool}
}

// newFreeCaseRepositoryWithTx creates a new free case repository with a transaction
func newFreeCaseRepositoryWithTx(tx queryable) *FreeCaseRepository {
	return &FreeCaseRepository{q: tx}
}

// GetLastClaim returns the timestamp of the user's last free-case claim, or
// nil if they have never claimed.
func (r *FreeCaseRepository) GetLastClaim(ctx context.Context, userID int64) (*time.Time, error) {
	query := `SELECT last_claim FROM free_case_claims WHERE user_id = $1`

	var last time.Time
	err := r.q.QueryRow(ctx, query, userID).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get free case claim for user %d: %w", userID, err)
	}

	return &last, nil
}

// ClaimIfEligible advances the claim timestamp to now, but only when no
// claim exists or the previous claim is older than the cooldown. The
// conditional upsert makes concurrent double-claims lose: exactly one of
// two racing calls advances the row. Returns whether the timestamp moved.
func (r *FreeCaseRepository) ClaimIfEligible(ctx context.Context, userID int64, now time.Time, cooldown time.Duration) (bool, error) {
	query := `
		INSERT INTO free_case_claims (user_id, last_claim)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_claim = EXCLUDED.last_claim
		WHERE free_case_claims.last_claim <= $3
	`

	result, err := r.q.Exec(ctx, query, userID, now, now.Add(-cooldown))
	if err != nil {
		return false, fmt.Errorf("failed to claim free case for user %d: %w", userID, err)
	}

	return result.RowsAffected() > 0, nil
}
