package repository

import (
	"context"
	"fmt"

	"github.com/MuhammadaminPy/gifts/database"
	"github.com/MuhammadaminPy/gifts/models"
)

// GameRepository implements the service.GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

// Create records an applied game outcome
func (r *GameRepository) Create(ctx context.Context, round *models.GameRound) error {
	query := `
		INSERT INTO game_rounds (user_id, bet_amount, multiplier, win_amount, result)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		round.UserID,
		round.BetAmount,
		round.Multiplier,
		round.WinAmount,
		round.Result,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record game round for user %d: %w", round.UserID, err)
	}

	return nil
}

// GetRecentByUser returns a user's most recent rounds, newest first
func (r *GameRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.GameRound, error) {
	query := `
		SELECT id, user_id, bet_amount, multiplier, win_amount, result, created_at
		FROM game_rounds
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get game rounds for user %d: %w", userID, err)
	}
	defer rows.Close()

	var rounds []*models.GameRound
	for rows.Next() {
		var round models.GameRound
		err := rows.Scan(
			&round.ID,
			&round.UserID,
			&round.BetAmount,
			&round.Multiplier,
			&round.WinAmount,
			&round.Result,
			&round.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game round: %w", err)
		}
		rounds = append(rounds, &round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rounds: %w", err)
	}

	return rounds, nil
}
