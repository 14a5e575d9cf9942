package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MuhammadaminPy/gifts/database"
	"github.com/MuhammadaminPy/gifts/models"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `user_id, username, first_name, balance, ref_balance,
		total_deposits, games_played, ref_percent, referred_by, created_at, last_activity`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.Balance,
		&user.RefBalance,
		&user.TotalDeposits,
		&user.GamesPlayed,
		&user.RefPercent,
		&user.ReferredBy,
		&user.CreatedAt,
		&user.LastActivity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their external user ID. Returns nil without
// an error when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return user, nil
}

// CreateIfAbsent registers a user. Registration is idempotent: if the row
// already exists nothing is touched, including referred_by and the
// commission rate. Returns whether a new row was inserted.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, userID int64, username, firstName string, referredBy *int64, refPercent int) (bool, error) {
	query := `
		INSERT INTO users (user_id, username, first_name, referred_by, ref_percent)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query, userID, username, firstName, referredBy, refPercent)
	if err != nil {
		return false, fmt.Errorf("failed to register user %d: %w", userID, err)
	}

	return result.RowsAffected() > 0, nil
}

// AddBalance credits a user's spendable balance atomically
func (r *UserRepository) AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	query := `
		UPDATE users
		SET balance = balance + $1, last_activity = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// DeductBalance debits a user's spendable balance atomically. The
// sufficiency guard lives in the WHERE clause, so two concurrent debits can
// never both succeed against the same funds.
func (r *UserRepository) DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	query := `
		UPDATE users
		SET balance = balance - $1, last_activity = NOW()
		WHERE user_id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user %d: %w", userID, err)
		}
		if user == nil {
			return models.ErrUserNotFound
		}
		return models.ErrInsufficientBalance
	}

	return nil
}

// AddDepositTotals credits the balance and bumps the lifetime deposit sum
// in one statement.
func (r *UserRepository) AddDepositTotals(ctx context.Context, userID int64, amount decimal.Decimal) error {
	query := `
		UPDATE users
		SET balance = balance + $1, total_deposits = total_deposits + $1, last_activity = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to apply deposit totals for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// CreditRefBalance credits a referrer's commission balance
func (r *UserRepository) CreditRefBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	query := `
		UPDATE users
		SET ref_balance = ref_balance + $1
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit referral balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// TransferRefBalance moves the entire referral balance into the spendable
// balance when it meets the minimum, as a single atomic statement. Returns
// the moved amount and the resulting balance.
func (r *UserRepository) TransferRefBalance(ctx context.Context, userID int64, minimum decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		WITH eligible AS (
			SELECT user_id, ref_balance
			FROM users
			WHERE user_id = $1 AND ref_balance >= $2
			FOR UPDATE
		)
		UPDATE users u
		SET balance = u.balance + e.ref_balance, ref_balance = 0
		FROM eligible e
		WHERE u.user_id = e.user_id
		RETURNING e.ref_balance, u.balance
	`

	var moved, newBalance decimal.Decimal
	err := r.q.QueryRow(ctx, query, userID, minimum).Scan(&moved, &newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		user, getErr := r.GetByID(ctx, userID)
		if getErr != nil {
			return decimal.Zero, decimal.Zero, getErr
		}
		if user == nil {
			return decimal.Zero, decimal.Zero, models.ErrUserNotFound
		}
		return decimal.Zero, user.Balance, models.ErrBelowThreshold
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to transfer referral balance for user %d: %w", userID, err)
	}

	return moved, newBalance, nil
}

// IncrementGamesPlayed bumps the lifetime game counter
func (r *UserRepository) IncrementGamesPlayed(ctx context.Context, userID int64) error {
	query := `UPDATE users SET games_played = games_played + 1 WHERE user_id = $1`

	result, err := r.q.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to increment games played for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// TouchActivity stamps the user's last activity, which feeds the "online"
// admin counter.
func (r *UserRepository) TouchActivity(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_activity = NOW() WHERE user_id = $1`

	result, err := r.q.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to touch activity for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// GetReferrals returns the users referred by the given user
func (r *UserRepository) GetReferrals(ctx context.Context, userID int64) ([]*models.Referral, error) {
	query := `
		SELECT user_id, username, total_deposits, created_at
		FROM users
		WHERE referred_by = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrals for user %d: %w", userID, err)
	}
	defer rows.Close()

	var referrals []*models.Referral
	for rows.Next() {
		var ref models.Referral
		if err := rows.Scan(&ref.UserID, &ref.Username, &ref.TotalDeposits, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, &ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}

	return referrals, nil
}

// GetLeaderboard returns the top users ordered by lifetime deposits
func (r *UserRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT user_id, username, first_name, total_deposits
		FROM users
		ORDER BY total_deposits DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.FirstName, &entry.TotalDeposits); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return entries, nil
}

// GetAdminCounts returns the user counters for the admin dashboard: total
// users, users active since onlineSince, and users created since newSince.
func (r *UserRepository) GetAdminCounts(ctx context.Context, onlineSince, newSince time.Time) (total, online, fresh int64, err error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE last_activity > $1),
			COUNT(*) FILTER (WHERE created_at > $2)
		FROM users
	`

	err = r.q.QueryRow(ctx, query, onlineSince, newSince).Scan(&total, &online, &fresh)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get admin counts: %w", err)
	}

	return total, online, fresh, nil
}
