package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MuhammadaminPy/gifts/events"
	"github.com/MuhammadaminPy/gifts/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by their external ID, nil if absent
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// CreateIfAbsent registers a user idempotently with the given commission
	// rate; reports whether a row was inserted
	CreateIfAbsent(ctx context.Context, userID int64, username, firstName string, referredBy *int64, refPercent int) (bool, error)

	// AddBalance credits the spendable balance atomically
	AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) error

	// DeductBalance debits the spendable balance atomically, failing on insufficient funds
	DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) error

	// AddDepositTotals credits the balance and lifetime deposit sum together
	AddDepositTotals(ctx context.Context, userID int64, amount decimal.Decimal) error

	// CreditRefBalance credits the referral-commission balance
	CreditRefBalance(ctx context.Context, userID int64, amount decimal.Decimal) error

	// TransferRefBalance sweeps ref_balance into balance when it meets the minimum
	TransferRefBalance(ctx context.Context, userID int64, minimum decimal.Decimal) (moved, newBalance decimal.Decimal, err error)

	// IncrementGamesPlayed bumps the lifetime game counter
	IncrementGamesPlayed(ctx context.Context, userID int64) error

	// TouchActivity stamps last_activity
	TouchActivity(ctx context.Context, userID int64) error

	// GetReferrals returns the users referred by the given user
	GetReferrals(ctx context.Context, userID int64) ([]*models.Referral, error)

	// GetLeaderboard returns the top users by lifetime deposits
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)

	// GetAdminCounts returns total/online/new user counters
	GetAdminCounts(ctx context.Context, onlineSince, newSince time.Time) (total, online, fresh int64, err error)
}

// DepositRepository defines the interface for deposit records
type DepositRepository interface {
	// Create records a completed deposit
	Create(ctx context.Context, d *models.Deposit) error

	// TotalAmount returns the platform-wide deposit sum
	TotalAmount(ctx context.Context) (decimal.Decimal, error)
}

// WithdrawalRepository defines the interface for withdrawal requests
type WithdrawalRepository interface {
	// Create inserts a pending request and generates its id
	Create(ctx context.Context, w *models.Withdrawal) error

	// GetByID retrieves a request, nil if absent
	GetByID(ctx context.Context, id string) (*models.Withdrawal, error)

	// MarkProcessed transitions pending -> terminal status at most once;
	// nil receipt means the request was missing or already terminal
	MarkProcessed(ctx context.Context, id string, status models.WithdrawalStatus) (*models.WithdrawalReceipt, error)

	// GetByUser returns a user's requests, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Withdrawal, error)
}

// InventoryRepository defines the interface for inventory items
type InventoryRepository interface {
	// Add inserts a new item
	Add(ctx context.Context, item *models.InventoryItem) error

	// GetByUser returns a user's full inventory
	GetByUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error)

	// DeleteReturningValue removes an owned item and reports its value;
	// found=false when the item is missing or owned by someone else
	DeleteReturningValue(ctx context.Context, itemID, userID int64) (value decimal.Decimal, found bool, err error)
}

// GameRepository defines the interface for game round records
type GameRepository interface {
	// Create records an applied outcome
	Create(ctx context.Context, round *models.GameRound) error

	// GetRecentByUser returns recent rounds, newest first
	GetRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.GameRound, error)
}

// FreeCaseRepository defines the interface for free-case cooldown state
type FreeCaseRepository interface {
	// GetLastClaim returns the last claim time, nil if never claimed
	GetLastClaim(ctx context.Context, userID int64) (*time.Time, error)

	// ClaimIfEligible conditionally advances the claim timestamp;
	// reports whether it moved
	ClaimIfEligible(ctx context.Context, userID int64, now time.Time, cooldown time.Duration) (bool, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// UserService defines the interface for registration and account queries
type UserService interface {
	// Register creates the account on first contact; repeat calls are no-ops
	Register(ctx context.Context, userID int64, username, firstName string, referredBy *int64) (*models.User, error)

	// GetUser returns the account or ErrUserNotFound
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// GetBalance returns both balances
	GetBalance(ctx context.Context, userID int64) (*models.BalanceSnapshot, error)

	// TouchActivity stamps last_activity for the online counter
	TouchActivity(ctx context.Context, userID int64) error
}

// LedgerService defines the interface for balance mutation primitives
type LedgerService interface {
	// Credit adds funds and returns the resulting balance
	Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// Debit removes funds and returns the resulting balance
	Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// AdminAdjust applies a signed operator correction
	AdminAdjust(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error)

	// ApplyDeposit credits the account, records the deposit and pays the
	// one-hop referral commission, all atomically
	ApplyDeposit(ctx context.Context, userID int64, amount decimal.Decimal, method string) (*models.DepositResult, error)

	// TransferReferralBalance sweeps ref_balance into balance above the minimum
	TransferReferralBalance(ctx context.Context, userID int64) (*models.ReferralTransferResult, error)
}

// GameService applies externally computed game outcomes to the ledger
type GameService interface {
	// ApplyOutcome settles one round: win credits bet*multiplier-bet, loss
	// debits the bet; games_played increments either way
	ApplyOutcome(ctx context.Context, userID int64, betAmount decimal.Decimal, won bool, multiplier decimal.Decimal) (*models.GameOutcome, error)
}

// WithdrawalService owns the withdrawal request lifecycle
type WithdrawalService interface {
	// Create reserves the amount and opens a pending request; returns its id
	Create(ctx context.Context, userID int64, amount decimal.Decimal, wallet string) (string, error)

	// Approve finalizes a pending request without moving funds
	Approve(ctx context.Context, requestID string) (*models.WithdrawalReceipt, error)

	// Reject refunds the reserved amount and finalizes the request
	Reject(ctx context.Context, requestID string) (*models.WithdrawalReceipt, error)

	// ListByUser returns a user's requests, newest first
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Withdrawal, error)
}

// InventoryService owns item grants and liquidation
type InventoryService interface {
	// AddItem grants an item to a user
	AddItem(ctx context.Context, userID int64, name string, value decimal.Decimal, itemType string) (*models.InventoryItem, error)

	// GetInventory returns a user's items
	GetInventory(ctx context.Context, userID int64) ([]*models.InventoryItem, error)

	// SellItem liquidates one item; missing/unowned items return zero, not an error
	SellItem(ctx context.Context, itemID, userID int64) (decimal.Decimal, error)

	// SellAll liquidates the whole inventory, skipping concurrently removed items
	SellAll(ctx context.Context, userID int64) (*models.LiquidationResult, error)
}

// FreeCaseService gates the daily bonus claim
type FreeCaseService interface {
	// CanClaim reports eligibility without mutating anything
	CanClaim(ctx context.Context, userID int64) (bool, error)

	// Claim conditionally records a claim; callers grant the reward only
	// when it returns true
	Claim(ctx context.Context, userID int64) (bool, error)
}

// StatsService defines the interface for query operations
type StatsService interface {
	// GetLeaderboard returns the top users by lifetime deposits
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)

	// GetAdminStats returns the operator dashboard counters
	GetAdminStats(ctx context.Context) (*models.AdminStats, error)

	// GetReferrals returns the users referred by the given user
	GetReferrals(ctx context.Context, userID int64) ([]*models.Referral, error)

	// GetUserStats returns a profile view with recent activity
	GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	DepositRepository() DepositRepository
	WithdrawalRepository() WithdrawalRepository
	InventoryRepository() InventoryRepository
	GameRepository() GameRepository
	FreeCaseRepository() FreeCaseRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
