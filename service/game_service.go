package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MuhammadaminPy/gifts/models"
)

// gameService implements the GameService interface
type gameService struct {
	uowFactory UnitOfWorkFactory
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory) GameService {
	return &gameService{
		uowFactory: uowFactory,
	}
}

// ApplyOutcome settles one externally decided round. A win credits the net
// payout (bet * multiplier - bet), a loss debits the bet; either way the
// round is recorded and games_played is incremented, all in one transaction.
func (s *gameService) ApplyOutcome(ctx context.Context, userID int64, betAmount decimal.Decimal, won bool, multiplier decimal.Decimal) (*models.GameOutcome, error) {
	if !betAmount.IsPositive() {
		return nil, fmt.Errorf("bet amount must be positive")
	}
	if won && multiplier.LessThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("win multiplier must be at least 1")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	// The bet must be covered before the round settles, wins included:
	// a caller cannot stake funds the user never had.
	if user.Balance.LessThan(betAmount) {
		return nil, models.ErrInsufficientBalance
	}

	var (
		winAmount       decimal.Decimal
		changeAmount    decimal.Decimal
		result          string
		transactionType models.TransactionType
	)

	if won {
		winAmount = betAmount.Mul(multiplier)
		changeAmount = winAmount.Sub(betAmount)
		result = models.GameResultWin
		transactionType = models.TransactionTypeGameWin

		if err := uow.UserRepository().AddBalance(ctx, userID, changeAmount); err != nil {
			return nil, fmt.Errorf("failed to add winnings: %w", err)
		}
	} else {
		winAmount = decimal.Zero
		changeAmount = betAmount.Neg()
		result = models.GameResultLose
		transactionType = models.TransactionTypeGameLoss

		if err := uow.UserRepository().DeductBalance(ctx, userID, betAmount); err != nil {
			return nil, err
		}
	}

	newBalance := user.Balance.Add(changeAmount)

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    changeAmount,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"bet_amount": betAmount.String(),
			"multiplier": multiplier.String(),
			"won":        won,
		},
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	round := &models.GameRound{
		UserID:     userID,
		BetAmount:  betAmount,
		Multiplier: multiplier,
		WinAmount:  winAmount,
		Result:     result,
	}
	if err := uow.GameRepository().Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create game round: %w", err)
	}

	if err := uow.UserRepository().IncrementGamesPlayed(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to increment games played: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.GameOutcome{
		Won:        won,
		BetAmount:  betAmount,
		WinAmount:  winAmount,
		NewBalance: newBalance,
	}, nil
}
