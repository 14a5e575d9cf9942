package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MuhammadaminPy/gifts/config"
	"github.com/MuhammadaminPy/gifts/events"
	"github.com/MuhammadaminPy/gifts/models"
)

var oneHundred = decimal.NewFromInt(100)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory, cfg *config.Config) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// Credit adds funds to a user's spendable balance
func (s *ledgerService) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.adjust(ctx, userID, amount, models.TransactionTypeCredit, nil)
}

// Debit removes funds from a user's spendable balance
func (s *ledgerService) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.adjust(ctx, userID, amount.Neg(), models.TransactionTypeDebit, nil)
}

// AdminAdjust applies a signed operator correction
func (s *ledgerService) AdminAdjust(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	return s.adjust(ctx, userID, delta, models.TransactionTypeAdminAdjust, map[string]any{
		"operator": true,
	})
}

// adjust applies a signed balance change inside a single transaction.
// Negative deltas are guarded against overdraft at the database level.
func (s *ledgerService) adjust(ctx context.Context, userID int64, delta decimal.Decimal, transactionType models.TransactionType, metadata map[string]any) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, fmt.Errorf("amount must be non-zero")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return decimal.Zero, models.ErrUserNotFound
	}

	if delta.IsNegative() {
		if err := uow.UserRepository().DeductBalance(ctx, userID, delta.Neg()); err != nil {
			return decimal.Zero, err
		}
	} else {
		if err := uow.UserRepository().AddBalance(ctx, userID, delta); err != nil {
			return decimal.Zero, err
		}
	}

	newBalance := user.Balance.Add(delta)

	history := &models.BalanceHistory{
		UserID:              userID,
		BalanceBefore:       user.Balance,
		BalanceAfter:        newBalance,
		ChangeAmount:        delta,
		TransactionType:     transactionType,
		TransactionMetadata: metadata,
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return decimal.Zero, fmt.Errorf("failed to record balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// ApplyDeposit credits the account, records the deposit and pays the
// one-hop referral commission to the referrer's ref_balance, all within
// one transaction.
func (s *ledgerService) ApplyDeposit(ctx context.Context, userID int64, amount decimal.Decimal, method string) (*models.DepositResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("deposit amount must be positive")
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

	if err := uow.UserRepository().AddDepositTotals(ctx, userID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit deposit: %w", err)
	}

	deposit := &models.Deposit{
		UserID: userID,
		Amount: amount,
		Method: method,
	}
	if err := uow.DepositRepository().Create(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to create deposit record: %w", err)
	}

	newBalance := user.Balance.Add(amount)

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeDeposit,
		TransactionMetadata: map[string]any{
			"method":     method,
			"deposit_id": deposit.ID,
		},
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	// One-hop commission: only the direct referrer earns, at their own
	// ref_percent rate, into ref_balance rather than the spendable balance.
	commission := decimal.Zero
	var referrerID *int64
	if user.ReferredBy != nil {
		referrer, err := uow.UserRepository().GetByID(ctx, *user.ReferredBy)
		if err != nil {
			return nil, fmt.Errorf("failed to get referrer: %w", err)
		}
		if referrer != nil {
			commission = amount.Mul(decimal.NewFromInt(int64(referrer.RefPercent))).Div(oneHundred)
			if commission.IsPositive() {
				if err := uow.UserRepository().CreditRefBalance(ctx, referrer.UserID, commission); err != nil {
					return nil, fmt.Errorf("failed to credit referral commission: %w", err)
				}
				referrerID = &referrer.UserID
			}
		}
	}

	uow.EventBus().Publish(events.DepositReceivedEvent{
		UserID:     userID,
		Amount:     amount,
		Method:     method,
		ReferrerID: referrerID,
		Commission: commission,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.DepositResult{
		NewBalance: newBalance,
		Commission: commission,
		ReferrerID: referrerID,
	}, nil
}

// TransferReferralBalance sweeps the full ref_balance into the spendable
// balance once it reaches the configured minimum.
func (s *ledgerService) TransferReferralBalance(ctx context.Context, userID int64) (*models.ReferralTransferResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	moved, newBalance, err := uow.UserRepository().TransferRefBalance(ctx, userID, s.cfg.RefTransferMinimum)
	if err != nil {
		return nil, err
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   newBalance.Sub(moved),
		BalanceAfter:    newBalance,
		ChangeAmount:    moved,
		TransactionType: models.TransactionTypeReferralTransfer,
		TransactionMetadata: map[string]any{
			"minimum": s.cfg.RefTransferMinimum.String(),
		},
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ReferralTransferResult{
		Moved:      moved,
		NewBalance: newBalance,
	}, nil
}
