package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MuhammadaminPy/gifts/events"
	"github.com/MuhammadaminPy/gifts/models"
)

// withdrawalService implements the WithdrawalService interface
type withdrawalService struct {
	uowFactory UnitOfWorkFactory
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(uowFactory UnitOfWorkFactory) WithdrawalService {
	return &withdrawalService{
		uowFactory: uowFactory,
	}
}

// Create reserves the amount by debiting it immediately and opens a pending
// request. The reservation and the request row commit or roll back together.
func (s *withdrawalService) Create(ctx context.Context, userID int64, amount decimal.Decimal, wallet string) (string, error) {
	if !amount.IsPositive() {
		return "", fmt.Errorf("withdrawal amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", models.ErrUserNotFound
	}

	if err := uow.UserRepository().DeductBalance(ctx, userID, amount); err != nil {
		return "", err
	}

	withdrawal := &models.Withdrawal{
		UserID: userID,
		Amount: amount,
		Wallet: wallet,
	}
	if err := uow.WithdrawalRepository().Create(ctx, withdrawal); err != nil {
		return "", fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    user.Balance.Sub(amount),
		ChangeAmount:    amount.Neg(),
		TransactionType: models.TransactionTypeWithdrawalHold,
		TransactionMetadata: map[string]any{
			"request_id": withdrawal.ID,
			"wallet":     wallet,
		},
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return "", fmt.Errorf("failed to record balance change: %w", err)
	}

	uow.EventBus().Publish(events.WithdrawalRequestedEvent{
		RequestID: withdrawal.ID,
		UserID:    userID,
		Amount:    amount,
		Wallet:    wallet,
	})

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return withdrawal.ID, nil
}

// Approve finalizes a pending request. Funds were already reserved at
// creation, so approval moves nothing.
func (s *withdrawalService) Approve(ctx context.Context, requestID string) (*models.WithdrawalReceipt, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	receipt, err := s.markProcessed(ctx, uow, requestID, models.WithdrawalStatusApproved)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return receipt, nil
}

// Reject refunds the reserved amount and finalizes the request
func (s *withdrawalService) Reject(ctx context.Context, requestID string) (*models.WithdrawalReceipt, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	receipt, err := s.markProcessed(ctx, uow, requestID, models.WithdrawalStatusRejected)
	if err != nil {
		return nil, err
	}

	// Refund happens inside the same transaction, so a crash between the
	// status flip and the credit cannot strand the reserved funds.
	user, err := uow.UserRepository().GetByID(ctx, receipt.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	if err := uow.UserRepository().AddBalance(ctx, receipt.UserID, receipt.Amount); err != nil {
		return nil, fmt.Errorf("failed to refund reserved amount: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          receipt.UserID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    user.Balance.Add(receipt.Amount),
		ChangeAmount:    receipt.Amount,
		TransactionType: models.TransactionTypeWithdrawalRefund,
		TransactionMetadata: map[string]any{
			"request_id": requestID,
		},
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return receipt, nil
}

// ListByUser returns a user's withdrawal requests, newest first
func (s *withdrawalService) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Withdrawal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	withdrawals, err := uow.WithdrawalRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return withdrawals, nil
}

// markProcessed performs the pending -> terminal transition and translates
// the at-most-once guard into the caller-facing error taxonomy.
func (s *withdrawalService) markProcessed(ctx context.Context, uow UnitOfWork, requestID string, status models.WithdrawalStatus) (*models.WithdrawalReceipt, error) {
	receipt, err := uow.WithdrawalRepository().MarkProcessed(ctx, requestID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to mark withdrawal processed: %w", err)
	}
	if receipt == nil {
		// Distinguish a request that never existed from one that already
		// reached a terminal state.
		existing, err := uow.WithdrawalRepository().GetByID(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to get withdrawal: %w", err)
		}
		if existing == nil {
			return nil, models.ErrRequestNotFound
		}
		return nil, models.ErrRequestNotPending
	}

	uow.EventBus().Publish(events.WithdrawalResolvedEvent{
		RequestID: requestID,
		UserID:    receipt.UserID,
		Amount:    receipt.Amount,
		Status:    status,
	})

	return receipt, nil
}
