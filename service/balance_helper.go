package service

import (
	"context"
	"fmt"

	"github.com/MuhammadaminPy/gifts/events"
	"github.com/MuhammadaminPy/gifts/models"
)

// RecordBalanceChange records a balance history entry and queues the
// matching event on the unit of work's transactional bus. This is the
// single entry point for all spendable-balance changes in the system.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	return nil
}
