package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MuhammadaminPy/gifts/models"
)

// inventoryService implements the InventoryService interface
type inventoryService struct {
	uowFactory UnitOfWorkFactory
}

// NewInventoryService creates a new inventory service
func NewInventoryService(uowFactory UnitOfWorkFactory) InventoryService {
	return &inventoryService{
		uowFactory: uowFactory,
	}
}

// AddItem grants an item to a user
func (s *inventoryService) AddItem(ctx context.Context, userID int64, name string, value decimal.Decimal, itemType string) (*models.InventoryItem, error) {
	if value.IsNegative() {
		return nil, fmt.Errorf("item value must not be negative")
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

	item := &models.InventoryItem{
		UserID:    userID,
		ItemName:  name,
		ItemValue: value,
		ItemType:  itemType,
	}
	if err := uow.InventoryRepository().Add(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add inventory item: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return item, nil
}

// GetInventory returns a user's items
func (s *inventoryService) GetInventory(ctx context.Context, userID int64) ([]*models.InventoryItem, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	items, err := uow.InventoryRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return items, nil
}

// SellItem deletes the item and credits its value atomically. Selling an
// item the user does not own returns zero rather than an error, so repeated
// sell requests are harmless.
func (s *inventoryService) SellItem(ctx context.Context, itemID, userID int64) (decimal.Decimal, error) {
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

	value, found, err := uow.InventoryRepository().DeleteReturningValue(ctx, itemID, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sell item: %w", err)
	}
	if !found {
		if err := uow.Commit(); err != nil {
			return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return decimal.Zero, nil
	}

	if err := s.creditSale(ctx, uow, userID, user.Balance, value, map[string]any{
		"item_id": itemID,
	}); err != nil {
		return decimal.Zero, err
	}

	if err := uow.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return value, nil
}

// SellAll liquidates the whole inventory in one transaction. Items that
// disappear between the scan and the per-item delete are skipped, and only
// the sum of items actually deleted is credited.
func (s *inventoryService) SellAll(ctx context.Context, userID int64) (*models.LiquidationResult, error) {
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

	items, err := uow.InventoryRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}

	total := decimal.Zero
	sold := 0
	for _, item := range items {
		value, found, err := uow.InventoryRepository().DeleteReturningValue(ctx, item.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to sell item %d: %w", item.ID, err)
		}
		if !found {
			continue
		}
		total = total.Add(value)
		sold++
	}

	newBalance := user.Balance
	if sold > 0 {
		if err := s.creditSale(ctx, uow, userID, user.Balance, total, map[string]any{
			"items_sold": sold,
		}); err != nil {
			return nil, err
		}
		newBalance = user.Balance.Add(total)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.LiquidationResult{
		ItemsSold:  sold,
		Total:      total,
		NewBalance: newBalance,
	}, nil
}

func (s *inventoryService) creditSale(ctx context.Context, uow UnitOfWork, userID int64, balanceBefore, amount decimal.Decimal, metadata map[string]any) error {
	if err := uow.UserRepository().AddBalance(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to credit sale: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:              userID,
		BalanceBefore:       balanceBefore,
		BalanceAfter:        balanceBefore.Add(amount),
		ChangeAmount:        amount,
		TransactionType:     models.TransactionTypeItemSale,
		TransactionMetadata: metadata,
	}

	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return fmt.Errorf("failed to record balance change: %w", err)
	}

	return nil
}
