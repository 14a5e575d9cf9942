package service

import (
	"context"
	"fmt"

	"github.com/MuhammadaminPy/gifts/config"
	"github.com/MuhammadaminPy/gifts/events"
	"github.com/MuhammadaminPy/gifts/models"
)

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, cfg *config.Config) UserService {
	return &userService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// Register creates the account if it does not exist yet. The referral link
// is validated and recorded only on first contact; repeat calls never
// change it.
func (s *userService) Register(ctx context.Context, userID int64, username, firstName string, referredBy *int64) (*models.User, error) {
	if referredBy != nil && *referredBy == userID {
		return nil, models.ErrSelfReferral
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// A referral link pointing at an unknown user is dropped rather than
	// rejected, so stale invite links still register the newcomer.
	if referredBy != nil {
		referrer, err := uow.UserRepository().GetByID(ctx, *referredBy)
		if err != nil {
			return nil, fmt.Errorf("failed to check referrer: %w", err)
		}
		if referrer == nil {
			referredBy = nil
		}
	}

	created, err := uow.UserRepository().CreateIfAbsent(ctx, userID, username, firstName, referredBy, s.cfg.DefaultRefPercent)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	if created {
		uow.EventBus().Publish(events.UserRegisteredEvent{
			UserID:     userID,
			Username:   username,
			ReferredBy: user.ReferredBy,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// GetUser returns the account or ErrUserNotFound
func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
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

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// GetBalance returns both balances for a user
func (s *userService) GetBalance(ctx context.Context, userID int64) (*models.BalanceSnapshot, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.BalanceSnapshot{
		Balance:    user.Balance,
		RefBalance: user.RefBalance,
	}, nil
}

// TouchActivity stamps last_activity for the online counter
func (s *userService) TouchActivity(ctx context.Context, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.UserRepository().TouchActivity(ctx, userID); err != nil {
		return fmt.Errorf("failed to touch activity: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
