package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MuhammadaminPy/gifts/config"
	"github.com/MuhammadaminPy/gifts/models"
)

// freeCaseService implements the FreeCaseService interface
type freeCaseService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	now        func() time.Time // Injectable for tests
}

// NewFreeCaseService creates a new free case service
func NewFreeCaseService(uowFactory UnitOfWorkFactory, cfg *config.Config) FreeCaseService {
	return &freeCaseService{
		uowFactory: uowFactory,
		cfg:        cfg,
		now:        time.Now,
	}
}

// CanClaim reports whether a full cooldown has elapsed since the last claim.
// Never-claimed users are always eligible.
func (s *freeCaseService) CanClaim(ctx context.Context, userID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := s.requireUser(ctx, uow, userID); err != nil {
		return false, err
	}

	lastClaim, err := uow.FreeCaseRepository().GetLastClaim(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get last claim: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if lastClaim == nil {
		return true, nil
	}
	return s.now().Sub(*lastClaim) >= s.cfg.FreeCaseCooldown, nil
}

// Claim conditionally advances the claim timestamp. The eligibility check
// happens inside the update itself, so two concurrent claims cannot both
// succeed.
func (s *freeCaseService) Claim(ctx context.Context, userID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := s.requireUser(ctx, uow, userID); err != nil {
		return false, err
	}

	claimed, err := uow.FreeCaseRepository().ClaimIfEligible(ctx, userID, s.now(), s.cfg.FreeCaseCooldown)
	if err != nil {
		return false, fmt.Errorf("failed to claim free case: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return claimed, nil
}

func (s *freeCaseService) requireUser(ctx context.Context, uow UnitOfWork, userID int64) error {
	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return models.ErrUserNotFound
	}
	return nil
}
