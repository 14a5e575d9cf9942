package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MuhammadaminPy/gifts/config"
	"github.com/MuhammadaminPy/gifts/models"
)

const (
	recentGamesLimit    = 10
	recentHistoryLimit  = 10
	defaultLeaderboard  = 10
	maxLeaderboardLimit = 100
)

// statsService implements the StatsService interface
type statsService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	now        func() time.Time // Injectable for tests
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory, cfg *config.Config) StatsService {
	return &statsService{
		uowFactory: uowFactory,
		cfg:        cfg,
		now:        time.Now,
	}
}

// GetLeaderboard returns the top users ranked by lifetime deposits
func (s *statsService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboard
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	entries, err := uow.UserRepository().GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}

// GetAdminStats returns the operator dashboard counters
func (s *statsService) GetAdminStats(ctx context.Context) (*models.AdminStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	now := s.now()
	total, online, fresh, err := uow.UserRepository().GetAdminCounts(ctx, now.Add(-s.cfg.OnlineWindow), now.Add(-s.cfg.NewUserWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to get admin counts: %w", err)
	}

	totalDeposits, err := uow.DepositRepository().TotalAmount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get total deposits: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.AdminStats{
		TotalUsers:    total,
		OnlineNow:     online,
		New24h:        fresh,
		TotalDeposits: totalDeposits,
	}, nil
}

// GetReferrals returns the users referred by the given user
func (s *statsService) GetReferrals(ctx context.Context, userID int64) ([]*models.Referral, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	referrals, err := uow.UserRepository().GetReferrals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrals: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return referrals, nil
}

// GetUserStats returns a profile view with recent games and balance history
func (s *statsService) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
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

	games, err := uow.GameRepository().GetRecentByUser(ctx, userID, recentGamesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent games: %w", err)
	}

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, userID, recentHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.UserStats{
		User:        user,
		RecentGames: games,
		History:     history,
	}, nil
}
