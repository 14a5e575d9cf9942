package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MuhammadaminPy/gifts/models"
)

func setupFreeCaseServiceTest(now time.Time) (FreeCaseService, *MockUnitOfWork, *MockUserRepository, *MockFreeCaseRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFreeCaseRepo := new(MockFreeCaseRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, mockFreeCaseRepo, nil, nil)
	mockFactory.On("Create").Return(mockUoW)

	service := NewFreeCaseService(mockFactory, testConfig()).(*freeCaseService)
	service.now = func() time.Time { return now }

	return service, mockUoW, mockUserRepo, mockFreeCaseRepo
}

func TestFreeCaseService_CanClaim_NeverClaimed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mockUoW, mockUserRepo, mockFreeCaseRepo := setupFreeCaseServiceTest(now)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(&models.User{UserID: 123456}, nil)
	mockFreeCaseRepo.On("GetLastClaim", ctx, int64(123456)).Return(nil, nil)

	eligible, err := service.CanClaim(ctx, 123456)

	assert.NoError(t, err)
	assert.True(t, eligible)
}

func TestFreeCaseService_CanClaim_WithinCooldown(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mockUoW, mockUserRepo, mockFreeCaseRepo := setupFreeCaseServiceTest(now)

	lastClaim := now.Add(-23 * time.Hour)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(&models.User{UserID: 123456}, nil)
	mockFreeCaseRepo.On("GetLastClaim", ctx, int64(123456)).Return(&lastClaim, nil)

	eligible, err := service.CanClaim(ctx, 123456)

	assert.NoError(t, err)
	assert.False(t, eligible)
}

func TestFreeCaseService_CanClaim_CooldownElapsed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mockUoW, mockUserRepo, mockFreeCaseRepo := setupFreeCaseServiceTest(now)

	// Exactly 24h ago counts as eligible again
	lastClaim := now.Add(-24 * time.Hour)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(&models.User{UserID: 123456}, nil)
	mockFreeCaseRepo.On("GetLastClaim", ctx, int64(123456)).Return(&lastClaim, nil)

	eligible, err := service.CanClaim(ctx, 123456)

	assert.NoError(t, err)
	assert.True(t, eligible)
}

func TestFreeCaseService_Claim(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mockUoW, mockUserRepo, mockFreeCaseRepo := setupFreeCaseServiceTest(now)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(&models.User{UserID: 123456}, nil)
	mockFreeCaseRepo.On("ClaimIfEligible", ctx, int64(123456), now, 24*time.Hour).Return(true, nil)

	claimed, err := service.Claim(ctx, 123456)

	assert.NoError(t, err)
	assert.True(t, claimed)
	mockFreeCaseRepo.AssertExpectations(t)
}

func TestFreeCaseService_Claim_Denied(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mockUoW, mockUserRepo, mockFreeCaseRepo := setupFreeCaseServiceTest(now)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(&models.User{UserID: 123456}, nil)
	mockFreeCaseRepo.On("ClaimIfEligible", ctx, int64(123456), now, 24*time.Hour).Return(false, nil)

	claimed, err := service.Claim(ctx, 123456)

	assert.NoError(t, err)
	assert.False(t, claimed)
}

func TestFreeCaseService_Claim_UserNotFound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mockUoW, mockUserRepo, mockFreeCaseRepo := setupFreeCaseServiceTest(now)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	claimed, err := service.Claim(ctx, 404)

	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.False(t, claimed)
	mockFreeCaseRepo.AssertNotCalled(t, "ClaimIfEligible", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
