package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MuhammadaminPy/gifts/events"
	"github.com/MuhammadaminPy/gifts/models"
)

func setupUserServiceTest() (UserService, *MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockEventPublisher) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, mockPublisher)
	mockFactory.On("Create").Return(mockUoW)

	service := NewUserService(mockFactory, testConfig())
	return service, mockFactory, mockUoW, mockUserRepo, mockPublisher
}

func TestUserService_Register_NewUser(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockUserRepo, mockPublisher := setupUserServiceTest()

	newUser := &models.User{
		UserID:    123456,
		Username:  "newuser",
		FirstName: "New",
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("CreateIfAbsent", ctx, int64(123456), "newuser", "New", (*int64)(nil), 10).Return(true, nil)
	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(newUser, nil)

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		ev, ok := e.(events.UserRegisteredEvent)
		return ok && ev.UserID == 123456 && ev.Username == "newuser" && ev.ReferredBy == nil
	})).Return()

	user, err := service.Register(ctx, 123456, "newuser", "New", nil)

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, int64(123456), user.UserID)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestUserService_Register_ExistingUser(t *testing.T) {
	ctx := context.Background()
	service, _, mockUoW, mockUserRepo, mockPublisher := setupUserServiceTest()

	existingUser := &models.User{
		UserID:   123456,
		Username: "testuser",
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// Second registration is a no-op and emits nothing
	mockUserRepo.On("CreateIfAbsent", ctx, int64(123456), "testuser", "Test", (*int64)(nil), 10).Return(false, nil)
	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(existingUser, nil)

	user, err := service.Register(ctx, 123456, "testuser", "Test", nil)

	assert.NoError(t, err)
	assert.Equal(t, existingUser, user)

	mockUserRepo.AssertExpectations(t)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestUserService_Register_SelfReferral(t *testing.T) {
	ctx := context.Background()
	service, _, _, mockUserRepo, _ := setupUserServiceTest()

	self := int64(123456)
	user, err := service.Register(ctx, 123456, "testuser", "Test", &self)

	assert.ErrorIs(t, err, models.ErrSelfReferral)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_Register_UnknownReferrerDropped(t *testing.T) {
	ctx := context.Background()
	service, _, mockUoW, mockUserRepo, mockPublisher := setupUserServiceTest()

	referrerID := int64(999)
	newUser := &models.User{
		UserID:   123456,
		Username: "newuser",
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// The referrer lookup misses, so the link is dropped
	mockUserRepo.On("GetByID", ctx, int64(999)).Return(nil, nil)
	mockUserRepo.On("CreateIfAbsent", ctx, int64(123456), "newuser", "New", (*int64)(nil), 10).Return(true, nil)
	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(newUser, nil)

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		ev, ok := e.(events.UserRegisteredEvent)
		return ok && ev.ReferredBy == nil
	})).Return()

	user, err := service.Register(ctx, 123456, "newuser", "New", &referrerID)

	assert.NoError(t, err)
	assert.Nil(t, user.ReferredBy)

	mockUserRepo.AssertExpectations(t)
}

func TestUserService_Register_UsesConfiguredRefPercent(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, mockPublisher)
	mockFactory.On("Create").Return(mockUoW)

	cfg := testConfig()
	cfg.DefaultRefPercent = 25
	service := NewUserService(mockFactory, cfg)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// The commission rate on the new row comes from configuration
	mockUserRepo.On("CreateIfAbsent", ctx, int64(123456), "newuser", "New", (*int64)(nil), 25).Return(true, nil)
	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(&models.User{UserID: 123456}, nil)
	mockPublisher.On("Publish", mock.AnythingOfType("events.UserRegisteredEvent")).Return()

	_, err := service.Register(ctx, 123456, "newuser", "New", nil)

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	ctx := context.Background()
	service, _, mockUoW, mockUserRepo, _ := setupUserServiceTest()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	user, err := service.GetUser(ctx, 404)

	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestUserService_GetBalance(t *testing.T) {
	ctx := context.Background()
	service, _, mockUoW, mockUserRepo, _ := setupUserServiceTest()

	existingUser := &models.User{
		UserID:     123456,
		Balance:    dec("150.50"),
		RefBalance: dec("4.25"),
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(123456)).Return(existingUser, nil)

	snapshot, err := service.GetBalance(ctx, 123456)

	assert.NoError(t, err)
	assert.True(t, snapshot.Balance.Equal(dec("150.50")))
	assert.True(t, snapshot.RefBalance.Equal(dec("4.25")))
	mockUserRepo.AssertExpectations(t)
}
