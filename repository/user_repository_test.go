package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadaminPy/gifts/models"
	"github.com/MuhammadaminPy/gifts/repository/testutil"
)

func TestUserRepository_CreateIfAbsent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("first registration inserts", func(t *testing.T) {
		created, err := repo.CreateIfAbsent(ctx, 100, "alice", "Alice", nil, 10)
		require.NoError(t, err)
		assert.True(t, created)

		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
		assert.True(t, user.Balance.IsZero())
		assert.Equal(t, 10, user.RefPercent)
		assert.Nil(t, user.ReferredBy)
	})

	t.Run("repeat registration is a no-op", func(t *testing.T) {
		referrer := int64(100)
		created, err := repo.CreateIfAbsent(ctx, 100, "alice2", "Alice2", &referrer, 10)
		require.NoError(t, err)
		assert.False(t, created)

		// Nothing changed, including the referral link
		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Nil(t, user.ReferredBy)
	})

	t.Run("registration with referrer", func(t *testing.T) {
		referrer := int64(100)
		created, err := repo.CreateIfAbsent(ctx, 200, "bob", "Bob", &referrer, 10)
		require.NoError(t, err)
		assert.True(t, created)

		user, err := repo.GetByID(ctx, 200)
		require.NoError(t, err)
		require.NotNil(t, user.ReferredBy)
		assert.Equal(t, int64(100), *user.ReferredBy)
	})

	t.Run("registration stores the commission rate", func(t *testing.T) {
		created, err := repo.CreateIfAbsent(ctx, 300, "carol", "Carol", nil, 25)
		require.NoError(t, err)
		assert.True(t, created)

		user, err := repo.GetByID(ctx, 300)
		require.NoError(t, err)
		assert.Equal(t, 25, user.RefPercent)
	})
}

func TestUserRepository_GetByID_Missing(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, err := repo.GetByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_BalanceMutations(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.CreateIfAbsent(ctx, 100, "alice", "Alice", nil, 10)
	require.NoError(t, err)

	t.Run("add balance", func(t *testing.T) {
		err := repo.AddBalance(ctx, 100, testutil.Dec("50.25"))
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		assert.True(t, user.Balance.Equal(testutil.Dec("50.25")))
	})

	t.Run("deduct within balance", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 100, testutil.Dec("20"))
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		assert.True(t, user.Balance.Equal(testutil.Dec("30.25")))
	})

	t.Run("deduct more than balance", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 100, testutil.Dec("1000"))
		assert.ErrorIs(t, err, models.ErrInsufficientBalance)

		// Balance untouched
		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		assert.True(t, user.Balance.Equal(testutil.Dec("30.25")))
	})

	t.Run("deduct from missing user", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 999999, testutil.Dec("1"))
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("add to missing user", func(t *testing.T) {
		err := repo.AddBalance(ctx, 999999, testutil.Dec("1"))
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("deposit totals move together", func(t *testing.T) {
		err := repo.AddDepositTotals(ctx, 100, testutil.Dec("100"))
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		assert.True(t, user.Balance.Equal(testutil.Dec("130.25")))
		assert.True(t, user.TotalDeposits.Equal(testutil.Dec("100")))
	})
}

func TestUserRepository_ConcurrentDebits(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.CreateIfAbsent(ctx, 100, "alice", "Alice", nil, 10)
	require.NoError(t, err)
	require.NoError(t, repo.AddBalance(ctx, 100, testutil.Dec("50")))

	// 20 workers race to take 10 each out of 50. The WHERE-clause guard
	// must let exactly 5 through, whatever the interleaving.
	const workers = 20
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.DeductBalance(ctx, 100, testutil.Dec("10"))
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 5, succeeded)

	user, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.True(t, user.Balance.IsZero())
}

func TestUserRepository_TransferRefBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.CreateIfAbsent(ctx, 100, "alice", "Alice", nil, 10)
	require.NoError(t, err)

	minimum := testutil.Dec("3")

	t.Run("below minimum", func(t *testing.T) {
		err := repo.CreditRefBalance(ctx, 100, testutil.Dec("2.99"))
		require.NoError(t, err)

		moved, newBalance, err := repo.TransferRefBalance(ctx, 100, minimum)
		assert.ErrorIs(t, err, models.ErrBelowThreshold)
		assert.True(t, moved.IsZero())
		assert.True(t, newBalance.IsZero())

		// Ref balance stays where it was
		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		assert.True(t, user.RefBalance.Equal(testutil.Dec("2.99")))
	})

	t.Run("at minimum sweeps everything", func(t *testing.T) {
		err := repo.CreditRefBalance(ctx, 100, testutil.Dec("0.01"))
		require.NoError(t, err)

		moved, newBalance, err := repo.TransferRefBalance(ctx, 100, minimum)
		require.NoError(t, err)
		assert.True(t, moved.Equal(testutil.Dec("3")))
		assert.True(t, newBalance.Equal(testutil.Dec("3")))

		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		assert.True(t, user.RefBalance.IsZero())
		assert.True(t, user.Balance.Equal(testutil.Dec("3")))
	})

	t.Run("missing user", func(t *testing.T) {
		_, _, err := repo.TransferRefBalance(ctx, 999999, minimum)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestUserRepository_Referrals(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	referrer := int64(100)
	_, err := repo.CreateIfAbsent(ctx, 100, "alice", "Alice", nil, 10)
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, 200, "bob", "Bob", &referrer, 10)
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, 300, "carol", "Carol", &referrer, 10)
	require.NoError(t, err)

	referrals, err := repo.GetReferrals(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, referrals, 2)

	referrals, err = repo.GetReferrals(ctx, 200)
	require.NoError(t, err)
	assert.Empty(t, referrals)
}

func TestUserRepository_Leaderboard(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	for id, amount := range map[int64]string{100: "50", 200: "300", 300: "10"} {
		_, err := repo.CreateIfAbsent(ctx, id, "user", "User", nil, 10)
		require.NoError(t, err)
		require.NoError(t, repo.AddDepositTotals(ctx, id, testutil.Dec(amount)))
	}

	entries, err := repo.GetLeaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(200), entries[0].UserID)
	assert.True(t, entries[0].TotalDeposits.Equal(testutil.Dec("300")))
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, int64(100), entries[1].UserID)
}

func TestUserRepository_GetAdminCounts(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.CreateIfAbsent(ctx, 100, "alice", "Alice", nil, 10)
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, 200, "bob", "Bob", nil, 10)
	require.NoError(t, err)

	now := time.Now()
	total, online, fresh, err := repo.GetAdminCounts(ctx, now.Add(-5*time.Minute), now.Add(-24*time.Hour))
	require.NoError(t, err)

	// Both users were just created, so they count as online and new
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(2), online)
	assert.Equal(t, int64(2), fresh)

	// A window in the future excludes everyone
	total, online, fresh, err = repo.GetAdminCounts(ctx, now.Add(time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(0), online)
	assert.Equal(t, int64(0), fresh)
}
