package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadaminPy/gifts/repository/testutil"
)

func TestFreeCaseRepository_ClaimIfEligible(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewFreeCaseRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.CreateIfAbsent(ctx, 100, "alice", "Alice", nil, 10)
	require.NoError(t, err)

	cooldown := 24 * time.Hour
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no prior claim", func(t *testing.T) {
		last, err := repo.GetLastClaim(ctx, 100)
		require.NoError(t, err)
		assert.Nil(t, last)

		claimed, err := repo.ClaimIfEligible(ctx, 100, base, cooldown)
		require.NoError(t, err)
		assert.True(t, claimed)

		last, err = repo.GetLastClaim(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.True(t, last.Equal(base))
	})

	t.Run("claim within cooldown is denied", func(t *testing.T) {
		claimed, err := repo.ClaimIfEligible(ctx, 100, base.Add(time.Hour), cooldown)
		require.NoError(t, err)
		assert.False(t, claimed)

		// Timestamp untouched
		last, err := repo.GetLastClaim(ctx, 100)
		require.NoError(t, err)
		assert.True(t, last.Equal(base))
	})

	t.Run("claim after cooldown advances", func(t *testing.T) {
		next := base.Add(cooldown)
		claimed, err := repo.ClaimIfEligible(ctx, 100, next, cooldown)
		require.NoError(t, err)
		assert.True(t, claimed)

		last, err := repo.GetLastClaim(ctx, 100)
		require.NoError(t, err)
		assert.True(t, last.Equal(next))
	})
}

func TestFreeCaseRepository_ConcurrentClaims(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewFreeCaseRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.CreateIfAbsent(ctx, 100, "alice", "Alice", nil, 10)
	require.NoError(t, err)

	cooldown := 24 * time.Hour
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// All workers attempt the same claim at once; the conditional upsert
	// must grant exactly one of them.
	const workers = 10
	results := make(chan bool, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := repo.ClaimIfEligible(ctx, 100, now, cooldown)
			assert.NoError(t, err)
			results <- claimed
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for claimed := range results {
		if claimed {
			granted++
		}
	}
	assert.Equal(t, 1, granted)

	last, err := repo.GetLastClaim(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(now))
}
