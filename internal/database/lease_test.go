package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseRepo(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, newUserRepo(db.conn).Create(ctx, passwordUser("u1", "jdoe", time.Now())))
	require.NoError(t, newUserRepo(db.conn).Create(ctx, passwordUser("u2", "jane", time.Now())))
	leaseRepo := newLeaseRepo(db.conn)

	t.Run("should grant a free lease", func(t *testing.T) {
		ok, err := leaseRepo.Acquire(ctx, "u1", "server", time.Minute)

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("should refuse a lease held by someone else", func(t *testing.T) {
		ok, err := leaseRepo.Acquire(ctx, "u1", "manual", time.Minute)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should keep users independent", func(t *testing.T) {
		ok, err := leaseRepo.Acquire(ctx, "u2", "manual", time.Minute)

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("should ignore a release by another holder", func(t *testing.T) {
		require.NoError(t, leaseRepo.Release(ctx, "u1", "manual"))

		ok, err := leaseRepo.Acquire(ctx, "u1", "manual", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should grant the lease again after release", func(t *testing.T) {
		require.NoError(t, leaseRepo.Release(ctx, "u1", "server"))

		ok, err := leaseRepo.Acquire(ctx, "u1", "manual", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("should take over an expired lease", func(t *testing.T) {
		ok, err := leaseRepo.Acquire(ctx, "u2", "crashed", -time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "u2 is still held by manual")

		require.NoError(t, leaseRepo.Release(ctx, "u2", "manual"))
		ok, err = leaseRepo.Acquire(ctx, "u2", "crashed", -time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = leaseRepo.Acquire(ctx, "u2", "server", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
