package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

func TestSnapshotRepo(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, newUserRepo(db.conn).Create(ctx, passwordUser("u1", "jdoe", time.Now())))
	snapshotRepo := newSnapshotRepo(db.conn)

	monday := time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)

	t.Run("should return empty snapshot before the first commit", func(t *testing.T) {
		snapshot, err := snapshotRepo.Get(ctx, "u1")

		require.NoError(t, err)
		assert.Empty(t, snapshot)
		assert.NotNil(t, snapshot)
	})

	t.Run("should store and load a snapshot", func(t *testing.T) {
		want := entity.Snapshot{
			{Subject: "Math", OccursAt: monday, Cancelled: false},
			{Subject: "Art", OccursAt: monday.Add(2 * time.Hour), Cancelled: true},
		}

		require.NoError(t, snapshotRepo.Save(ctx, "u1", want))

		got, err := snapshotRepo.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, want, got)

		var windowStart int64
		require.NoError(t, db.conn.QueryRow(`SELECT window_start FROM snapshots WHERE user_id = 'u1'`).Scan(&windowStart))
		assert.Equal(t, monday.Unix(), windowStart)
	})

	t.Run("should overwrite instead of merging", func(t *testing.T) {
		want := entity.Snapshot{
			{Subject: "Music", OccursAt: monday.AddDate(0, 0, 7), Cancelled: false},
		}

		require.NoError(t, snapshotRepo.Save(ctx, "u1", want))

		got, err := snapshotRepo.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, want, got)

		var count int
		require.NoError(t, db.conn.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("should store an empty snapshot", func(t *testing.T) {
		require.NoError(t, snapshotRepo.Save(ctx, "u1", nil))

		got, err := snapshotRepo.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("should fail for an unknown user", func(t *testing.T) {
		err := snapshotRepo.Save(ctx, "missing", entity.Snapshot{})
		require.Error(t, err)
	})
}
