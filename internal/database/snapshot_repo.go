package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

type snapshotRepo struct {
	db dbConn
}

func newSnapshotRepo(db dbConn) contract.SnapshotRepo {
	return &snapshotRepo{db: db}
}

// Get returns the last committed snapshot, or an empty one on first check.
func (r *snapshotRepo) Get(ctx context.Context, userID string) (entity.Snapshot, error) {
	query := `SELECT lessons FROM snapshots WHERE user_id = ?`

	var lessonsJSON string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&lessonsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Snapshot{}, nil
	}
	if err != nil {
		return nil, storeErr("get snapshot", err)
	}

	var snapshot entity.Snapshot
	if err := json.Unmarshal([]byte(lessonsJSON), &snapshot); err != nil {
		return nil, storeErr("unmarshal snapshot", err)
	}

	return snapshot, nil
}

// Save replaces the stored snapshot for the user.
func (r *snapshotRepo) Save(ctx context.Context, userID string, snapshot entity.Snapshot) error {
	if snapshot == nil {
		snapshot = entity.Snapshot{}
	}

	lessonsJSON, err := json.Marshal(snapshot)
	if err != nil {
		return storeErr("marshal snapshot", err)
	}

	query := `
		INSERT INTO snapshots (user_id, window_start, lessons, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			window_start = excluded.window_start,
			lessons      = excluded.lessons,
			updated_at   = excluded.updated_at
	`

	start, ok := snapshot.WindowStart()
	_, err = r.db.ExecContext(ctx, query,
		userID,
		toNullInt64(start, ok),
		string(lessonsJSON),
		toUnix(time.Now()),
	)
	if err != nil {
		return storeErr("save snapshot", err)
	}

	return nil
}
