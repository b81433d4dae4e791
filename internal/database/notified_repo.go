package database

import (
	"context"
	"time"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
)

type notifiedRepo struct {
	db dbConn
}

func newNotifiedRepo(db dbConn) contract.NotifiedRepo {
	return &notifiedRepo{db: db}
}

func (r *notifiedRepo) Exists(ctx context.Context, userID, subject string, occursAt time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notified_cancellations
			WHERE subject = ? AND occurs_at = ? AND user_id = ?
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, subject, toUnix(occursAt), userID).Scan(&exists); err != nil {
		return false, storeErr("check notified", err)
	}

	return exists, nil
}

// Record is idempotent: a second call for the same triple leaves one row.
func (r *notifiedRepo) Record(ctx context.Context, userID, subject string, occursAt time.Time) error {
	query := `
		INSERT INTO notified_cancellations (user_id, subject, occurs_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(subject, occurs_at, user_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, userID, subject, toUnix(occursAt), toUnix(time.Now()))
	if err != nil {
		return storeErr("record notified", err)
	}

	return nil
}
