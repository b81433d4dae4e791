package database

import (
	"context"
	"time"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
)

type leaseRepo struct {
	db dbConn
}

func newLeaseRepo(db dbConn) contract.LeaseRepo {
	return &leaseRepo{db: db}
}

// Acquire inserts the lease or takes over an expired one in a single
// statement; zero affected rows means someone else holds it.
func (r *leaseRepo) Acquire(ctx context.Context, userID, holder string, ttl time.Duration) (bool, error) {
	now := time.Now()
	query := `
		INSERT INTO cycle_leases (user_id, holder, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			holder     = excluded.holder,
			expires_at = excluded.expires_at
		WHERE cycle_leases.expires_at < ? OR cycle_leases.holder = excluded.holder
	`

	res, err := r.db.ExecContext(ctx, query, userID, holder, now.Add(ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return false, storeErr("acquire lease", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("acquire lease", err)
	}

	return n > 0, nil
}

func (r *leaseRepo) Release(ctx context.Context, userID, holder string) error {
	query := `DELETE FROM cycle_leases WHERE user_id = ? AND holder = ?`

	if _, err := r.db.ExecContext(ctx, query, userID, holder); err != nil {
		return storeErr("release lease", err)
	}

	return nil
}
