package contract

import (
	"context"
	"time"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	User() UserRepo
	Snapshot() SnapshotRepo
	Notified() NotifiedRepo
	Lease() LeaseRepo
}

// UserRepo defines the contract for user repository
type UserRepo interface {
	Create(ctx context.Context, user *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)
}

// SnapshotRepo stores the last fetched timetable per user, overwrite-only.
type SnapshotRepo interface {
	Get(ctx context.Context, userID string) (entity.Snapshot, error)
	Save(ctx context.Context, userID string, snapshot entity.Snapshot) error
}

// NotifiedRepo is the append-only ledger of delivered cancellations.
type NotifiedRepo interface {
	Exists(ctx context.Context, userID, subject string, occursAt time.Time) (bool, error)
	Record(ctx context.Context, userID, subject string, occursAt time.Time) error
}

// LeaseRepo hands out per-user check leases shared by every process using
// the same database.
type LeaseRepo interface {
	// Acquire takes the lease for userID unless another holder has one that
	// has not expired yet.
	Acquire(ctx context.Context, userID, holder string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, userID, holder string) error
}
