package database

import (
	"context"
	"fmt"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
)

// instance implements DataManager interface
type instance struct {
	db           *DB
	userRepo     contract.UserRepo
	snapshotRepo contract.SnapshotRepo
	notifiedRepo contract.NotifiedRepo
	leaseRepo    contract.LeaseRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	i := repoInstancesWithConn(db.conn)
	i.db = db
	return i
}

// repoInstancesWithConn creates repository instances with custom dbConn
func repoInstancesWithConn(db dbConn) *instance {
	return &instance{
		userRepo:     newUserRepo(db),
		snapshotRepo: newSnapshotRepo(db),
		notifiedRepo: newNotifiedRepo(db),
		leaseRepo:    newLeaseRepo(db),
	}
}

func (i *instance) User() contract.UserRepo {
	return i.userRepo
}

func (i *instance) Snapshot() contract.SnapshotRepo {
	return i.snapshotRepo
}

func (i *instance) Notified() contract.NotifiedRepo {
	return i.notifiedRepo
}

func (i *instance) Lease() contract.LeaseRepo {
	return i.leaseRepo
}

// WithTransaction executes a function within a database transaction.
// Nested calls reuse the outer transaction.
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	if i.db == nil {
		return fn(i)
	}

	tx, err := i.db.BeginTx(ctx)
	if err != nil {
		return storeErr("begin transaction", err)
	}

	txInstance := repoInstancesWithConn(tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}
