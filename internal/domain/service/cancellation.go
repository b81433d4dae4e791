package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

const releaseTimeout = 5 * time.Second

type cancellationService struct {
	dm           contract.DataManager
	provider     contract.TimetableProvider
	notifier     contract.Notifier
	log          *zap.Logger
	workers      int
	fetchTimeout time.Duration
	leaseTTL     time.Duration
	holder       string
	locks        *userLocks
}

func newCancellation(dm contract.DataManager, provider contract.TimetableProvider, notifier contract.Notifier, log *zap.Logger, opts Options) *cancellationService {
	if opts.Workers < 1 {
		opts.Workers = domain.DefaultCycleWorkers
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = domain.DefaultFetchTimeout
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = domain.DefaultLeaseTTL
	}

	return &cancellationService{
		dm:           dm,
		provider:     provider,
		notifier:     notifier,
		log:          log,
		workers:      opts.Workers,
		fetchTimeout: opts.FetchTimeout,
		leaseTTL:     opts.LeaseTTL,
		holder:       uuid.NewString(),
		locks:        newUserLocks(),
	}
}

// RunCycle checks every registered user once. A failing user is logged and
// skipped; the error return is reserved for failing to list users.
func (s *cancellationService) RunCycle(ctx context.Context) (contract.CycleResult, error) {
	start := time.Now()
	var result contract.CycleResult

	users, err := s.dm.User().GetAll(ctx)
	if err != nil {
		s.log.Error("list users failed", zap.Error(err))
		return result, fmt.Errorf("failed to list users: %w", err)
	}
	result.Users = len(users)

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(s.workers)

	for _, user := range users {
		g.Go(func() error {
			lessons, err := s.CheckUser(ctx, user)

			mu.Lock()
			defer mu.Unlock()
			result.Notified += len(lessons)
			if err != nil {
				result.Failed++
				s.logUserFailure(user, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("cycle finished",
		zap.Int("users", result.Users),
		zap.Int("notified", result.Notified),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
	)

	return result, nil
}

func (s *cancellationService) logUserFailure(user *entity.User, err error) {
	fields := []zap.Field{zap.String("user_id", user.ID), zap.Error(err)}
	switch {
	case errors.Is(err, domain.ErrUserBusy):
		s.log.Warn("user check skipped", fields...)
	case errors.Is(err, domain.ErrFetch):
		s.log.Error("timetable fetch failed", fields...)
	case errors.Is(err, domain.ErrStore):
		s.log.Error("store failure during user check", fields...)
	default:
		s.log.Error("user check failed", fields...)
	}
}

func (s *cancellationService) releaseLease(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.dm.Lease().Release(ctx, userID, s.holder); err != nil {
		s.log.Warn("release lease failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// CheckUser fetches the user's timetable, sends a message for each newly
// cancelled lesson and commits the fetched snapshot. It returns the lessons
// that were delivered.
//
// A user is checked by one goroutine of this process (userLocks) and by one
// process sharing the database (lease) at a time.
//
// Order per lesson is send, then record in the ledger. The snapshot is only
// committed once every candidate was delivered, so a failed send is picked up
// again by the next cycle.
func (s *cancellationService) CheckUser(ctx context.Context, user *entity.User) ([]entity.Lesson, error) {
	unlock, ok := s.locks.tryLock(user.ID)
	if !ok {
		return nil, domain.ErrUserBusy
	}
	defer unlock()

	leased, err := s.dm.Lease().Acquire(ctx, user.ID, s.holder, s.leaseTTL)
	if err != nil {
		return nil, err
	}
	if !leased {
		return nil, domain.ErrUserBusy
	}
	defer s.releaseLease(ctx, user.ID)

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	fresh, err := s.provider.Fetch(fetchCtx, user)
	cancel()
	if err != nil {
		return nil, err
	}

	prior, err := s.dm.Snapshot().Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	candidates, rollover := detectCancellations(prior, fresh)
	if rollover {
		s.log.Debug("new reporting window, storing baseline",
			zap.String("user_id", user.ID),
			zap.Int("lessons", len(fresh)),
		)
		return nil, s.dm.Snapshot().Save(ctx, user.ID, fresh)
	}

	var (
		delivered   []entity.Lesson
		undelivered int
	)
	for _, lesson := range candidates {
		notified, err := s.dm.Notified().Exists(ctx, user.ID, lesson.Subject, lesson.OccursAt)
		if err != nil {
			return delivered, err
		}
		if notified {
			continue
		}

		if err := s.notifier.SendDirectMessage(ctx, user.SlackUserID, domain.CancellationMessage(lesson)); err != nil {
			s.log.Error("send cancellation failed",
				zap.String("user_id", user.ID),
				zap.String("subject", lesson.Subject),
				zap.Time("occurs_at", lesson.OccursAt),
				zap.Error(err),
			)
			undelivered++
			continue
		}

		// a failure here after a successful send may duplicate the message next cycle
		if err := s.dm.Notified().Record(ctx, user.ID, lesson.Subject, lesson.OccursAt); err != nil {
			return delivered, err
		}
		delivered = append(delivered, lesson)
	}

	if undelivered > 0 {
		return delivered, fmt.Errorf("%w: %d of %d cancellations", domain.ErrDelivery, undelivered, len(candidates))
	}

	if err := s.dm.Snapshot().Save(ctx, user.ID, fresh); err != nil {
		return delivered, err
	}

	if len(delivered) > 0 {
		s.log.Info("cancellations delivered",
			zap.String("user_id", user.ID),
			zap.Int("count", len(delivered)),
		)
	}

	return delivered, nil
}
