package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
)

// Scheduler triggers a cancellation cycle on a cron schedule. A trigger that
// fires while the previous cycle is still running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	service contract.CancellationService
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(service contract.CancellationService, spec string, loc *time.Location, log *zap.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	cronLog := cronLogger{log: log.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		service: service,
		log:     log,
		ctx:     context.Background(),
	}

	if _, err := s.cron.AddFunc(spec, s.runCycle); err != nil {
		return nil, fmt.Errorf("invalid cycle schedule %q: %w", spec, err)
	}

	return s, nil
}

// Start runs the schedule in the background until Stop is called or ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()

	entries := s.cron.Entries()
	if len(entries) > 0 {
		s.log.Info("scheduler started", zap.Time("next_cycle", entries[0].Next))
	}
}

// Stop cancels a running cycle and waits for it to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runCycle() {
	if _, err := s.service.RunCycle(s.ctx); err != nil {
		s.log.Error("cycle failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
