package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
)

// Options tunes the cancellation cycle.
type Options struct {
	Workers      int
	FetchTimeout time.Duration
	// LeaseTTL is how long a per-user check lease stays valid.
	LeaseTTL time.Duration
}

type Instance struct {
	Cancellation *cancellationService
	Registration *registrationService
}

func NewInstance(
	dm contract.DataManager,
	provider contract.TimetableProvider,
	resolver contract.SchoolResolver,
	slackClient contract.SlackClient,
	log *zap.Logger,
	opts Options,
) *Instance {
	notifier := newSlackNotifier(slackClient)

	return &Instance{
		Cancellation: newCancellation(dm, provider, notifier, log, opts),
		Registration: newRegistration(dm, provider, resolver, log),
	}
}
