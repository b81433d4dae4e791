package contract

import (
	"context"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

// CycleResult summarizes one pass over all registered users.
type CycleResult struct {
	Users    int
	Notified int
	Failed   int
}

type CancellationService interface {
	RunCycle(ctx context.Context) (CycleResult, error)
	CheckUser(ctx context.Context, user *entity.User) ([]entity.Lesson, error)
}

type RegistrationService interface {
	Register(ctx context.Context, reg entity.Registration) (*entity.User, error)
}

// Notifier delivers a text message to a single messaging-platform user.
type Notifier interface {
	SendDirectMessage(ctx context.Context, recipientID, text string) error
}
