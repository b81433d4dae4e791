package contract

import (
	"context"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

// TimetableProvider reads a user's timetable for the current week.
type TimetableProvider interface {
	// Fetch fails with domain.ErrFetch on authentication or transport errors.
	Fetch(ctx context.Context, user *entity.User) (entity.Snapshot, error)
	// CheckCredentials reports whether a login/logout round trip succeeds.
	CheckCredentials(ctx context.Context, user *entity.User) bool
}

type SchoolResolver interface {
	// ResolveSchool fails with domain.ErrNoSchoolFound when nothing matches.
	ResolveSchool(ctx context.Context, name string) (*entity.School, error)
}
