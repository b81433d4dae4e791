package domain

import (
	"fmt"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

// CancellationMessage is the direct message sent for a newly cancelled lesson.
// Lesson times are school wall-clock times stored as UTC, so they are
// formatted without conversion.
func CancellationMessage(l entity.Lesson) string {
	at := l.OccursAt.UTC()
	return fmt.Sprintf(":no_entry: *%s* on %s at %s is cancelled.",
		l.Subject, at.Format("Mon 02.01."), at.Format("15:04"))
}
