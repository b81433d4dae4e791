package untis

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

const codeCancelled = "cancelled"

// normalizeLessons converts source periods into lessons ordered by start time.
// Periods with an unreadable date or time are dropped.
func normalizeLessons(raw []rawLesson, log *zap.Logger) entity.Snapshot {
	snapshot := make(entity.Snapshot, 0, len(raw))
	for _, r := range raw {
		at, err := parseDateTime(r.Date, r.StartTime)
		if err != nil {
			log.Warn("skipping untis period", zap.Int("id", r.ID), zap.Error(err))
			continue
		}
		snapshot = append(snapshot, entity.Lesson{
			Subject:   subjectName(r.Subjects),
			OccursAt:  at,
			Cancelled: isCancelled(r),
		})
	}

	// getTimetable does not guarantee any order
	sort.SliceStable(snapshot, func(i, j int) bool {
		if !snapshot[i].OccursAt.Equal(snapshot[j].OccursAt) {
			return snapshot[i].OccursAt.Before(snapshot[j].OccursAt)
		}
		return snapshot[i].Subject < snapshot[j].Subject
	})

	return snapshot
}

// isCancelled: either the source flags the period cancelled, or it has no
// teacher assigned. Both mean the lesson will not take place.
func isCancelled(r rawLesson) bool {
	if r.Code == codeCancelled {
		return true
	}
	return len(r.Teachers) > 0 && r.Teachers[0].Name == domain.NoTeacher
}

func subjectName(subjects []rawElement) string {
	if len(subjects) == 0 {
		return domain.MissingSubject
	}
	if subjects[0].LongName != "" {
		return subjects[0].LongName
	}
	if subjects[0].Name != "" {
		return subjects[0].Name
	}
	return domain.MissingSubject
}

// parseDateTime combines a YYYYMMDD date and an HHMM time into a UTC instant.
// The school's wall-clock time is kept as-is.
func parseDateTime(date, hhmm int) (time.Time, error) {
	year, month, day := date/10000, date/100%100, date%100
	hour, minute := hhmm/100, hhmm%100

	if date < 10000101 || date > 99991231 || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid untis date %d", date)
	}
	if hhmm < 0 || hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid untis time %d", hhmm)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid untis date %d", date)
	}
	return t, nil
}

func untisDate(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
