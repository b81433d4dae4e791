package service

import "github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"

// detectCancellations returns the lessons of fresh whose cancellation was not
// already visible in prior, in the order they appear in fresh.
//
// rollover is true when prior is empty or starts at a different time than
// fresh: the snapshots belong to different reporting windows and nothing is
// reported.
func detectCancellations(prior, fresh entity.Snapshot) (candidates []entity.Lesson, rollover bool) {
	priorStart, ok := prior.WindowStart()
	if !ok {
		return nil, true
	}
	freshStart, ok := fresh.WindowStart()
	if !ok || !priorStart.Equal(freshStart) {
		return nil, true
	}

	// Lessons are matched by start time, never by position. An exact
	// (subject, start) match wins over another lesson at the same start.
	byKey := make(map[entity.LessonKey]entity.Lesson, len(prior))
	byStart := make(map[int64]entity.Lesson, len(prior))
	for _, l := range prior {
		key := l.Key()
		byKey[key] = l
		if _, seen := byStart[key.OccursAt]; !seen {
			byStart[key.OccursAt] = l
		}
	}

	for _, l := range fresh {
		if !l.Cancelled {
			continue
		}
		key := l.Key()
		match, found := byKey[key]
		if !found {
			match, found = byStart[key.OccursAt]
		}
		if found && match.Cancelled {
			continue
		}
		candidates = append(candidates, l)
	}

	return candidates, false
}
