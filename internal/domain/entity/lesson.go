package entity

import "time"

// Lesson is one scheduled class instance in a user's timetable.
type Lesson struct {
	Subject   string    `json:"subject"`
	OccursAt  time.Time `json:"occurs_at"`
	Cancelled bool      `json:"cancelled"`
}

// LessonKey identifies a lesson across fetches. The source offers no stable
// lesson id, so identity is derived from content.
type LessonKey struct {
	Subject  string
	OccursAt int64 // unix seconds, UTC
}

func (l Lesson) Key() LessonKey {
	return LessonKey{Subject: l.Subject, OccursAt: l.OccursAt.UTC().Unix()}
}

// Snapshot is the ordered list of lessons for one reporting window, as
// returned by the source.
type Snapshot []Lesson

// WindowStart returns the start of the first lesson, used to tell whether two
// snapshots belong to the same reporting window.
func (s Snapshot) WindowStart() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	return s[0].OccursAt.UTC(), true
}
