package domain

import "time"

// NoTeacher is the teacher name untis assigns to a withdrawn lesson.
const NoTeacher = "---"

// MissingSubject is used when the source lesson carries no subject name.
const MissingSubject = "missingno"

// Default cycle policy: every five minutes on weekday mornings.
const (
	DefaultCycleSchedule = "*/5 6-16 * * 1-5"
	DefaultCycleWorkers  = 4
	DefaultFetchTimeout  = 20 * time.Second

	// DefaultLeaseTTL bounds how long a crashed process can block a user.
	DefaultLeaseTTL = 5 * time.Minute
)

// ISO 8601 weekday numbers used by the reporting window.
const (
	Monday = 1
	Sunday = 7
)

// ISOWeekday returns t's weekday with Monday=1 and Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 { // Sunday = 0 in Go, but we want 7 for ISO 8601
		wd = Sunday
	}
	return wd
}

// WeekBounds returns Monday 00:00 and Sunday 00:00 of the ISO week containing t,
// in t's location.
func WeekBounds(t time.Time) (start, end time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start = day.AddDate(0, 0, Monday-ISOWeekday(t))
	end = start.AddDate(0, 0, Sunday-Monday)
	return start, end
}
