package entity

import "time"

// NotifiedCancellation marks a cancellation already delivered to a user.
// At most one exists per (Subject, OccursAt, UserID).
type NotifiedCancellation struct {
	ID        int64
	UserID    string
	Subject   string
	OccursAt  time.Time
	CreatedAt time.Time
}
