package entity

import "time"

// User is a registered account. Credentials are fixed at registration.
type User struct {
	ID          string
	Credential  Credential
	SchoolName  string // untis internal login name of the school
	Server      string // untis host, e.g. "korfu.webuntis.com"
	SlackUserID string
	CreatedAt   time.Time
}

// Username returns the untis username carried by the user's credential.
func (u *User) Username() string {
	if u.Credential == nil {
		return ""
	}
	return u.Credential.Username()
}
