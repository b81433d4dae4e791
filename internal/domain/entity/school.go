package entity

// School is the result of a untis school search.
type School struct {
	LoginName string // internal school name used for login
	Server    string // untis host serving the school
}
