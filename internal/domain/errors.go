package domain

import (
	"errors"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

var (
	// ErrFetch covers authentication and transport failures against untis.
	ErrFetch = errors.New("timetable fetch failed")

	// ErrStore is a persistence failure.
	ErrStore = errors.New("store failure")

	// ErrDuplicateUser is returned by the store when the untis username is taken.
	ErrDuplicateUser = errors.New("duplicate user")

	// ErrDelivery means at least one message could not be sent this cycle.
	ErrDelivery = errors.New("notification delivery failed")

	// ErrUserBusy means another check for the same user is still in flight.
	ErrUserBusy = errors.New("user check already in progress")

	ErrNoSchoolFound     = errors.New("no school found")
	ErrBadCredentials    = errors.New("bad credentials")
	ErrAlreadyRegistered = errors.New("already registered")

	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidQR         = entity.ErrInvalidQR
)

// RegistrationReason maps a registration error to the reply shown to the user.
func RegistrationReason(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyRegistered):
		return "This untis account is already registered."
	case errors.Is(err, ErrNoSchoolFound):
		return "No school found with that name."
	case errors.Is(err, ErrBadCredentials):
		return "Invalid untis credentials."
	case errors.Is(err, ErrInvalidQR):
		return "That does not look like a untis login QR code."
	case errors.Is(err, ErrInvalidCredential):
		return "Please provide a username, a password and a school name."
	default:
		return "Something went wrong, please try again later."
	}
}
