package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredentials means there is no session to refresh; the user has to log in again.
	ErrNoCredentials = errors.New("no session credentials")
	// ErrSessionNotFound is returned by credential stores when nothing is persisted.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyToken rejects seeding a pair with a blank token.
	ErrEmptyToken = errors.New("access and refresh tokens must not be empty")

	ErrMissingFields  = errors.New("signed fields missing")
	ErrHotelNotFound  = errors.New("hotel payment credentials not found")
	ErrSecretMissing  = errors.New("hotel payment secret key missing")
	ErrInvalidHotelID = errors.New("invalid hotel id")
	ErrInvalidOrder   = errors.New("invalid checkout order")

	ErrPromotionNotApplicable = errors.New("promotion not applicable")

	// ErrUnauthorized rejects a session-management call without a valid operator token.
	ErrUnauthorized = errors.New("operator token missing or invalid")
)

// RefreshFailedError is returned when the refresh endpoint rejects the exchange.
// The session should be treated as invalid.
type RefreshFailedError struct {
	Status int
}

func (e *RefreshFailedError) Error() string {
	return fmt.Sprintf("token refresh rejected with status %d", e.Status)
}

func IsRefreshFailed(err error) bool {
	var target *RefreshFailedError
	return errors.As(err, &target)
}
