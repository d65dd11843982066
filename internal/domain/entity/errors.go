package entity

import "errors"

// ErrorKind classifies why a hunting cycle did not complete normally
type ErrorKind string

const (
	ErrorKindNone                 ErrorKind = ""
	ErrorKindConfigurationMissing ErrorKind = "configuration_missing"
	ErrorKindNoSearchCriteria     ErrorKind = "no_search_criteria"
	ErrorKindAuthenticationFailed ErrorKind = "authentication_failed"
	ErrorKindPortalUnavailable    ErrorKind = "portal_unavailable"
	ErrorKindBookingConflict      ErrorKind = "booking_conflict"
	ErrorKindPersistenceFailure   ErrorKind = "persistence_failure"
	ErrorKindUnknown              ErrorKind = "unknown"
)

var (
	// ErrConfigurationMissing means the user has no stored credentials or the
	// configuration lacks a required value. Fixable by the user, never retried.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrNoSearchCriteria means get-last-search has not been run for the user
	ErrNoSearchCriteria = errors.New("no search criteria stored, run get-last-search first")

	// ErrAuthenticationFailed means the portal rejected the credentials
	ErrAuthenticationFailed = errors.New("portal authentication failed")

	// ErrPortalUnavailable covers transport errors, timeouts and bad responses
	ErrPortalUnavailable = errors.New("portal unavailable")

	// ErrBookingConflict means the slot was taken between query and booking
	ErrBookingConflict = errors.New("slot no longer available")

	// ErrPersistenceFailure means the database could not be written.
	// The process must stop: running on without durable state risks double bookings.
	ErrPersistenceFailure = errors.New("persistence failure")
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrPersistenceFailure, ErrorKindPersistenceFailure},
	{ErrConfigurationMissing, ErrorKindConfigurationMissing},
	{ErrNoSearchCriteria, ErrorKindNoSearchCriteria},
	{ErrAuthenticationFailed, ErrorKindAuthenticationFailed},
	{ErrPortalUnavailable, ErrorKindPortalUnavailable},
	{ErrBookingConflict, ErrorKindBookingConflict},
}

// KindOf maps a (possibly wrapped) error to its ErrorKind
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ErrorKindUnknown
}
