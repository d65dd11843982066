package bootstrap

import (
	"context"
	"errors"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"
)

// Process exit codes. A completed cycle exits 0 whether or not a slot was
// booked, including when the slot was taken first.
const (
	ExitOK                   = 0
	ExitFailure              = 1
	ExitConfigurationMissing = 2
	ExitNoSearchCriteria     = 3
	ExitAuthenticationFailed = 4
	ExitPortalUnavailable    = 5
	ExitPersistenceFailure   = 6
)

// ExitCode maps the error returned by a command to the process exit code
func ExitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return ExitOK
	}

	switch entity.KindOf(err) {
	case entity.ErrorKindPersistenceFailure:
		return ExitPersistenceFailure
	case entity.ErrorKindConfigurationMissing:
		return ExitConfigurationMissing
	case entity.ErrorKindNoSearchCriteria:
		return ExitNoSearchCriteria
	case entity.ErrorKindAuthenticationFailed:
		return ExitAuthenticationFailed
	case entity.ErrorKindPortalUnavailable:
		return ExitPortalUnavailable
	case entity.ErrorKindBookingConflict:
		return ExitOK
	}
	return ExitFailure
}
