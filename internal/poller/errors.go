package poller

import (
	"context"
	"errors"

	"github.com/zsiec/livedash/internal/display"
	"github.com/zsiec/livedash/internal/metrics"
)

var (
	// ErrFetch covers network failures and non-2xx responses.
	ErrFetch = errors.New("fetch status snapshot")
	// ErrBadStatus is wrapped alongside ErrFetch for non-2xx responses.
	ErrBadStatus = errors.New("unexpected HTTP status")
	// ErrMalformed means the body was not a JSON object.
	ErrMalformed = errors.New("malformed status snapshot")
	// ErrMissingField means a bound field is absent from the snapshot.
	ErrMissingField = errors.New("missing snapshot field")

	ErrAlreadyRunning = errors.New("poller already running")
)

// outcome classifies a cycle error for metrics and logs.
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	case errors.Is(err, ErrMalformed):
		return metrics.OutcomeMalformed
	case errors.Is(err, ErrMissingField):
		return metrics.OutcomeMissingField
	case errors.Is(err, display.ErrUnknownSlot):
		return metrics.OutcomeUnknownSlot
	default:
		return metrics.OutcomeFetchError
	}
}
