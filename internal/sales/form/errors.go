package form

import "errors"

var (
	// ErrInvalid means validation failed; see Controller.Errors.
	ErrInvalid = errors.New("form: validation failed")
	// ErrNetwork wraps a failed create or update call.
	ErrNetwork = errors.New("form: request failed")
	// ErrSubmitInFlight rejects work while a submission is pending.
	ErrSubmitInFlight = errors.New("form: submission in flight")
	// ErrNavigated rejects work after the form has been left.
	ErrNavigated = errors.New("form: already navigated")
	// ErrUnknownField rejects a change to a field the form does not have.
	ErrUnknownField = errors.New("form: unknown field")
)

// ErrorKind classifies a submit failure for display.
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindNetwork    ErrorKind = "network"
)

// KindOf classifies err as returned by Submit.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrInvalid):
		return ErrorKindValidation
	case errors.Is(err, ErrNetwork):
		return ErrorKindNetwork
	}
	return ErrorKindNone
}
