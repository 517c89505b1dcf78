// Package exitcode maps command errors to process exit codes.
package exitcode

import "errors"

const (
	OK = 0
	// GateFailed means the run completed but a quality threshold was missed.
	GateFailed = 1
	// Fatal covers usage errors and failures that stopped the run.
	Fatal = 2
)

// Error carries the exit code a command wants for err.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches code to err. A nil err stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// From returns OK for nil, the attached code when err carries one, and
// Fatal otherwise.
func From(err error) int {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Fatal
}
