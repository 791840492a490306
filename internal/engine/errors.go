package engine

import (
	"errors"
	"fmt"
)

// ErrNoProgress is reported by the watchdog when decisions stop advancing time.
var ErrNoProgress = errors.New("no simulated time progress")

// AbortError describes why an iteration was discarded.
type AbortError struct {
	Actor  string
	Source string
	Err    error
}

func (e *AbortError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Actor, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Actor, e.Source, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// Abort wraps err with the actor and action or list that raised it.
func Abort(actor, source string, err error) error {
	var ae *AbortError
	if errors.As(err, &ae) {
		return err
	}
	return &AbortError{Actor: actor, Source: source, Err: err}
}

// Reason returns a short key suitable for tallying aborts.
func Reason(err error) string {
	var ae *AbortError
	if errors.As(err, &ae) {
		if inner := errors.Unwrap(ae.Err); inner != nil {
			return inner.Error()
		}
		return ae.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
