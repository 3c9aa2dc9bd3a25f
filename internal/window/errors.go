package window

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveWindow is returned when the display server reports no focused window
	ErrNoActiveWindow = errors.New("no active window")

	// ErrUnsupportedCompositor is returned by NewBackend for compositors without a backend
	ErrUnsupportedCompositor = errors.New("unsupported compositor")
)

// QueryError reports a failed list or active-window query. Callers treat it as
// "no change this cycle".
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("window query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ActivationError reports a rejected activate command, usually a stale id
type ActivationError struct {
	ID  ID
	Err error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activate window %d: %v", e.ID, e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }

// LayoutError reports windows that could not be moved or resized. Err joins
// the per-window failures.
type LayoutError struct {
	Failed []ID
	Err    error
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout failed for %d window(s): %v", len(e.Failed), e.Err)
}

func (e *LayoutError) Unwrap() error { return e.Err }

func queryErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Op: op, Err: err}
}
