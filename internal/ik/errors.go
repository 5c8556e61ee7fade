package ik

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConverged indicates the iteration budget ran out before the
	// end transform reached the target.
	ErrNotConverged = errors.New("ik: not converged")

	// ErrStagnated indicates the joint step fell below the step threshold
	// while the target was still out of tolerance.
	ErrStagnated = errors.New("ik: joint step below threshold")

	ErrInvalidConfig = errors.New("ik: invalid solver config")
)

// NotConvergedError reports a failed solve. It always matches
// ErrNotConverged, and ErrStagnated as well when that was the cause.
type NotConvergedError struct {
	Iterations       int
	PositionError    float64
	OrientationError float64
	Cause            error
}

func (e *NotConvergedError) Error() string {
	msg := fmt.Sprintf("ik: not converged after %d iterations (position error %.3g, orientation error %.3g)",
		e.Iterations, e.PositionError, e.OrientationError)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *NotConvergedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrNotConverged}
	}
	return []error{ErrNotConverged, e.Cause}
}

// IsNotConverged reports whether err is, or wraps, a *NotConvergedError.
func IsNotConverged(err error) bool {
	var nc *NotConvergedError
	return errors.As(err, &nc)
}
