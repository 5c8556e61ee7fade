package kinematics

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeMismatch indicates a joint vector whose length is not the
	// number of movable joints.
	ErrSizeMismatch = errors.New("kinematics: joint vector size mismatch")

	// ErrFixedJoint indicates an attempt to move a fixed joint.
	ErrFixedJoint = errors.New("kinematics: joint is fixed")

	// ErrOutOfLimits indicates a position outside the joint's range.
	ErrOutOfLimits = errors.New("kinematics: joint position out of limits")

	ErrInvalidLink     = errors.New("kinematics: invalid link configuration")
	ErrLinkNotFound    = errors.New("kinematics: link not found")
	ErrChainCheckedOut = errors.New("kinematics: tree is checked out by a chain")
	ErrChainReleased   = errors.New("kinematics: chain has been released")
)

// JointError reports a rejected assignment to a single joint.
type JointError struct {
	Joint string
	Value float64
	Err   error
}

func (e *JointError) Error() string {
	return fmt.Sprintf("joint %q value %.6f: %v", e.Joint, e.Value, e.Err)
}

func (e *JointError) Unwrap() error {
	return e.Err
}

func sizeMismatch(got, want int) error {
	return fmt.Errorf("%w: got %d values, want %d", ErrSizeMismatch, got, want)
}
