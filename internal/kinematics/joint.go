package kinematics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kinetree/internal/geom"
)

type JointKind int

const (
	Fixed JointKind = iota
	Rotational
	Linear
)

func (k JointKind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Rotational:
		return "rotational"
	case Linear:
		return "linear"
	}
	return fmt.Sprintf("JointKind(%d)", int(k))
}

// ParseJointKind accepts the names produced by JointKind.String, plus the
// common "revolute" and "prismatic" aliases.
func ParseJointKind(s string) (JointKind, error) {
	switch s {
	case "fixed", "":
		return Fixed, nil
	case "rotational", "revolute", "continuous":
		return Rotational, nil
	case "linear", "prismatic":
		return Linear, nil
	}
	return Fixed, fmt.Errorf("%w: unknown joint type %q", ErrInvalidLink, s)
}

// Range is an inclusive position interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Joint is the movable part of a link. Position is an angle in radians for
// rotational joints and a distance for linear ones; fixed joints have none.
type Joint struct {
	name     string
	kind     JointKind
	axis     r3.Vec
	limits   *Range
	position float64
}

func (j *Joint) Name() string    { return j.name }
func (j *Joint) Kind() JointKind { return j.kind }
func (j *Joint) Axis() r3.Vec    { return j.axis }
func (j *Joint) Movable() bool   { return j.kind != Fixed }

// Limits returns a copy of the range, or nil for an unlimited joint.
func (j *Joint) Limits() *Range {
	if j.limits == nil {
		return nil
	}
	r := *j.limits
	return &r
}

// Position returns false for fixed joints.
func (j *Joint) Position() (float64, bool) {
	if j.kind == Fixed {
		return 0, false
	}
	return j.position, true
}

// check reports whether v could be assigned without modifying the joint.
func (j *Joint) check(v float64) error {
	if j.kind == Fixed {
		return &JointError{Joint: j.name, Value: v, Err: ErrFixedJoint}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &JointError{Joint: j.name, Value: v, Err: ErrOutOfLimits}
	}
	if j.limits != nil && !j.limits.Contains(v) {
		return &JointError{Joint: j.name, Value: v, Err: ErrOutOfLimits}
	}
	return nil
}

// Transform is the motion produced by the current position.
func (j *Joint) Transform() geom.Pose {
	switch j.kind {
	case Fixed:
		return geom.Identity()
	case Rotational:
		return geom.AxisAngle(j.axis, j.position)
	case Linear:
		d := r3.Scale(j.position, j.axis)
		return geom.Translation(d.X, d.Y, d.Z)
	}
	panic(fmt.Sprintf("kinematics: unhandled joint kind %v", j.kind))
}
