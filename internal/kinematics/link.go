package kinematics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kinetree/internal/geom"
)

// JointConfig describes the joint of a link. Kind defaults to Fixed.
type JointConfig struct {
	Name   string
	Kind   JointKind
	Axis   r3.Vec
	Limits *Range
}

// LinkConfig is the validated input for NewLink. The offset is the
// translation followed by the roll/pitch/yaw rotation, both relative to the
// parent link's frame.
type LinkConfig struct {
	Name        string
	Translation r3.Vec
	RPY         [3]float64
	Joint       JointConfig
}

// Validate reports the first problem that would make NewLink fail.
func (c LinkConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty link name", ErrInvalidLink)
	}
	for _, v := range []float64{c.Translation.X, c.Translation.Y, c.Translation.Z, c.RPY[0], c.RPY[1], c.RPY[2]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: link %q has a non-finite offset", ErrInvalidLink, c.Name)
		}
	}
	switch c.Joint.Kind {
	case Fixed:
		if c.Joint.Limits != nil {
			return fmt.Errorf("%w: fixed joint on link %q has limits", ErrInvalidLink, c.Name)
		}
		return nil
	case Rotational, Linear:
	default:
		return fmt.Errorf("%w: link %q has unknown joint kind %v", ErrInvalidLink, c.Name, c.Joint.Kind)
	}
	if n := r3.Norm(c.Joint.Axis); n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("%w: joint on link %q needs a non-zero axis", ErrInvalidLink, c.Name)
	}
	if l := c.Joint.Limits; l != nil {
		if math.IsNaN(l.Min) || math.IsNaN(l.Max) || l.Min > l.Max {
			return fmt.Errorf("%w: joint on link %q has range [%v, %v]", ErrInvalidLink, c.Name, l.Min, l.Max)
		}
	}
	return nil
}

// Link is the payload stored in each arena node.
type Link struct {
	name   string
	offset geom.Pose
	joint  Joint

	state      *treeState
	world      geom.Pose
	worldEpoch uint64
	worldSet   bool
}

// NewLink builds a link from cfg. A movable joint without a name takes the
// link's name, and its axis is normalized. The initial position is zero,
// or the nearest limit when zero lies outside the range.
func NewLink(cfg LinkConfig) (Link, error) {
	if err := cfg.Validate(); err != nil {
		return Link{}, err
	}
	j := Joint{name: cfg.Joint.Name, kind: cfg.Joint.Kind}
	if j.kind != Fixed {
		if j.name == "" {
			j.name = cfg.Name
		}
		j.axis = r3.Unit(cfg.Joint.Axis)
		if cfg.Joint.Limits != nil {
			r := *cfg.Joint.Limits
			j.limits = &r
			j.position = r.Clamp(0)
		}
	}
	offset := geom.Translation(cfg.Translation.X, cfg.Translation.Y, cfg.Translation.Z).
		Mul(geom.RPY(cfg.RPY[0], cfg.RPY[1], cfg.RPY[2]))
	return Link{name: cfg.Name, offset: offset, joint: j}, nil
}

// MustLink is NewLink for fixtures; it panics on an invalid config.
func MustLink(cfg LinkConfig) Link {
	l, err := NewLink(cfg)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Link) Name() string      { return l.name }
func (l *Link) Offset() geom.Pose { return l.offset }
func (l *Link) Joint() *Joint     { return &l.joint }

func (l *Link) HasJointAngle() bool { return l.joint.Movable() }

func (l *Link) JointAngle() (float64, bool) { return l.joint.Position() }

// SetJointAngle assigns the joint position. Fixed joints and out-of-range
// values are rejected with a *JointError and leave the link untouched. A
// link whose tree is checked out by a chain refuses with
// ErrChainCheckedOut; write through the chain instead. A successful write
// invalidates every cached world transform in the tree.
func (l *Link) SetJointAngle(v float64) error {
	if l.state != nil && l.state.checkedOut {
		return ErrChainCheckedOut
	}
	if err := l.joint.check(v); err != nil {
		return err
	}
	l.set(v)
	return nil
}

// set writes a position already accepted by check.
func (l *Link) set(v float64) {
	l.joint.position = v
	l.worldSet = false
	l.state.bump()
}

// LocalTransform is the offset followed by the joint motion.
func (l *Link) LocalTransform() geom.Pose {
	return l.offset.Mul(l.joint.Transform())
}

// WorldTransform returns the transform stored by the last whole-tree
// forward kinematics pass, or false when no valid pass exists.
func (l *Link) WorldTransform() (geom.Pose, bool) {
	if !l.worldSet || l.state == nil || l.worldEpoch != l.state.epoch {
		return geom.Pose{}, false
	}
	return l.world, true
}

func (l *Link) storeWorld(p geom.Pose) {
	l.world = p
	l.worldSet = true
	if l.state != nil {
		l.worldEpoch = l.state.epoch
	}
}

// treeState is shared by a tree and all of its links. epoch counts
// invalidations: cached transforms record the epoch they were computed in
// and are stale once it moves. checkedOut is set while a chain holds the
// tree.
type treeState struct {
	epoch      uint64
	checkedOut bool
}

func (s *treeState) bump() {
	if s != nil {
		s.epoch++
	}
}
