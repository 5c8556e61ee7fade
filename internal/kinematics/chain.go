package kinematics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/idtree"
)

// JointAxis is a movable joint expressed in the chain's base frame.
type JointAxis struct {
	Name   string
	Kind   JointKind
	Origin r3.Vec
	Axis   r3.Vec
}

// Chain is an ordered root-to-end path of links. It owns no links; it
// reads and writes them through the arena it was built on.
//
// When an end link name is set, the chain ends at the first link with that
// name: transforms, link names and the joint space all stop there.
type Chain struct {
	name    string
	arena   *idtree.Tree[Link]
	ids     []idtree.NodeID
	base    geom.Pose
	endLink string

	owner    *Tree
	released bool
}

// NewChain builds a chain over ids, which must be ordered from the root
// towards the end effector.
func NewChain(name string, arena *idtree.Tree[Link], ids []idtree.NodeID) *Chain {
	for _, id := range ids {
		arena.Get(id)
	}
	return &Chain{
		name:  name,
		arena: arena,
		ids:   append([]idtree.NodeID(nil), ids...),
		base:  geom.Identity(),
	}
}

func (c *Chain) Name() string { return c.name }

// IDs returns the node ids of the chain, ignoring the end link name.
func (c *Chain) IDs() []idtree.NodeID {
	return append([]idtree.NodeID(nil), c.ids...)
}

func (c *Chain) BaseTransform() geom.Pose { return c.base }

// SetBaseTransform places the first link of the chain.
func (c *Chain) SetBaseTransform(p geom.Pose) { c.base = p }

func (c *Chain) EndLinkName() string { return c.endLink }

// SetEndLinkName truncates the chain at the named link. An empty name or a
// name not on the chain leaves the full path active.
func (c *Chain) SetEndLinkName(name string) { c.endLink = name }

// active returns the ids up to and including the end link.
func (c *Chain) active() []idtree.NodeID {
	if c.endLink == "" {
		return c.ids
	}
	for i, id := range c.ids {
		if c.arena.Get(id).Data.name == c.endLink {
			return c.ids[:i+1]
		}
	}
	return c.ids
}

func (c *Chain) link(id idtree.NodeID) *Link {
	return &c.arena.Get(id).Data
}

// EndTransform folds the base transform through every link's local
// transform and returns the pose of the end link.
func (c *Chain) EndTransform() geom.Pose {
	end := c.base
	for _, id := range c.ids {
		l := c.link(id)
		end = end.Mul(l.LocalTransform())
		if c.endLink != "" && l.name == c.endLink {
			return end
		}
	}
	return end
}

// LinkTransforms returns the cumulative pose after each link.
func (c *Chain) LinkTransforms() []geom.Pose {
	ids := c.active()
	out := make([]geom.Pose, 0, len(ids))
	acc := c.base
	for _, id := range ids {
		acc = acc.Mul(c.link(id).LocalTransform())
		out = append(out, acc)
	}
	return out
}

// LinkNames is aligned with LinkTransforms.
func (c *Chain) LinkNames() []string {
	ids := c.active()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = c.link(id).name
	}
	return out
}

func (c *Chain) movable() []*Link {
	var out []*Link
	for _, id := range c.active() {
		if l := c.link(id); l.HasJointAngle() {
			out = append(out, l)
		}
	}
	return out
}

// DOF is the number of movable joints on the chain.
func (c *Chain) DOF() int {
	return len(c.movable())
}

func (c *Chain) JointAngles() []float64 {
	links := c.movable()
	out := make([]float64, len(links))
	for i, l := range links {
		out[i], _ = l.JointAngle()
	}
	return out
}

// SetJointAngles assigns one value per movable joint. The length and every
// value are checked before anything is written, so on error the chain is
// unchanged.
func (c *Chain) SetJointAngles(angles []float64) error {
	if c.released {
		return ErrChainReleased
	}
	links := c.movable()
	if len(angles) != len(links) {
		return sizeMismatch(len(angles), len(links))
	}
	for i, l := range links {
		if err := l.joint.check(angles[i]); err != nil {
			return err
		}
	}
	for i, l := range links {
		l.set(angles[i])
	}
	return nil
}

// JointLimits holds nil for unlimited joints.
func (c *Chain) JointLimits() []*Range {
	links := c.movable()
	out := make([]*Range, len(links))
	for i, l := range links {
		out[i] = l.joint.Limits()
	}
	return out
}

func (c *Chain) JointNames() []string {
	links := c.movable()
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.joint.name
	}
	return out
}

// JointAxes returns the origin and direction of every movable joint in the
// frame the base transform is expressed in, aligned with JointAngles.
func (c *Chain) JointAxes() []JointAxis {
	var out []JointAxis
	acc := c.base
	for _, id := range c.active() {
		l := c.link(id)
		frame := acc.Mul(l.offset)
		if l.HasJointAngle() {
			out = append(out, JointAxis{
				Name:   l.joint.name,
				Kind:   l.joint.kind,
				Origin: frame.Translation,
				Axis:   frame.Rotate(l.joint.axis),
			})
		}
		acc = frame.Mul(l.joint.Transform())
	}
	return out
}

// Release hands the tree back to its owner. Reads keep working afterwards;
// SetJointAngles fails with ErrChainReleased.
func (c *Chain) Release() {
	if c.released {
		return
	}
	c.released = true
	if c.owner != nil {
		c.owner.state.checkedOut = false
	}
}
