package kinematics

import (
	"fmt"
	"iter"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/idtree"
)

// Tree is a whole mechanism. It owns the arena of links it was built from.
type Tree struct {
	name  string
	arena *idtree.Tree[Link]
	root  idtree.NodeID
	state *treeState
}

// NewTree takes ownership of arena. The arena must already be fully linked
// and have exactly one root: a rootless arena panics with idtree.ErrNoRoot
// and one with several parentless nodes with idtree.ErrMultipleRoots.
func NewTree(name string, arena *idtree.Tree[Link]) *Tree {
	roots := arena.Roots()
	switch {
	case len(roots) == 0:
		panic(idtree.ErrNoRoot)
	case len(roots) > 1:
		panic(idtree.ErrMultipleRoots)
	}
	t := &Tree{
		name:  name,
		arena: arena,
		root:  roots[0],
		state: &treeState{},
	}
	for n := range arena.All() {
		n.Data.state = t.state
		n.Data.worldSet = false
	}
	return t
}

func (t *Tree) Name() string { return t.name }

func (t *Tree) Len() int { return t.arena.Len() }

func (t *Tree) RootID() idtree.NodeID { return t.root }

// CheckedOut reports whether a chain currently holds the tree.
func (t *Tree) CheckedOut() bool { return t.state.checkedOut }

// RootTransform is the root link's offset, i.e. where the mechanism sits in
// the world.
func (t *Tree) RootTransform() geom.Pose { return t.arena.Get(t.root).Data.offset }

// SetRootTransform replaces the root link's offset, placing the whole
// mechanism in the world.
func (t *Tree) SetRootTransform(p geom.Pose) error {
	if t.state.checkedOut {
		return ErrChainCheckedOut
	}
	root := &t.arena.Get(t.root).Data
	root.offset = p
	root.worldSet = false
	t.state.bump()
	return nil
}

// Links yields every link in creation order.
func (t *Tree) Links() iter.Seq[*Link] {
	return func(yield func(*Link) bool) {
		for n := range t.arena.All() {
			if !yield(&n.Data) {
				return
			}
		}
	}
}

// Joints yields the links with a movable joint, in creation order.
func (t *Tree) Joints() iter.Seq[*Link] {
	return func(yield func(*Link) bool) {
		for l := range t.Links() {
			if l.HasJointAngle() && !yield(l) {
				return
			}
		}
	}
}

// Link finds a link by name.
func (t *Tree) Link(name string) (*Link, bool) {
	id, ok := t.find(name)
	if !ok {
		return nil, false
	}
	return &t.arena.Get(id).Data, true
}

func (t *Tree) find(name string) (idtree.NodeID, bool) {
	for n := range t.arena.All() {
		if n.Data.name == name {
			return n.ID, true
		}
	}
	return idtree.None, false
}

// DOF counts the movable joints across the whole tree.
func (t *Tree) DOF() int {
	n := 0
	for range t.Joints() {
		n++
	}
	return n
}

func (t *Tree) LinkNames() []string {
	out := make([]string, 0, t.arena.Len())
	for l := range t.Links() {
		out = append(out, l.name)
	}
	return out
}

// Parents is aligned with LinkNames and holds each link's parent id, or
// idtree.None for the root.
func (t *Tree) Parents() []idtree.NodeID {
	out := make([]idtree.NodeID, 0, t.arena.Len())
	for n := range t.arena.All() {
		p, ok := n.Parent()
		if !ok {
			p = idtree.None
		}
		out = append(out, p)
	}
	return out
}

func (t *Tree) JointNames() []string {
	var out []string
	for l := range t.Joints() {
		out = append(out, l.joint.name)
	}
	return out
}

func (t *Tree) JointAngles() []float64 {
	var out []float64
	for l := range t.Joints() {
		v, _ := l.JointAngle()
		out = append(out, v)
	}
	return out
}

func (t *Tree) JointLimits() []*Range {
	var out []*Range
	for l := range t.Joints() {
		out = append(out, l.joint.Limits())
	}
	return out
}

// SetJointAngles assigns one value per movable joint in creation order.
// Nothing is written unless every value is accepted.
func (t *Tree) SetJointAngles(angles []float64) error {
	if t.state.checkedOut {
		return ErrChainCheckedOut
	}
	var links []*Link
	for l := range t.Joints() {
		links = append(links, l)
	}
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

// CalcLinkTransforms runs forward kinematics over the whole tree and
// refreshes every link's cached world transform. The result is indexed by
// node id, i.e. aligned with LinkNames.
//
// The root link's parent frame is the world; each other link reads its
// parent's cached transform, which the depth-first
// walk guarantees was written earlier in the same pass.
func (t *Tree) CalcLinkTransforms() ([]geom.Pose, error) {
	if t.state.checkedOut {
		return nil, ErrChainCheckedOut
	}
	out := make([]geom.Pose, t.arena.Len())
	for n := range t.arena.Descendants(t.root) {
		parent := geom.Identity()
		if pid, ok := n.Parent(); ok {
			p, valid := t.arena.Get(pid).Data.WorldTransform()
			if !valid {
				panic(fmt.Sprintf("kinematics: %v visited before its parent %v", n.ID, pid))
			}
			parent = p
		}
		world := parent.Mul(n.Data.LocalTransform())
		n.Data.storeWorld(world)
		out[n.ID] = world
	}
	return out, nil
}

// WorldTransform returns the cached transform of the named link from the
// last CalcLinkTransforms, or false if the link is unknown or the cache has
// been invalidated since.
func (t *Tree) WorldTransform(name string) (geom.Pose, bool) {
	l, ok := t.Link(name)
	if !ok {
		return geom.Pose{}, false
	}
	return l.WorldTransform()
}

// ChainFromEndLinkName checks out the path from the root to the named
// link. The tree stays checked out until the chain is released; meanwhile
// only the chain may move joints.
func (t *Tree) ChainFromEndLinkName(name string) (*Chain, error) {
	if t.state.checkedOut {
		return nil, ErrChainCheckedOut
	}
	id, ok := t.find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLinkNotFound, name)
	}
	c := NewChain(name, t.arena, t.arena.PathFromRoot(id))
	c.endLink = name
	c.owner = t
	t.state.checkedOut = true
	return c, nil
}
