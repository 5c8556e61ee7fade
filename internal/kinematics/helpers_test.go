package kinematics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/idtree"
)

const tol = 1e-9

func rot(name string, axis r3.Vec, x, y, z float64) LinkConfig {
	return LinkConfig{
		Name:        name,
		Translation: r3.Vec{X: x, Y: y, Z: z},
		Joint:       JointConfig{Name: name + "_joint", Kind: Rotational, Axis: axis},
	}
}

func fixed(name string, x, y, z float64) LinkConfig {
	return LinkConfig{Name: name, Translation: r3.Vec{X: x, Y: y, Z: z}}
}

// planarArm is two unit links rotating about z with a fixed tool frame:
// base(rot z) -> elbow(rot z, +1 x) -> tool(fixed, +1 x).
func planarArm(t testing.TB) (*idtree.Tree[Link], []idtree.NodeID) {
	t.Helper()
	arena := idtree.New[Link]()
	ids := []idtree.NodeID{
		arena.CreateNode(MustLink(rot("base", geom.UnitZ, 0, 0, 0))),
		arena.CreateNode(MustLink(rot("elbow", geom.UnitZ, 1, 0, 0))),
		arena.CreateNode(MustLink(fixed("tool", 1, 0, 0))),
	}
	arena.SetParentChild(ids[0], ids[1])
	arena.SetParentChild(ids[1], ids[2])
	return arena, ids
}

// branchedTree mirrors a torso with two arms:
// torso -> l_shoulder -> l_elbow -> l_wrist
//
//	-> r_shoulder -> r_elbow -> r_wrist
func branchedTree(t testing.TB) *Tree {
	t.Helper()
	arena := idtree.New[Link]()
	torso := arena.CreateNode(MustLink(fixed("torso", 0, 0, 1)))
	ls := arena.CreateNode(MustLink(rot("l_shoulder", geom.UnitY, 0, 0.1, 0)))
	le := arena.CreateNode(MustLink(rot("l_elbow", geom.UnitY, 0, 0.1, 0.1)))
	lw := arena.CreateNode(MustLink(rot("l_wrist", geom.UnitY, 0, 0.1, 0.1)))
	rs := arena.CreateNode(MustLink(rot("r_shoulder", geom.UnitY, 0, -0.1, 0)))
	re := arena.CreateNode(MustLink(rot("r_elbow", geom.UnitX, 0, -0.1, 0.1)))
	rw := arena.CreateNode(MustLink(rot("r_wrist", geom.UnitZ, 0, 0, 0.1)))
	arena.SetParentChild(torso, ls)
	arena.SetParentChild(ls, le)
	arena.SetParentChild(le, lw)
	arena.SetParentChild(torso, rs)
	arena.SetParentChild(rs, re)
	arena.SetParentChild(re, rw)
	return NewTree("torso", arena)
}

func assertVec(t testing.TB, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x")
	assert.InDelta(t, want.Y, got.Y, tol, "y")
	assert.InDelta(t, want.Z, got.Z, tol, "z")
}

func assertPose(t testing.TB, want, got geom.Pose) {
	t.Helper()
	require.True(t, geom.ApproxEqual(want, got, tol), "want %v, got %v", want, got)
}
