package kinematics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kinetree/internal/geom"
)

func TestLinkConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LinkConfig
		wantErr bool
	}{
		{"fixed", fixed("a", 0, 0, 0), false},
		{"rotational", rot("a", geom.UnitX, 0, 0, 0), false},
		{"empty name", LinkConfig{}, true},
		{"zero axis", LinkConfig{Name: "a", Joint: JointConfig{Kind: Rotational}}, true},
		{"nan offset", LinkConfig{Name: "a", Translation: r3.Vec{X: math.NaN()}}, true},
		{"inverted range", LinkConfig{Name: "a", Joint: JointConfig{Kind: Linear, Axis: geom.UnitZ, Limits: &Range{Min: 1, Max: -1}}}, true},
		{"fixed with limits", LinkConfig{Name: "a", Joint: JointConfig{Limits: &Range{Min: -1, Max: 1}}}, true},
		{"unknown kind", LinkConfig{Name: "a", Joint: JointConfig{Kind: JointKind(9), Axis: geom.UnitZ}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidLink)
				_, err = NewLink(tt.cfg)
				require.ErrorIs(t, err, ErrInvalidLink)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewLinkDefaults(t *testing.T) {
	l := MustLink(LinkConfig{Name: "wrist", Joint: JointConfig{Kind: Rotational, Axis: r3.Vec{Z: 3}}})
	assert.Equal(t, "wrist", l.Joint().Name())
	assertVec(t, geom.UnitZ, l.Joint().Axis())
	v, ok := l.JointAngle()
	assert.True(t, ok)
	assert.Zero(t, v)

	limited := MustLink(LinkConfig{Name: "gripper", Joint: JointConfig{Kind: Linear, Axis: geom.UnitX, Limits: &Range{Min: 0.01, Max: 0.04}}})
	v, _ = limited.JointAngle()
	assert.Equal(t, 0.01, v, "zero lies outside the range so the joint starts at the nearest limit")
}

func TestSetJointAngle(t *testing.T) {
	l := MustLink(LinkConfig{Name: "elbow", Joint: JointConfig{Kind: Rotational, Axis: geom.UnitY, Limits: &Range{Min: -1, Max: 1}}})

	require.NoError(t, l.SetJointAngle(0.5))
	v, _ := l.JointAngle()
	assert.Equal(t, 0.5, v)

	for _, bad := range []float64{1.5, -1.01, math.NaN(), math.Inf(1)} {
		err := l.SetJointAngle(bad)
		require.ErrorIs(t, err, ErrOutOfLimits)
		var je *JointError
		require.True(t, errors.As(err, &je))
		assert.Equal(t, "elbow", je.Joint)
	}
	v, _ = l.JointAngle()
	assert.Equal(t, 0.5, v, "rejected writes leave the joint unchanged")
}

func TestFixedJointRejectsAngle(t *testing.T) {
	l := MustLink(fixed("tool", 0, 0, 0.1))
	assert.False(t, l.HasJointAngle())
	_, ok := l.JointAngle()
	assert.False(t, ok)
	require.ErrorIs(t, l.SetJointAngle(0.1), ErrFixedJoint)
}

func TestLocalTransform(t *testing.T) {
	r := MustLink(rot("r", geom.UnitZ, 1, 0, 0))
	require.NoError(t, r.SetJointAngle(math.Pi/2))
	assertVec(t, r3.Vec{X: 1, Y: 1}, r.LocalTransform().Apply(geom.UnitX))

	lin := MustLink(LinkConfig{Name: "slide", Translation: r3.Vec{Z: 0.5}, Joint: JointConfig{Kind: Linear, Axis: geom.UnitX}})
	require.NoError(t, lin.SetJointAngle(0.25))
	assertVec(t, r3.Vec{X: 0.25, Z: 0.5}, lin.LocalTransform().Translation)

	tilted := MustLink(LinkConfig{Name: "t", RPY: [3]float64{0, 0, math.Pi / 2}, Joint: JointConfig{Kind: Linear, Axis: geom.UnitX}})
	require.NoError(t, tilted.SetJointAngle(1))
	assertVec(t, r3.Vec{Y: 1}, tilted.LocalTransform().Translation)
}

func TestParseJointKind(t *testing.T) {
	for in, want := range map[string]JointKind{
		"fixed": Fixed, "": Fixed, "revolute": Rotational, "rotational": Rotational,
		"continuous": Rotational, "prismatic": Linear, "linear": Linear,
	} {
		got, err := ParseJointKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseJointKind("planar")
	require.ErrorIs(t, err, ErrInvalidLink)
	assert.Equal(t, "linear", Linear.String())
}

func TestRangeClamp(t *testing.T) {
	r := Range{Min: -0.5, Max: 0.5}
	assert.Equal(t, 0.5, r.Clamp(2))
	assert.Equal(t, -0.5, r.Clamp(-2))
	assert.Equal(t, 0.1, r.Clamp(0.1))
	assert.True(t, r.Contains(0.5))
	assert.False(t, r.Contains(0.6))
}
