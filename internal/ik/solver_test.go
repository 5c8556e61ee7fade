package ik_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/idtree"
	"github.com/san-kum/kinetree/internal/ik"
	"github.com/san-kum/kinetree/internal/kinematics"
)

type segment struct {
	link, joint string
	axis        r3.Vec
	z, y        float64
}

var arm7 = []segment{
	{"shoulder_link1", "shoulder_pitch", geom.UnitY, 0, 0},
	{"shoulder_link2", "shoulder_roll", geom.UnitX, 0, 0.1},
	{"shoulder_link3", "shoulder_yaw", geom.UnitZ, -0.30, 0},
	{"elbow_link1", "elbow_pitch", geom.UnitY, -0.15, 0},
	{"wrist_link1", "wrist_yaw", geom.UnitZ, -0.15, 0},
	{"wrist_link2", "wrist_pitch", geom.UnitY, -0.15, 0},
	{"wrist_link3", "wrist_roll", geom.UnitX, -0.10, 0},
}

// newArm builds an unlinked arena holding the first n segments and a chain
// over them, the way a caller without a tree would.
func newArm(t testing.TB, n int, limits *kinematics.Range) *kinematics.Chain {
	t.Helper()
	arena := idtree.New[kinematics.Link]()
	ids := make([]idtree.NodeID, 0, n)
	for _, s := range arm7[:n] {
		l, err := kinematics.NewLink(kinematics.LinkConfig{
			Name:        s.link,
			Translation: r3.Vec{Y: s.y, Z: s.z},
			Joint: kinematics.JointConfig{
				Name:   s.joint,
				Kind:   kinematics.Rotational,
				Axis:   s.axis,
				Limits: limits,
			},
		})
		require.NoError(t, err)
		ids = append(ids, arena.CreateNode(l))
	}
	return kinematics.NewChain("arm", arena, ids)
}

// hide exposes only the plain Chain methods so the solver has to fall back
// to the numeric Jacobian.
type hide struct{ ik.Chain }

func precise() ik.Config {
	cfg := ik.DefaultConfig()
	cfg.PositionTolerance = 1e-6
	cfg.OrientationTolerance = 1e-6
	cfg.RecordHistory = true
	return cfg
}

func newSolver(t testing.TB, cfg ik.Config, opts ...ik.Option) *ik.Solver {
	t.Helper()
	s, err := ik.New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestSolveRecoversKnownAngles(t *testing.T) {
	tests := []struct {
		name  string
		dof   int
		want  []float64
		start []float64
		wrap  func(ik.Chain) ik.Chain
	}{
		{
			name:  "six joints analytic",
			dof:   6,
			want:  []float64{0.8, 0.2, 0, -1.2, 0, 0.1},
			start: []float64{0.4, 0.1, 0.1, -1.0, 0.1, 0.1},
			wrap:  func(c ik.Chain) ik.Chain { return c },
		},
		{
			name:  "six joints numeric",
			dof:   6,
			want:  []float64{0.8, 0.2, 0, -1.2, 0, 0.1},
			start: []float64{0.4, 0.1, 0.1, -1.0, 0.1, 0.1},
			wrap:  func(c ik.Chain) ik.Chain { return hide{c} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arm := newArm(t, tt.dof, nil)
			require.NoError(t, arm.SetJointAngles(tt.want))
			target := arm.EndTransform()
			require.NoError(t, arm.SetJointAngles(tt.start))

			res, err := newSolver(t, precise()).Solve(tt.wrap(arm), target)
			require.NoError(t, err)
			assert.True(t, res.Converged)
			assert.Positive(t, res.Iterations)

			got := arm.JointAngles()
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-3, "joint %d", i)
			}
			assert.Equal(t, got, res.Angles)
		})
	}
}

func TestSolveMethod(t *testing.T) {
	arm := newArm(t, 6, nil)
	target := arm.EndTransform()
	res, err := newSolver(t, ik.DefaultConfig()).Solve(arm, target)
	require.NoError(t, err)
	assert.Equal(t, ik.Analytic, res.Method)

	res, err = newSolver(t, ik.DefaultConfig()).Solve(hide{arm}, target)
	require.NoError(t, err)
	assert.Equal(t, ik.Numeric, res.Method)
}

func TestSolveAtTargetTakesNoIterations(t *testing.T) {
	arm := newArm(t, 7, nil)
	angles := []float64{0.8, 0.2, 0, -1.5, 0, -0.3, 0}
	require.NoError(t, arm.SetJointAngles(angles))

	res, err := newSolver(t, precise()).Solve(arm, arm.EndTransform())
	require.NoError(t, err)
	assert.Zero(t, res.Iterations)
	require.Len(t, res.History, 1)
	for i, v := range arm.JointAngles() {
		assert.InDelta(t, angles[i], v, 1e-3)
	}
}

func TestSolveRedundantArmReachesPose(t *testing.T) {
	arm := newArm(t, 7, nil)
	require.NoError(t, arm.SetJointAngles([]float64{0.8, 0.2, 0, -1.5, 0, -0.3, 0}))
	target := arm.EndTransform()
	require.NoError(t, arm.SetJointAngles([]float64{0.6, 0.3, -0.1, -1.3, 0.1, -0.2, 0.1}))

	cfg := precise()
	res, err := newSolver(t, cfg).Solve(arm, target)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.PositionError, cfg.PositionTolerance)
	assert.LessOrEqual(t, res.OrientationError, cfg.OrientationTolerance)

	v, w := geom.Diff(arm.EndTransform(), target)
	assert.LessOrEqual(t, r3.Norm(v), cfg.PositionTolerance)
	assert.LessOrEqual(t, r3.Norm(w), cfg.OrientationTolerance)
}

func TestSolveTranslatedTarget(t *testing.T) {
	arm := newArm(t, 6, nil)
	require.NoError(t, arm.SetJointAngles([]float64{0.5, 0.2, 0, -0.5, 0, -0.3}))
	target := arm.EndTransform()
	target.Translation.X += 0.02

	res, err := newSolver(t, ik.DefaultConfig()).Solve(arm, target)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.InDelta(t, target.Translation.X, arm.EndTransform().Translation.X, 1e-4)
}

func TestSolveNotConvergedKeepsLastAngles(t *testing.T) {
	arm := newArm(t, 6, nil)
	require.NoError(t, arm.SetJointAngles([]float64{0.8, 0.2, 0, -1.2, 0, 0.1}))
	target := arm.EndTransform()
	start := []float64{0.4, 0.1, 0.1, -1.0, 0.1, 0.1}
	require.NoError(t, arm.SetJointAngles(start))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := precise()
	cfg.MaxIterations = 1
	res, err := newSolver(t, cfg, ik.WithLogger(logger)).Solve(arm, target)
	require.Error(t, err)
	require.ErrorIs(t, err, ik.ErrNotConverged)
	assert.NotErrorIs(t, err, ik.ErrStagnated)
	assert.True(t, ik.IsNotConverged(err))

	var nc *ik.NotConvergedError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, 1, nc.Iterations)
	assert.Equal(t, res.PositionError, nc.PositionError)
	assert.False(t, res.Converged)

	assert.NotEqual(t, start, arm.JointAngles(), "one step was applied and not rolled back")
	assert.Equal(t, res.Angles, arm.JointAngles())
	assert.Contains(t, logs.String(), "ik iteration")
	assert.Contains(t, logs.String(), "ik failed")
}

func TestSolveRespectsLimits(t *testing.T) {
	limits := &kinematics.Range{Min: -0.5, Max: 0.5}
	arm := newArm(t, 6, limits)

	// Out of reach, so the solver keeps pushing joints into their limits.
	target := geom.Translation(2, 0, 0)

	cfg := ik.DefaultConfig()
	cfg.MaxIterations = 30
	res, err := newSolver(t, cfg).Solve(arm, target)
	require.True(t, ik.IsNotConverged(err))
	assert.False(t, res.Converged)
	for i, v := range arm.JointAngles() {
		assert.True(t, limits.Contains(v), "joint %d at %v", i, v)
	}
}

func TestSolveStagnatesWithoutJoints(t *testing.T) {
	arena := idtree.New[kinematics.Link]()
	id := arena.CreateNode(kinematics.MustLink(kinematics.LinkConfig{Name: "plate"}))
	c := kinematics.NewChain("plate", arena, []idtree.NodeID{id})

	_, err := newSolver(t, ik.DefaultConfig()).Solve(c, geom.Translation(1, 0, 0))
	require.ErrorIs(t, err, ik.ErrStagnated)
	require.ErrorIs(t, err, ik.ErrNotConverged)

	res, err := newSolver(t, ik.DefaultConfig()).Solve(c, geom.Identity())
	require.NoError(t, err)
	assert.True(t, res.Converged)
}

func TestSolveIsDeterministic(t *testing.T) {
	run := func() []ik.Step {
		arm := newArm(t, 7, nil)
		require.NoError(t, arm.SetJointAngles([]float64{0.8, 0.2, 0, -1.5, 0, -0.3, 0}))
		target := arm.EndTransform()
		require.NoError(t, arm.SetJointAngles([]float64{0.5, 0, 0, -1.0, 0, 0, 0}))
		res, err := newSolver(t, precise()).Solve(arm, target)
		require.NoError(t, err)
		return res.History
	}
	assert.Equal(t, run(), run())
}

func TestObserverSeesEveryIteration(t *testing.T) {
	arm := newArm(t, 6, nil)
	require.NoError(t, arm.SetJointAngles([]float64{0.8, 0.2, 0, -1.2, 0, 0.1}))
	target := arm.EndTransform()
	require.NoError(t, arm.SetJointAngles([]float64{0.7, 0.2, 0, -1.1, 0, 0.1}))

	var seen []int
	s := newSolver(t, precise(), ik.WithObserver(ik.ObserverFunc(func(st ik.Step) {
		seen = append(seen, st.Iteration)
	})))
	res, err := s.Solve(arm, target)
	require.NoError(t, err)
	require.Len(t, seen, res.Iterations+1)
	require.Len(t, res.History, res.Iterations+1)
	for i, st := range res.History {
		assert.Equal(t, i, seen[i])
		assert.Equal(t, i, st.Iteration)
	}
	assert.Zero(t, res.History[len(res.History)-1].StepNorm)
}

func TestSolveRejectsMismatchedChain(t *testing.T) {
	_, err := newSolver(t, ik.DefaultConfig()).Solve(badChain{hide{newArm(t, 6, nil)}}, geom.Identity())
	require.Error(t, err)
	assert.False(t, ik.IsNotConverged(err))
}

type badChain struct{ ik.Chain }

func (badChain) JointLimits() []*kinematics.Range { return nil }

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ik.Config)
	}{
		{"zero position tolerance", func(c *ik.Config) { c.PositionTolerance = 0 }},
		{"negative orientation tolerance", func(c *ik.Config) { c.OrientationTolerance = -1 }},
		{"zero step threshold", func(c *ik.Config) { c.StepThreshold = 0 }},
		{"zero gain", func(c *ik.Config) { c.StepGain = 0 }},
		{"zero damping", func(c *ik.Config) { c.Damping = 0 }},
		{"zero max step", func(c *ik.Config) { c.MaxStep = 0 }},
		{"zero epsilon", func(c *ik.Config) { c.JacobianEpsilon = 0 }},
		{"zero iterations", func(c *ik.Config) { c.MaxIterations = 0 }},
	}

	require.NoError(t, ik.DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ik.DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ik.ErrInvalidConfig)
			_, err := ik.New(cfg)
			require.ErrorIs(t, err, ik.ErrInvalidConfig)
		})
	}
}

func BenchmarkSolve(b *testing.B) {
	arm := newArm(b, 6, nil)
	angles := []float64{0.5, 0.2, 0, -0.5, 0, -0.3}
	require.NoError(b, arm.SetJointAngles(angles))
	target := arm.EndTransform()
	target.Translation.X += 0.02
	s := newSolver(b, ik.DefaultConfig())

	for b.Loop() {
		if _, err := s.Solve(arm, target); err != nil {
			b.Fatal(err)
		}
		if err := arm.SetJointAngles(angles); err != nil {
			b.Fatal(err)
		}
	}
}
