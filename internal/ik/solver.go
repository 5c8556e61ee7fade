package ik

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/kinematics"
)

// Step is the state at the start of one iteration.
type Step struct {
	Iteration        int       `json:"iteration"`
	Angles           []float64 `json:"angles"`
	PositionError    float64   `json:"position_error"`
	OrientationError float64   `json:"orientation_error"`
	// StepNorm is the length of the joint step taken after this state, zero
	// for the final state.
	StepNorm float64 `json:"step_norm"`
}

type Result struct {
	Converged        bool
	Iterations       int
	PositionError    float64
	OrientationError float64
	Angles           []float64
	Method           Method
	History          []Step
}

// Observer is notified once per iteration, including the final state.
type Observer interface {
	OnIteration(s Step)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Step)

func (f ObserverFunc) OnIteration(s Step) { f(s) }

type Solver struct {
	cfg       Config
	logger    *slog.Logger
	observers []Observer
}

type Option func(*Solver)

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *Solver) { s.observers = append(s.observers, o) }
}

// New validates cfg and builds a solver. Without WithLogger the solver logs
// nowhere.
func New(cfg Config, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Solver) Config() Config { return s.cfg }

func (s *Solver) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Solve drives c towards target. On success the chain holds the solution.
// On failure it holds the last applied step and the error is a
// *NotConvergedError; the Result is returned in both cases.
func (s *Solver) Solve(c Chain, target geom.Pose) (*Result, error) {
	q := c.JointAngles()
	limits := c.JointLimits()
	if len(limits) != len(q) {
		return nil, fmt.Errorf("ik: chain reports %d limits for %d joints", len(limits), len(q))
	}

	method := Numeric
	axisChain, analytic := c.(AxisChain)
	if analytic {
		method = Analytic
	}
	res := &Result{Method: method}

	for iter := 0; ; iter++ {
		current := c.EndTransform()
		linear, angular := geom.Diff(current, target)
		step := Step{
			Iteration:        iter,
			Angles:           append([]float64(nil), q...),
			PositionError:    r3.Norm(linear),
			OrientationError: r3.Norm(angular),
		}
		res.Iterations = iter
		res.PositionError = step.PositionError
		res.OrientationError = step.OrientationError
		res.Angles = step.Angles

		if step.PositionError <= s.cfg.PositionTolerance && step.OrientationError <= s.cfg.OrientationTolerance {
			s.record(res, step)
			res.Converged = true
			s.logger.Debug("ik converged",
				"iterations", iter,
				"position_error", step.PositionError,
				"orientation_error", step.OrientationError)
			return res, nil
		}
		if iter == s.cfg.MaxIterations {
			s.record(res, step)
			return res, s.fail(res, nil)
		}
		if len(q) == 0 {
			s.record(res, step)
			return res, s.fail(res, ErrStagnated)
		}

		var jac *mat.Dense
		if analytic {
			jac = analyticJacobian(axisChain.JointAxes(), current.Translation)
		} else {
			var err error
			jac, err = numericJacobian(c, q, limits, current, s.cfg.JacobianEpsilon)
			if err != nil {
				return res, err
			}
		}

		e := mat.NewVecDense(6, []float64{linear.X, linear.Y, linear.Z, angular.X, angular.Y, angular.Z})
		dq, err := dampedLeastSquares(jac, e, s.cfg.Damping)
		if err != nil {
			return res, err
		}

		next := s.advance(q, dq, limits)
		step.StepNorm = distance(q, next)
		s.record(res, step)
		s.logger.Debug("ik iteration",
			"iteration", iter,
			"position_error", step.PositionError,
			"orientation_error", step.OrientationError,
			"step_norm", step.StepNorm)

		if step.StepNorm < s.cfg.StepThreshold {
			return res, s.fail(res, ErrStagnated)
		}
		if err := c.SetJointAngles(next); err != nil {
			return res, fmt.Errorf("ik: apply step %d: %w", iter, err)
		}
		q = next
	}
}

// advance scales dq by the gain, shrinks it so no joint moves more than
// MaxStep, and clamps the result into the joint limits.
func (s *Solver) advance(q []float64, dq *mat.VecDense, limits []*kinematics.Range) []float64 {
	scale := s.cfg.StepGain
	if m := mat.Norm(dq, math.Inf(1)) * scale; m > s.cfg.MaxStep {
		scale *= s.cfg.MaxStep / m
	}
	next := make([]float64, len(q))
	for i := range q {
		next[i] = q[i] + scale*dq.AtVec(i)
		if r := limits[i]; r != nil {
			next[i] = r.Clamp(next[i])
		}
	}
	return next
}

func (s *Solver) record(res *Result, step Step) {
	if s.cfg.RecordHistory {
		res.History = append(res.History, step)
	}
	for _, o := range s.observers {
		o.OnIteration(step)
	}
}

func (s *Solver) fail(res *Result, cause error) error {
	err := &NotConvergedError{
		Iterations:       res.Iterations,
		PositionError:    res.PositionError,
		OrientationError: res.OrientationError,
		Cause:            cause,
	}
	s.logger.Warn("ik failed", "err", err)
	return err
}

func distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := b[i] - a[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
