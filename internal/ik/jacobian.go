package ik

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/kinematics"
)

// Chain is the contract the solver drives. *kinematics.Chain satisfies it.
type Chain interface {
	EndTransform() geom.Pose
	JointAngles() []float64
	SetJointAngles(angles []float64) error
	JointLimits() []*kinematics.Range
}

// AxisChain is a Chain that can report its joint axes in the same frame as
// EndTransform, which enables the analytic Jacobian.
type AxisChain interface {
	Chain
	JointAxes() []kinematics.JointAxis
}

// Method names how the Jacobian was built.
type Method string

const (
	Analytic Method = "analytic"
	Numeric  Method = "numeric"
)

func twist(j *mat.Dense, col int, v, w r3.Vec) {
	j.Set(0, col, v.X)
	j.Set(1, col, v.Y)
	j.Set(2, col, v.Z)
	j.Set(3, col, w.X)
	j.Set(4, col, w.Y)
	j.Set(5, col, w.Z)
}

// analyticJacobian fills one column per joint from the joint axis and the
// lever arm to the end point.
func analyticJacobian(axes []kinematics.JointAxis, end r3.Vec) *mat.Dense {
	j := mat.NewDense(6, len(axes), nil)
	for i, a := range axes {
		switch a.Kind {
		case kinematics.Rotational:
			twist(j, i, r3.Cross(a.Axis, r3.Sub(end, a.Origin)), a.Axis)
		case kinematics.Linear:
			twist(j, i, a.Axis, r3.Vec{})
		}
	}
	return j
}

// numericJacobian perturbs one joint at a time by eps and restores q
// afterwards. A joint pressed against its upper limit is perturbed
// downwards instead; a joint that cannot move either way gets a zero column.
func numericJacobian(c Chain, q []float64, limits []*kinematics.Range, current geom.Pose, eps float64) (*mat.Dense, error) {
	j := mat.NewDense(6, len(q), nil)
	shifted := append([]float64(nil), q...)
	for i := range q {
		h := eps
		if r := limits[i]; r != nil && !r.Contains(q[i]+h) {
			h = -eps
			if !r.Contains(q[i] + h) {
				continue
			}
		}
		shifted[i] = q[i] + h
		if err := c.SetJointAngles(shifted); err != nil {
			return nil, fmt.Errorf("ik: perturb joint %d: %w", i, err)
		}
		v, w := geom.Diff(current, c.EndTransform())
		twist(j, i, r3.Scale(1/h, v), r3.Scale(1/h, w))
		shifted[i] = q[i]
	}
	if err := c.SetJointAngles(q); err != nil {
		return nil, fmt.Errorf("ik: restore joints: %w", err)
	}
	return j, nil
}

// dampedLeastSquares returns Jᵀ (J Jᵀ + λ² I)⁻¹ e.
func dampedLeastSquares(j *mat.Dense, e *mat.VecDense, damping float64) (*mat.VecDense, error) {
	rows, cols := j.Dims()
	var jjt mat.SymDense
	jjt.SymOuterK(1, j)
	for i := range rows {
		jjt.SetSym(i, i, jjt.At(i, i)+damping*damping)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&jjt); !ok {
		return nil, fmt.Errorf("ik: damped normal matrix is not positive definite")
	}
	var y mat.VecDense
	if err := chol.SolveVecTo(&y, e); err != nil {
		return nil, fmt.Errorf("ik: damped least squares: %w", err)
	}
	dq := mat.NewVecDense(cols, nil)
	dq.MulVec(j.T(), &y)
	return dq, nil
}
