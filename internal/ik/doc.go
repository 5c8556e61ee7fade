// Package ik solves inverse kinematics for a single chain with a damped
// least squares Jacobian method.
//
// Each iteration measures the 6D pose error between the chain's end
// transform and the target (translation plus rotation vector), builds the
// geometric Jacobian, and moves the joints by
//
//	dq = gain * Jᵀ (J Jᵀ + λ² I)⁻¹ e
//
// clamped to a maximum step and to the joint limits. The Jacobian is built
// analytically when the chain reports its joint axes ([AxisChain]) and by
// finite differences otherwise.
//
// # Example
//
//	solver, err := ik.New(ik.DefaultConfig(), ik.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	res, err := solver.Solve(chain, target)
//	if ik.IsNotConverged(err) {
//		// chain holds the last attempted angles
//	}
//
// # Failure
//
// A solve that runs out of iterations, or stops making progress, returns a
// [*NotConvergedError]. The chain is not rolled back: it keeps the angles of
// the last applied step. The returned [Result] is always populated.
//
// # Thread Safety
//
// A Solver holds no per-solve state and may be shared, but the chain being
// solved must not be touched by anything else during Solve.
package ik
