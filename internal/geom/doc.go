// Package geom provides rigid transforms in 3D space.
//
// A [Pose] is a translation plus a unit quaternion rotation. Vectors are
// gonum [r3.Vec] values and rotations are gonum [quat.Number] values, so
// poses interoperate with the rest of the gonum spatial stack.
//
// Composition follows the usual frame convention: a.Mul(b) maps points
// expressed in frame b into the frame a is expressed in.
//
//	shoulder := geom.Translation(0, 0.1, 0)
//	elbow := geom.AxisAngle(geom.UnitY, 0.5)
//	world := shoulder.Mul(elbow)
//	p := world.Apply(r3.Vec{Z: -0.3})
package geom
