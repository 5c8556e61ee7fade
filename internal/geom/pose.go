package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	UnitX = r3.Vec{X: 1}
	UnitY = r3.Vec{Y: 1}
	UnitZ = r3.Vec{Z: 1}
)

// Pose is a rigid transform. Rotation is kept normalized by every
// constructor and by Mul.
type Pose struct {
	Translation r3.Vec
	Rotation    quat.Number
}

func Identity() Pose {
	return Pose{Rotation: quat.Number{Real: 1}}
}

func Translation(x, y, z float64) Pose {
	return Pose{Translation: r3.Vec{X: x, Y: y, Z: z}, Rotation: quat.Number{Real: 1}}
}

// AxisAngle is a pure rotation of angle radians about axis. A zero axis
// yields the identity.
func AxisAngle(axis r3.Vec, angle float64) Pose {
	if r3.Norm(axis) == 0 {
		return Identity()
	}
	return Pose{Rotation: quat.Number(r3.NewRotation(angle, axis))}
}

// RPY builds a rotation from fixed-axis roll, pitch, yaw: Rz(yaw)·Ry(pitch)·Rx(roll).
func RPY(roll, pitch, yaw float64) Pose {
	return AxisAngle(UnitZ, yaw).Mul(AxisAngle(UnitY, pitch)).Mul(AxisAngle(UnitX, roll))
}

// Mul composes p then q: the result maps q-frame points into p's parent frame.
func (p Pose) Mul(q Pose) Pose {
	return Pose{
		Translation: r3.Add(p.Translation, p.Rotate(q.Translation)),
		Rotation:    normalize(quat.Mul(p.Rotation, q.Rotation)),
	}
}

func (p Pose) Inverse() Pose {
	inv := quat.Conj(p.Rotation)
	return Pose{
		Translation: r3.Scale(-1, r3.Rotation(inv).Rotate(p.Translation)),
		Rotation:    inv,
	}
}

// Apply maps a point from p's local frame into its parent frame.
func (p Pose) Apply(v r3.Vec) r3.Vec {
	return r3.Add(p.Translation, p.Rotate(v))
}

// Rotate applies only the rotational part, e.g. to carry a joint axis into
// the world frame.
func (p Pose) Rotate(v r3.Vec) r3.Vec {
	return r3.Rotation(p.Rotation).Rotate(v)
}

// RotationVector returns the axis scaled by the angle (the log map), with
// the angle in [0, π].
func (p Pose) RotationVector() r3.Vec {
	return rotationVector(p.Rotation)
}

// RPY returns roll, pitch and yaw such that RPY(roll, pitch, yaw) reproduces
// the rotation.
func (p Pose) RPY() (roll, pitch, yaw float64) {
	q := p.Rotation
	sinp := 2 * (q.Real*q.Jmag - q.Kmag*q.Imag)
	roll = math.Atan2(2*(q.Real*q.Imag+q.Jmag*q.Kmag), 1-2*(q.Imag*q.Imag+q.Jmag*q.Jmag))
	switch {
	case sinp >= 1:
		pitch = math.Pi / 2
	case sinp <= -1:
		pitch = -math.Pi / 2
	default:
		pitch = math.Asin(sinp)
	}
	yaw = math.Atan2(2*(q.Real*q.Kmag+q.Imag*q.Jmag), 1-2*(q.Jmag*q.Jmag+q.Kmag*q.Kmag))
	return roll, pitch, yaw
}

// Diff returns the world-frame twist that moves from onto to: the
// translation difference and the rotation vector of to·from⁻¹.
func Diff(from, to Pose) (linear, angular r3.Vec) {
	linear = r3.Sub(to.Translation, from.Translation)
	angular = rotationVector(quat.Mul(to.Rotation, quat.Conj(from.Rotation)))
	return linear, angular
}

// ApproxEqual reports whether a and b differ by at most tol in translation
// and by at most tol radians in rotation.
func ApproxEqual(a, b Pose, tol float64) bool {
	lin, ang := Diff(a, b)
	return r3.Norm(lin) <= tol && r3.Norm(ang) <= tol
}

// Matrix returns the homogeneous 4x4 matrix in row-major order.
func (p Pose) Matrix() [4][4]float64 {
	var m [4][4]float64
	cols := [3]r3.Vec{p.Rotate(UnitX), p.Rotate(UnitY), p.Rotate(UnitZ)}
	for j, c := range cols {
		m[0][j], m[1][j], m[2][j] = c.X, c.Y, c.Z
	}
	m[0][3], m[1][3], m[2][3] = p.Translation.X, p.Translation.Y, p.Translation.Z
	m[3][3] = 1
	return m
}

func (p Pose) String() string {
	r, pi, y := p.RPY()
	t := p.Translation
	return fmt.Sprintf("xyz=(%.4f, %.4f, %.4f) rpy=(%.4f, %.4f, %.4f)", t.X, t.Y, t.Z, r, pi, y)
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

func rotationVector(q quat.Number) r3.Vec {
	q = normalize(q)
	// q and -q are the same rotation; pick the short way round.
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	v := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	s := r3.Norm(v)
	if s < 1e-12 {
		return r3.Scale(2, v)
	}
	angle := 2 * math.Atan2(s, q.Real)
	return r3.Scale(angle/s, v)
}
