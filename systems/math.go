// Package systems contains the environment's core logic: the flower field,
// target selection, observation encoding, action application, reward shaping
// and safe placement sampling.
package systems

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Clamp clamps v between lo and hi.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 clamps v to the [0, 1] range.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// MoveTowards moves current toward target by at most maxDelta.
func MoveTowards(current, target, maxDelta float64) float64 {
	delta := target - current
	if math.Abs(delta) <= maxDelta {
		return target
	}
	if delta < 0 {
		return current - maxDelta
	}
	return current + maxDelta
}

// WrapPitch wraps a pitch angle above 180 degrees back once. Pitch stays far
// from the wrap point in normal flight; a single subtraction is enough.
func WrapPitch(deg float64) float64 {
	if deg > 180 {
		deg -= 360
	}
	return deg
}

// AxisAngle builds a unit quaternion rotating deg degrees about axis.
func AxisAngle(axis r3.Vec, deg float64) quat.Number {
	axis = r3.Unit(axis)
	half := DegToRad(deg) / 2
	s := math.Sin(half)
	return quat.Number{
		Real: math.Cos(half),
		Imag: axis.X * s,
		Jmag: axis.Y * s,
		Kmag: axis.Z * s,
	}
}

// RotFromPitchYaw builds the agent rotation from pitch and yaw in degrees.
// Frame: +Y up, +Z forward, +X right. Yaw rotates about +Y (positive turns
// the nose toward +X), pitch about the body +X axis (positive dips the nose).
// Roll is always zero.
func RotFromPitchYaw(pitchDeg, yawDeg float64) quat.Number {
	return quat.Mul(AxisAngle(r3.Vec{Y: 1}, yawDeg), AxisAngle(r3.Vec{X: 1}, pitchDeg))
}

// Rotate applies a unit quaternion rotation to a vector.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Forward returns the unit forward direction for a pitch/yaw pair in degrees.
func Forward(pitchDeg, yawDeg float64) r3.Vec {
	return Rotate(RotFromPitchYaw(pitchDeg, yawDeg), r3.Vec{Z: 1})
}

// LookPitchYaw returns the pitch and yaw (degrees) that point the forward
// axis along dir, with world up as the secondary axis (roll zero).
func LookPitchYaw(dir r3.Vec) (pitchDeg, yawDeg float64) {
	pitchDeg = RadToDeg(math.Atan2(-dir.Y, math.Hypot(dir.X, dir.Z)))
	yawDeg = RadToDeg(math.Atan2(dir.X, dir.Z))
	return pitchDeg, yawDeg
}
