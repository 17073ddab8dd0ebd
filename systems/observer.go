package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/components"
)

// ObsSize is the fixed length of the observation vector.
const ObsSize = 10

// BeakTip returns the agent's feeding point: beakOffset along local forward.
func BeakTip(pose components.AgentPose, beakOffset float64) r3.Vec {
	return r3.Add(pose.Pos, r3.Scale(beakOffset, Forward(pose.Pitch, pose.Yaw)))
}

// Observe encodes the agent and its nearest flower into dst, which must be
// ObsSize long. Layout:
//
//	[0:4]  agent local rotation quaternion (x, y, z, w)
//	[4:7]  unit vector from beak tip to the flower's feeding point
//	[7]    dot of [4:7] with the negated flower up axis (in front of the
//	       feeding face when positive)
//	[8]    dot of the agent forward axis with the negated flower up axis
//	[9]    beak-to-feeding-point distance over the area diameter
//
// A nil flower produces the all-zero vector: the deliberate "no target"
// sentinel the policy must tolerate, not a degenerate computation.
func Observe(dst []float64, pose components.AgentPose, beakOffset, areaDiameter float64, flower *FlowerView) {
	if len(dst) != ObsSize {
		panic("observe: dst must be ObsSize long")
	}
	if flower == nil {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	q := RotFromPitchYaw(pose.Pitch, pose.Yaw)
	dst[0] = q.Imag
	dst[1] = q.Jmag
	dst[2] = q.Kmag
	dst[3] = q.Real

	toFlower := r3.Sub(flower.FeedPoint, BeakTip(pose, beakOffset))
	unitTo := r3.Unit(toFlower)
	dst[4] = unitTo.X
	dst[5] = unitTo.Y
	dst[6] = unitTo.Z

	downAxis := r3.Scale(-1, r3.Unit(flower.Up))
	dst[7] = r3.Dot(unitTo, downAxis)
	dst[8] = r3.Dot(Forward(pose.Pitch, pose.Yaw), downAxis)
	dst[9] = r3.Norm(toFlower) / areaDiameter
}
