package components

import "gonum.org/v1/gonum/spatial/r3"

// AgentPose is the agent's position and orientation. Pitch and yaw are in
// degrees; roll is fixed at zero and the full rotation is rebuilt from
// (pitch, yaw) every tick rather than composed incrementally.
// Positive pitch dips the nose below the horizon.
type AgentPose struct {
	Pos   r3.Vec
	Pitch float64
	Yaw   float64
}

// Steering holds the smoothed rotation rates. These approach the policy's
// raw pitch/yaw rate outputs with a bounded slew, persist across ticks
// within an episode, and reset to zero at episode begin.
type Steering struct {
	SmoothPitch float64
	SmoothYaw   float64
}
