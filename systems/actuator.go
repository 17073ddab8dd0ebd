package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/components"
	"github.com/pthm-cable/nectar/config"
	"github.com/pthm-cable/nectar/physics"
)

// ActionSize is the fixed length of the action vector.
const ActionSize = 5

// Action is one policy output: world-space move on [0:3], pitch rate target
// on [3], yaw rate target on [4]. Components are nominally in [-1, 1] but
// the applier does not clamp the move part.
type Action [ActionSize]float64

// Move returns the world-space move vector.
func (a Action) Move() r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// Actuator converts actions into forces and smoothed rotation updates.
type Actuator struct {
	MoveForce     float64
	PitchSpeed    float64 // degrees per second at full rate
	YawSpeed      float64 // degrees per second at full rate
	MaxPitch      float64 // degrees
	SmoothingRate float64 // rate units per second
}

// NewActuator builds an actuator from the agent configuration.
func NewActuator(cfg *config.Config) Actuator {
	return Actuator{
		MoveForce:     cfg.Agent.MoveForce,
		PitchSpeed:    cfg.Agent.PitchSpeed,
		YawSpeed:      cfg.Agent.YawSpeed,
		MaxPitch:      cfg.Agent.MaxPitch,
		SmoothingRate: cfg.Agent.SmoothingRate,
	}
}

// Apply applies one action for a dt-long physics sub-step: the move vector
// becomes a force on the body, and the rotation rates slew toward the action
// targets before integrating pitch and yaw. Pitch wraps once past 180 and
// clamps to +/-MaxPitch; yaw is left unbounded. Roll stays zero because the
// pose holds only (pitch, yaw) and the rotation is rebuilt from them.
func (ac Actuator) Apply(pose *components.AgentPose, steer *components.Steering, act Action, body physics.Body, dt float64) {
	body.ApplyForce(r3.Scale(ac.MoveForce, act.Move()))

	steer.SmoothPitch = MoveTowards(steer.SmoothPitch, act[3], ac.SmoothingRate*dt)
	steer.SmoothYaw = MoveTowards(steer.SmoothYaw, act[4], ac.SmoothingRate*dt)

	pitch := WrapPitch(pose.Pitch + steer.SmoothPitch*dt*ac.PitchSpeed)
	pose.Pitch = Clamp(pitch, -ac.MaxPitch, ac.MaxPitch)
	pose.Yaw += steer.SmoothYaw * dt * ac.YawSpeed
}
