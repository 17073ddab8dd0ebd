// Package physics provides the narrow physics-collaborator surface the
// environment consumes: a rigid body to push around, sphere overlap queries
// and contact delivery. The kinematic world in this package is a headless
// stand-in with those interfaces; a full engine can be slotted in behind
// them.
package physics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/components"
)

// Tag classifies the geometry behind a contact event.
type Tag uint8

const (
	TagNone Tag = iota
	TagNectar
	TagBoundary
	TagObstacle
)

// Contact is one collision or trigger-overlap event. Contacts are delivered
// synchronously from the physics step and may repeat across sub-steps while
// the overlap persists.
type Contact struct {
	Tag     Tag
	Trigger components.TriggerID // set for TagNectar
	Point   r3.Vec               // contact point on the colliding geometry
	Center  r3.Vec               // collider center (TagNectar)
	Radius  float64              // collider radius (TagNectar)
}

// Body is the agent's physical body.
type Body interface {
	Position() r3.Vec
	SetPosition(r3.Vec)
	Velocity() r3.Vec
	// ApplyForce accumulates a force for the next integration step.
	ApplyForce(r3.Vec)
	// ZeroMotion clears linear velocity and pending forces.
	ZeroMotion()
}

// OverlapTester answers whether a sphere intersects any colliding geometry.
type OverlapTester interface {
	Overlaps(center r3.Vec, radius float64) bool
}

// ClosestOnSphere returns the point of a sphere collider closest to p.
// Points inside the sphere map to themselves.
func ClosestOnSphere(center r3.Vec, radius float64, p r3.Vec) r3.Vec {
	d := r3.Sub(p, center)
	n := r3.Norm(d)
	if n <= radius {
		return p
	}
	return r3.Add(center, r3.Scale(radius/n, d))
}
