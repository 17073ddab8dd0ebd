// Package components defines the data components of the foraging environment.
package components

import "gonum.org/v1/gonum/spatial/r3"

// TriggerID identifies a nectar trigger collider registered with the physics
// layer. IDs are handed out at registration and are unique per flower.
type TriggerID int32

// Pose is a flower's world pose. Center is the flower head position; Up is
// the unit feeding axis. The feeding point sits at Center + Up*feedOffset.
type Pose struct {
	Center r3.Vec
	Up     r3.Vec
}

// Nectar is a flower's depletable nectar store. Remaining never goes below
// zero; a flower has nectar while Remaining > 0.
type Nectar struct {
	Remaining float64
	Capacity  float64
}

// Anchor ties a flower to its plant structure. Local coordinates are relative
// to the plant origin and rotate with it on area reset.
type Anchor struct {
	Plant       int // Index into the field's plant list
	LocalCenter r3.Vec
	LocalUp     r3.Vec
}

// Trigger holds the flower's nectar trigger identifier.
type Trigger struct {
	ID TriggerID
}
