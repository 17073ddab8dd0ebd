package systems

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/components"
)

// Registry errors. Both indicate a malformed scene rather than a transient
// condition; callers abort on them.
var (
	ErrDuplicateTrigger = errors.New("trigger already registered")
	ErrTriggerNotFound  = errors.New("trigger not registered")
)

// Plant rotation sampling ranges on area reset, in degrees.
const (
	plantTiltRange = 5.0
	plantSpinRange = 180.0
)

// Plant is a rotatable structure carrying flowers. Its rotation is
// re-sampled on every area reset, moving the attached flowers with it.
type Plant struct {
	Origin r3.Vec
	Rot    quat.Number
}

// FlowerView is a read-only snapshot of one flower's geometry.
type FlowerView struct {
	Center    r3.Vec
	Up        r3.Vec
	FeedPoint r3.Vec
}

// FlowerField owns every flower and plant in one foraging area. Flowers are
// ECS entities; the field also owns the trigger-to-flower mapping used to
// route physics contacts. The mapping is fixed in shape after registration;
// only flower contents (nectar, derived pose) mutate afterwards.
type FlowerField struct {
	world  *ecs.World
	mapper *ecs.Map4[components.Pose, components.Nectar, components.Anchor, components.Trigger]
	filter *ecs.Filter3[components.Pose, components.Nectar, components.Trigger]

	poseMap   *ecs.Map1[components.Pose]
	nectarMap *ecs.Map1[components.Nectar]
	anchorMap *ecs.Map1[components.Anchor]
	trigMap   *ecs.Map1[components.Trigger]

	byTrigger map[components.TriggerID]ecs.Entity
	plants    []Plant
	flowers   []ecs.Entity

	capacity   float64
	feedOffset float64
}

// NewFlowerField creates an empty field. capacity is the nectar each flower
// holds when full; feedOffset places the feeding point along the up axis.
func NewFlowerField(capacity, feedOffset float64) *FlowerField {
	world := ecs.NewWorld()
	return &FlowerField{
		world:     world,
		mapper:    ecs.NewMap4[components.Pose, components.Nectar, components.Anchor, components.Trigger](world),
		filter:    ecs.NewFilter3[components.Pose, components.Nectar, components.Trigger](world),
		poseMap:   ecs.NewMap1[components.Pose](world),
		nectarMap: ecs.NewMap1[components.Nectar](world),
		anchorMap: ecs.NewMap1[components.Anchor](world),
		trigMap:   ecs.NewMap1[components.Trigger](world),
		byTrigger: make(map[components.TriggerID]ecs.Entity),

		capacity:   capacity,
		feedOffset: feedOffset,
	}
}

// AddPlant registers a plant structure at origin with identity rotation and
// returns its index.
func (f *FlowerField) AddPlant(origin r3.Vec) int {
	f.plants = append(f.plants, Plant{Origin: origin, Rot: quat.Number{Real: 1}})
	return len(f.plants) - 1
}

// AddFlower attaches a flower to a plant and registers its nectar trigger.
// Returns ErrDuplicateTrigger if the trigger identifier is already taken.
func (f *FlowerField) AddFlower(plant int, localCenter, localUp r3.Vec, id components.TriggerID) (ecs.Entity, error) {
	if _, ok := f.byTrigger[id]; ok {
		return ecs.Entity{}, fmt.Errorf("%w: trigger %d", ErrDuplicateTrigger, id)
	}
	if plant < 0 || plant >= len(f.plants) {
		return ecs.Entity{}, fmt.Errorf("flower references unknown plant %d", plant)
	}

	anchor := components.Anchor{
		Plant:       plant,
		LocalCenter: localCenter,
		LocalUp:     r3.Unit(localUp),
	}
	pose := f.worldPose(anchor)
	nectar := components.Nectar{Remaining: f.capacity, Capacity: f.capacity}
	trig := components.Trigger{ID: id}

	e := f.mapper.NewEntity(&pose, &nectar, &anchor, &trig)
	f.byTrigger[id] = e
	f.flowers = append(f.flowers, e)
	return e, nil
}

// Lookup resolves a trigger identifier to its flower. An unknown identifier
// means collaborator wiring is broken and yields ErrTriggerNotFound.
func (f *FlowerField) Lookup(id components.TriggerID) (ecs.Entity, error) {
	e, ok := f.byTrigger[id]
	if !ok {
		return ecs.Entity{}, fmt.Errorf("%w: trigger %d", ErrTriggerNotFound, id)
	}
	return e, nil
}

// View returns the flower's current geometry.
func (f *FlowerField) View(e ecs.Entity) FlowerView {
	pose := f.poseMap.Get(e)
	return FlowerView{
		Center:    pose.Center,
		Up:        pose.Up,
		FeedPoint: r3.Add(pose.Center, r3.Scale(f.feedOffset, pose.Up)),
	}
}

// HasNectar reports whether the flower still has nectar. Recomputed from the
// remaining amount, never cached.
func (f *FlowerField) HasNectar(e ecs.Entity) bool {
	return f.nectarMap.Get(e).Remaining > 0
}

// Remaining returns the flower's remaining nectar.
func (f *FlowerField) Remaining(e ecs.Entity) float64 {
	return f.nectarMap.Get(e).Remaining
}

// Feed drains up to amount nectar from the flower and returns how much was
// actually granted. Granted is min(amount, remaining) and may be zero for a
// depleted flower; remaining never goes negative.
func (f *FlowerField) Feed(e ecs.Entity, amount float64) float64 {
	n := f.nectarMap.Get(e)
	granted := amount
	if granted > n.Remaining {
		granted = n.Remaining
	}
	n.Remaining -= granted
	return granted
}

// ResetFlower refills one flower and restores its pose from the current
// plant rotation.
func (f *FlowerField) ResetFlower(e ecs.Entity) {
	n := f.nectarMap.Get(e)
	n.Remaining = n.Capacity
	*f.poseMap.Get(e) = f.worldPose(*f.anchorMap.Get(e))
}

// ResetAll re-samples every plant's rotation (tilt within +/-5 degrees on x
// and z, spin within +/-180 degrees on y) and resets every flower to full
// nectar and its derived pose.
func (f *FlowerField) ResetAll(rng *rand.Rand) {
	for i := range f.plants {
		f.plants[i].Rot = samplePlantRot(rng)
	}
	for _, e := range f.flowers {
		f.ResetFlower(e)
	}
}

// Count returns the number of flowers in the field.
func (f *FlowerField) Count() int {
	return len(f.flowers)
}

// TotalNectar sums the remaining nectar across all flowers.
func (f *FlowerField) TotalNectar() float64 {
	total := 0.0
	query := f.filter.Query()
	for query.Next() {
		_, nectar, _ := query.Get()
		total += nectar.Remaining
	}
	return total
}

// RandomFlower picks a uniformly random flower. ok is false for an empty field.
func (f *FlowerField) RandomFlower(rng *rand.Rand) (ecs.Entity, bool) {
	if len(f.flowers) == 0 {
		return ecs.Entity{}, false
	}
	return f.flowers[rng.Intn(len(f.flowers))], true
}

// EachTrigger calls fn with every trigger identifier and its current feeding
// point. Used to keep the physics layer's trigger spheres in sync after a
// reset.
func (f *FlowerField) EachTrigger(fn func(id components.TriggerID, feedPoint r3.Vec)) {
	query := f.filter.Query()
	for query.Next() {
		pose, _, trig := query.Get()
		fn(trig.ID, r3.Add(pose.Center, r3.Scale(f.feedOffset, pose.Up)))
	}
}

// worldPose derives a flower's world pose from its anchor and plant rotation.
func (f *FlowerField) worldPose(a components.Anchor) components.Pose {
	p := f.plants[a.Plant]
	return components.Pose{
		Center: r3.Add(p.Origin, Rotate(p.Rot, a.LocalCenter)),
		Up:     Rotate(p.Rot, a.LocalUp),
	}
}

// samplePlantRot draws the per-reset plant rotation.
func samplePlantRot(rng *rand.Rand) quat.Number {
	tiltX := (rng.Float64()*2 - 1) * plantTiltRange
	tiltZ := (rng.Float64()*2 - 1) * plantTiltRange
	spinY := (rng.Float64()*2 - 1) * plantSpinRange

	q := quat.Mul(AxisAngle(r3.Vec{Y: 1}, spinY), AxisAngle(r3.Vec{X: 1}, tiltX))
	return quat.Mul(q, AxisAngle(r3.Vec{Z: 1}, tiltZ))
}
