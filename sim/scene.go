package sim

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/config"
	"github.com/pthm-cable/nectar/physics"
	"github.com/pthm-cable/nectar/systems"
)

// Scene is one bounded foraging area: the flower field, the physics world
// and the agent body, built and wired together.
type Scene struct {
	Field *systems.FlowerField
	World *physics.World
	Body  physics.Body
	// Origin is the area center on the ground plane.
	Origin r3.Vec
}

// BuildScene generates the area from configuration: plants in a ring around
// the origin, each with a stem collider and a crown of flowers, every flower
// registered with a nectar trigger. This stands in for the scene discovery
// pass; registration happens exactly once per process.
func BuildScene(cfg *config.Config, rng *rand.Rand) (*Scene, error) {
	hd := cfg.Derived.HalfDiameter
	world := physics.NewWorld(
		r3.Vec{X: -hd, Y: 0, Z: -hd},
		r3.Vec{X: hd, Y: hd, Z: hd},
		cfg.Physics.Gravity,
	)
	body := world.NewBody(cfg.Agent.BodyRadius, cfg.Agent.Mass, cfg.Agent.Drag)
	field := systems.NewFlowerField(cfg.Flower.NectarCapacity, cfg.Flower.FeedOffset)

	for p := 0; p < cfg.Area.Plants; p++ {
		angle := 2 * math.Pi * float64(p) / float64(cfg.Area.Plants)
		origin := r3.Vec{
			X: math.Cos(angle) * cfg.Area.PlantRingRadius,
			Z: math.Sin(angle) * cfg.Area.PlantRingRadius,
		}
		plant := field.AddPlant(origin)
		world.AddObstacle(r3.Add(origin, r3.Vec{Y: cfg.Area.PlantHeight / 2}), cfg.Area.StemRadius)

		for fl := 0; fl < cfg.Area.FlowersPerPlant; fl++ {
			crown := 2*math.Pi*float64(fl)/float64(cfg.Area.FlowersPerPlant) + rng.Float64()*0.3
			out := r3.Vec{X: math.Cos(crown), Z: math.Sin(crown)}

			localCenter := r3.Add(
				r3.Scale(0.4+rng.Float64()*0.1, out),
				r3.Vec{Y: cfg.Area.PlantHeight + rng.Float64()*0.2},
			)
			localUp := r3.Unit(r3.Add(r3.Scale(0.4, out), r3.Vec{Y: 1}))

			id := world.AddTrigger(r3.Vec{}, cfg.Flower.TriggerRadius)
			flower, err := field.AddFlower(plant, localCenter, localUp, id)
			if err != nil {
				return nil, fmt.Errorf("building scene: %w", err)
			}
			world.MoveTrigger(id, field.View(flower).FeedPoint)
		}
	}

	return &Scene{Field: field, World: world, Body: body}, nil
}

// NewSim builds a simulation over this scene.
func (sc *Scene) NewSim(cfg *config.Config, rng *rand.Rand, agent *Agent, policy Policy) *Sim {
	return New(cfg, rng, sc.Field, sc.World, sc.Body, agent, policy, sc.Origin)
}
