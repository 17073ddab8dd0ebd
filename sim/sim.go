package sim

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/components"
	"github.com/pthm-cable/nectar/config"
	"github.com/pthm-cable/nectar/physics"
	"github.com/pthm-cable/nectar/systems"
	"github.com/pthm-cable/nectar/telemetry"
)

// Policy consumes an observation vector plus the reward accumulated since
// the previous delivery, and returns the next action. done marks the final
// delivery of an episode; the action returned for it is discarded.
type Policy interface {
	Act(obs []float64, reward float64, done bool) (systems.Action, error)
}

// Sim couples the agent, flower field, physics and policy into the episodic
// decide loop. Call order per episode: BeginEpisode, then Step repeatedly,
// then EndEpisode.
type Sim struct {
	cfg    *config.Config
	rng    *rand.Rand
	field  *systems.FlowerField
	world  *physics.World
	body   physics.Body
	agent  *Agent
	policy Policy

	actuator  systems.Actuator
	rewards   systems.Rewards
	sampler   *systems.PlacementSampler
	collector *telemetry.Collector

	// Non-owning nearest-flower reference, re-resolved every decide step.
	nearest    ecs.Entity
	hasNearest bool

	// Reward accumulated since the last policy delivery. Contacts add to it
	// across however many physics sub-steps run between decides; Step drains
	// it when handing observations to the policy.
	reward float64

	episode int
	step    int
	obs     [systems.ObsSize]float64
}

// New wires up a simulation. origin is the area center the placement
// sampler works from.
func New(cfg *config.Config, rng *rand.Rand, field *systems.FlowerField, world *physics.World, body physics.Body, agent *Agent, policy Policy, origin r3.Vec) *Sim {
	return &Sim{
		cfg:       cfg,
		rng:       rng,
		field:     field,
		world:     world,
		body:      body,
		agent:     agent,
		policy:    policy,
		actuator:  systems.NewActuator(cfg),
		rewards:   systems.NewRewards(cfg),
		sampler:   systems.NewPlacementSampler(rng, world, origin, cfg.Placement),
		collector: telemetry.NewCollector(),
	}
}

// Agent returns the controlled agent.
func (s *Sim) Agent() *Agent { return s.agent }

// Episode returns the current episode number, starting at 1 after the first
// BeginEpisode.
func (s *Sim) Episode() int { return s.episode }

// BeginEpisode resets the environment for a fresh episode: in training mode
// the whole area is reset and the placement strategy is a coin flip between
// spawning in front of a random flower and free placement; outside training
// the agent always starts in front of a flower. A placement failure is a
// fatal configuration error.
func (s *Sim) BeginEpisode() error {
	if s.agent.Training() {
		s.field.ResetAll(s.rng)
		s.syncTriggers()
	}
	s.agent.beginEpisode()
	s.body.ZeroMotion()

	inFront := true
	if s.agent.Training() {
		inFront = s.rng.Float64() < 0.5
	}

	var (
		pose components.AgentPose
		err  error
	)
	if inFront {
		pose, err = s.sampler.InFront(s.field)
	} else {
		pose, err = s.sampler.Free()
	}
	if err != nil {
		return fmt.Errorf("begin episode: %w", err)
	}
	s.agent.Pose = pose
	s.body.SetPosition(pose.Pos)

	s.refreshNearest()
	s.reward = 0
	s.step = 0
	s.episode++
	return nil
}

// Step runs one decide step: re-check the nearest flower, deliver the
// observation and accumulated reward to the policy, then apply the returned
// action over the configured number of physics sub-steps, dispatching
// contacts as they happen. A frozen agent silently discards the action.
func (s *Sim) Step() error {
	s.refreshNearest()
	s.encodeObs()

	act, err := s.policy.Act(s.obs[:], s.drainReward(), false)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	dt := s.cfg.Physics.DT
	for i := 0; i < s.cfg.Physics.DecisionInterval; i++ {
		if !s.agent.Frozen() {
			s.actuator.Apply(&s.agent.Pose, &s.agent.Steer, act, s.body, dt)
		}
		contacts := s.world.Step(dt)
		s.agent.Pose.Pos = s.body.Position()
		for _, ev := range contacts {
			if err := s.OnContact(ev); err != nil {
				return err
			}
		}
	}

	s.step++
	s.collector.RecordStep()
	return nil
}

// EndEpisode delivers the final observation and reward to the policy and
// returns the episode's telemetry record.
func (s *Sim) EndEpisode() (telemetry.EpisodeRecord, error) {
	s.refreshNearest()
	s.encodeObs()
	if _, err := s.policy.Act(s.obs[:], s.drainReward(), true); err != nil {
		return telemetry.EpisodeRecord{}, fmt.Errorf("policy: %w", err)
	}
	return s.collector.Finish(s.episode, s.step, s.agent.NectarObtained), nil
}

// OnContact routes one physics contact. Nectar overlaps feed and reward;
// boundary hits penalize in training mode; obstacles carry no reward
// semantics.
func (s *Sim) OnContact(ev physics.Contact) error {
	switch ev.Tag {
	case physics.TagNectar:
		return s.onNectar(ev)
	case physics.TagBoundary:
		if s.agent.Training() {
			s.reward += s.rewards.Boundary()
			s.collector.RecordBoundary()
		}
	}
	return nil
}

// onNectar handles a trigger overlap with a flower's nectar collider. The
// contact only qualifies as feeding when the beak tip is within the feeding
// proximity radius of the collider's closest point.
func (s *Sim) onNectar(ev physics.Contact) error {
	flower, err := s.field.Lookup(ev.Trigger)
	if err != nil {
		return fmt.Errorf("contact: %w", err)
	}

	beak := systems.BeakTip(s.agent.Pose, s.cfg.Agent.BeakOffset)
	closest := physics.ClosestOnSphere(ev.Center, ev.Radius, beak)
	if r3.Norm(r3.Sub(beak, closest)) >= s.cfg.Agent.BeakTipRadius {
		return nil
	}

	granted := s.field.Feed(flower, s.cfg.Flower.FeedAmount)
	s.agent.NectarObtained += granted
	s.collector.RecordFeed()

	if s.agent.Training() {
		var view *systems.FlowerView
		if s.hasNearest {
			v := s.field.View(s.nearest)
			view = &v
		}
		forward := systems.Forward(s.agent.Pose.Pitch, s.agent.Pose.Yaw)
		s.reward += s.rewards.Feed(forward, view)
	}

	if !s.field.HasNectar(flower) {
		s.collector.RecordDepletion()
		s.refreshNearest()
	}
	return nil
}

// refreshNearest re-resolves the nearest-flower reference from the beak tip.
func (s *Sim) refreshNearest() {
	beak := systems.BeakTip(s.agent.Pose, s.cfg.Agent.BeakOffset)
	s.nearest, s.hasNearest = s.field.Nearest(beak)
}

// encodeObs fills the observation buffer for the current state.
func (s *Sim) encodeObs() {
	var view *systems.FlowerView
	if s.hasNearest {
		v := s.field.View(s.nearest)
		view = &v
	}
	systems.Observe(s.obs[:], s.agent.Pose, s.cfg.Agent.BeakOffset, s.cfg.Area.Diameter, view)
}

// drainReward returns the accumulated reward and resets the accumulator.
func (s *Sim) drainReward() float64 {
	r := s.reward
	s.reward = 0
	s.collector.RecordReward(r)
	return r
}

// syncTriggers moves the physics trigger spheres to the flowers' feeding
// points after an area reset.
func (s *Sim) syncTriggers() {
	s.field.EachTrigger(s.world.MoveTrigger)
}
