// Package sim drives the foraging environment: the agent, episode lifecycle
// and the decide/physics/contact loop.
package sim

import (
	"github.com/pthm-cable/nectar/components"
)

// Agent is the controlled flier. Its identity persists across episodes;
// per-episode fields reset at episode begin.
type Agent struct {
	Pose  components.AgentPose
	Steer components.Steering

	// NectarObtained accumulates granted nectar within one episode.
	NectarObtained float64

	frozen   bool
	training bool
}

// NewAgent creates an agent. The training flag is fixed for the agent's
// lifetime.
func NewAgent(training bool) *Agent {
	return &Agent{training: training}
}

// Training reports whether the agent runs in training mode.
func (a *Agent) Training() bool { return a.training }

// Frozen reports whether actions are currently discarded.
func (a *Agent) Frozen() bool { return a.frozen }

// Freeze pauses the agent. Only valid outside training mode; calling it
// while training is a usage error, not a recoverable condition.
func (a *Agent) Freeze() {
	if a.training {
		panic("sim: Freeze called on a training-mode agent")
	}
	a.frozen = true
}

// Unfreeze resumes the agent. Same training-mode contract as Freeze.
func (a *Agent) Unfreeze() {
	if a.training {
		panic("sim: Unfreeze called on a training-mode agent")
	}
	a.frozen = false
}

// beginEpisode resets the per-episode state.
func (a *Agent) beginEpisode() {
	a.NectarObtained = 0
	a.Steer = components.Steering{}
}
