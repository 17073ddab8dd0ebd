package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/config"
)

// Rewards computes the shaped training rewards.
type Rewards struct {
	FeedBase        float64
	AlignBonus      float64
	BoundaryPenalty float64
}

// NewRewards builds the reward constants from configuration.
func NewRewards(cfg *config.Config) Rewards {
	return Rewards{
		FeedBase:        cfg.Reward.FeedBase,
		AlignBonus:      cfg.Reward.AlignBonus,
		BoundaryPenalty: cfg.Reward.BoundaryPenalty,
	}
}

// Feed returns the reward for one qualifying feeding contact: a base amount
// plus a bonus for diving along the flower's feeding axis. flower may be nil
// when no target is selected; the bonus is then skipped, not faulted.
func (r Rewards) Feed(forward r3.Vec, flower *FlowerView) float64 {
	bonus := 0.0
	if flower != nil {
		bonus = Clamp01(r3.Dot(r3.Unit(forward), r3.Scale(-1, r3.Unit(flower.Up))))
	}
	return r.FeedBase + r.AlignBonus*bonus
}

// Boundary returns the flat penalty for colliding with the area boundary.
func (r Rewards) Boundary() float64 {
	return r.BoundaryPenalty
}
