package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

// Nearest returns the flower with nectar whose feeding point is closest to
// point. ok is false when no flower has nectar left, the normal steady state
// of an exhausted area. Ties break on iteration order; with continuous
// positions they are measure-zero and carry no meaning.
//
// Callers re-run this at episode begin, whenever the selected flower runs
// dry, and once per decide step as a cheap safety re-check: a feeding
// contact earlier in the same physics phase may already have depleted the
// flower the agent was tracking.
func (f *FlowerField) Nearest(point r3.Vec) (ecs.Entity, bool) {
	var best ecs.Entity
	bestDist := math.Inf(1)
	found := false

	query := f.filter.Query()
	for query.Next() {
		pose, nectar, _ := query.Get()
		if nectar.Remaining <= 0 {
			continue
		}
		feed := r3.Add(pose.Center, r3.Scale(f.feedOffset, pose.Up))
		dist := r3.Norm(r3.Sub(feed, point))
		if dist < bestDist {
			bestDist = dist
			best = query.Entity()
			found = true
		}
	}
	return best, found
}
