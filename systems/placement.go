package systems

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/components"
	"github.com/pthm-cable/nectar/config"
	"github.com/pthm-cable/nectar/physics"
)

// ErrNoSafePose means rejection sampling exhausted its attempt budget. That
// signals a malformed or overcrowded scene, not a transient condition, so
// callers abort the run.
var ErrNoSafePose = errors.New("no safe placement pose found")

// PlacementSampler rejection-samples spawn poses that are free of overlap
// with scene geometry.
type PlacementSampler struct {
	rng     *rand.Rand
	overlap physics.OverlapTester
	origin  r3.Vec
	cfg     config.PlacementConfig
}

// NewPlacementSampler creates a sampler for the area centered at origin.
func NewPlacementSampler(rng *rand.Rand, overlap physics.OverlapTester, origin r3.Vec, cfg config.PlacementConfig) *PlacementSampler {
	return &PlacementSampler{rng: rng, overlap: overlap, origin: origin, cfg: cfg}
}

// InFront samples a pose a short distance in front of a random flower's
// feeding face, looking at the flower's center.
func (s *PlacementSampler) InFront(field *FlowerField) (components.AgentPose, error) {
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		flower, ok := field.RandomFlower(s.rng)
		if !ok {
			break
		}
		view := field.View(flower)

		dist := s.uniform(s.cfg.FrontMin, s.cfg.FrontMax)
		pos := r3.Add(view.FeedPoint, r3.Scale(dist, view.Up))

		if s.overlap.Overlaps(pos, s.cfg.SafeRadius) {
			continue
		}

		pitch, yaw := LookPitchYaw(r3.Sub(view.Center, pos))
		return components.AgentPose{Pos: pos, Pitch: pitch, Yaw: yaw}, nil
	}
	return components.AgentPose{}, fmt.Errorf("%w: after %d attempts in front of a flower", ErrNoSafePose, s.cfg.MaxAttempts)
}

// Free samples a pose anywhere in the area: a random height above the
// origin, a random distance out along a random azimuth, with a random
// (pitch, yaw) orientation.
func (s *PlacementSampler) Free() (components.AgentPose, error) {
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		height := s.uniform(s.cfg.FreeHeightMin, s.cfg.FreeHeightMax)
		radius := s.uniform(s.cfg.FreeRadiusMin, s.cfg.FreeRadiusMax)
		azimuth := s.uniform(-180, 180)

		out := Rotate(AxisAngle(r3.Vec{Y: 1}, azimuth), r3.Vec{Z: 1})
		pos := r3.Add(s.origin, r3.Add(r3.Vec{Y: height}, r3.Scale(radius, out)))

		if s.overlap.Overlaps(pos, s.cfg.SafeRadius) {
			continue
		}

		return components.AgentPose{
			Pos:   pos,
			Pitch: s.uniform(-s.cfg.FreePitchRange, s.cfg.FreePitchRange),
			Yaw:   s.uniform(-180, 180),
		}, nil
	}
	return components.AgentPose{}, fmt.Errorf("%w: after %d free attempts", ErrNoSafePose, s.cfg.MaxAttempts)
}

func (s *PlacementSampler) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
