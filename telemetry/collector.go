// Package telemetry collects per-episode statistics and writes experiment
// output.
package telemetry

// EpisodeRecord holds the aggregated results of one episode.
type EpisodeRecord struct {
	Episode      int     `csv:"episode"`
	Steps        int     `csv:"steps"`
	Feeds        int     `csv:"feeds"`
	Nectar       float64 `csv:"nectar"`
	Depletions   int     `csv:"depletions"`
	BoundaryHits int     `csv:"boundary_hits"`
	Reward       float64 `csv:"reward"`
}

// Collector accumulates events within one episode and produces an
// EpisodeRecord when the episode finishes.
type Collector struct {
	steps        int
	feeds        int
	depletions   int
	boundaryHits int
	reward       float64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordStep records one completed decide step.
func (c *Collector) RecordStep() {
	c.steps++
}

// RecordFeed records one qualifying feeding contact. The granted nectar
// total comes from the agent at Finish.
func (c *Collector) RecordFeed() {
	c.feeds++
}

// RecordDepletion records a flower running dry.
func (c *Collector) RecordDepletion() {
	c.depletions++
}

// RecordBoundary records a boundary collision.
func (c *Collector) RecordBoundary() {
	c.boundaryHits++
}

// RecordReward adds a drained reward delta to the episode total.
func (c *Collector) RecordReward(delta float64) {
	c.reward += delta
}

// Finish produces the episode record and resets the collector for the next
// episode.
func (c *Collector) Finish(episode, steps int, nectar float64) EpisodeRecord {
	rec := EpisodeRecord{
		Episode:      episode,
		Steps:        steps,
		Feeds:        c.feeds,
		Nectar:       nectar,
		Depletions:   c.depletions,
		BoundaryHits: c.boundaryHits,
		Reward:       c.reward,
	}
	*c = Collector{}
	return rec
}
