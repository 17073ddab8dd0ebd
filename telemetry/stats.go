package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds aggregate statistics across a run's episodes.
type Summary struct {
	Episodes int

	RewardMean float64
	RewardStd  float64
	RewardP50  float64

	NectarMean float64
	NectarMax  float64

	StepsMean float64
}

// Summarize aggregates episode records into run-level statistics.
func Summarize(records []EpisodeRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	rewards := make([]float64, len(records))
	nectar := make([]float64, len(records))
	steps := make([]float64, len(records))
	maxNectar := records[0].Nectar
	for i, r := range records {
		rewards[i] = r.Reward
		nectar[i] = r.Nectar
		steps[i] = float64(r.Steps)
		if r.Nectar > maxNectar {
			maxNectar = r.Nectar
		}
	}

	sorted := append([]float64(nil), rewards...)
	sort.Float64s(sorted)

	return Summary{
		Episodes:   len(records),
		RewardMean: stat.Mean(rewards, nil),
		RewardStd:  stat.StdDev(rewards, nil),
		RewardP50:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		NectarMean: stat.Mean(nectar, nil),
		NectarMax:  maxNectar,
		StepsMean:  stat.Mean(steps, nil),
	}
}
