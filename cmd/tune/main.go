// Command tune searches the baseline policy's weight space for parameters
// that maximize mean episode reward, using derivative-free optimization over
// headless environment runs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/nectar/config"
	"github.com/pthm-cable/nectar/neural"
	"github.com/pthm-cable/nectar/sim"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	episodes := flag.Int("episodes", 3, "Episodes per seed per evaluation")
	seeds := flag.Int("seeds", 2, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of function evaluations")
	initSeed := flag.Int64("init-seed", 1, "Seed for the initial weight vector")
	outputDir := flag.String("output", "", "Output directory for the tuned weights")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	evaluator := &evaluator{
		cfg:      cfg,
		episodes: *episodes,
		seeds:    make([]int64, *seeds),
	}
	for i := range evaluator.seeds {
		evaluator.seeds[i] = int64(i + 1)
	}

	x0 := neural.New(rand.New(rand.NewSource(*initSeed))).Weights()

	problem := optimize.Problem{Func: evaluator.Evaluate}
	settings := &optimize.Settings{FuncEvaluations: *maxEvals}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		log.Fatalf("optimization failed: %v", err)
	}

	fmt.Printf("evaluations: %d\n", result.Stats.FuncEvaluations)
	fmt.Printf("best mean reward: %.4f\n", -result.F)

	out := struct {
		MeanReward float64   `json:"mean_reward"`
		Weights    []float64 `json:"weights"`
	}{MeanReward: -result.F, Weights: result.X}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("encoding weights: %v", err)
	}
	path := filepath.Join(*outputDir, "weights.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("writing weights: %v", err)
	}
	fmt.Printf("weights written to %s\n", path)
}

// evaluator scores a weight vector by running full episodes across fixed
// seeds. Lower is better: the objective is negative mean episode reward.
type evaluator struct {
	cfg      *config.Config
	episodes int
	seeds    []int64
}

// Evaluate runs the environment with the given weights and returns the
// negative mean episode reward. Invalid weight vectors and broken runs score
// +Inf so the optimizer steps away from them.
func (e *evaluator) Evaluate(x []float64) float64 {
	policy := neural.New(rand.New(rand.NewSource(1)))
	if err := policy.SetWeights(x); err != nil {
		log.Fatalf("weight vector: %v", err)
	}

	total := 0.0
	count := 0
	for _, seed := range e.seeds {
		rng := rand.New(rand.NewSource(seed))
		scene, err := sim.BuildScene(e.cfg, rng)
		if err != nil {
			log.Fatalf("building scene: %v", err)
		}
		env := scene.NewSim(e.cfg, rng, sim.NewAgent(true), policy)

		for ep := 0; ep < e.episodes; ep++ {
			if err := env.BeginEpisode(); err != nil {
				log.Fatalf("episode begin: %v", err)
			}
			for st := 0; st < e.cfg.Episode.MaxSteps; st++ {
				if err := env.Step(); err != nil {
					log.Fatalf("step: %v", err)
				}
			}
			rec, err := env.EndEpisode()
			if err != nil {
				log.Fatalf("episode end: %v", err)
			}
			total += rec.Reward
			count++
		}
	}

	return -total / float64(count)
}
