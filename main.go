package main

import (
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/nectar/config"
	"github.com/pthm-cable/nectar/neural"
	"github.com/pthm-cable/nectar/remote"
	"github.com/pthm-cable/nectar/sim"
	"github.com/pthm-cable/nectar/systems"
	"github.com/pthm-cable/nectar/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	episodes := flag.Int("episodes", 10, "Number of episodes to run")
	maxSteps := flag.Int("max-steps", -1, "Decide steps per episode (-1 = use config, 0 = unlimited)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	policyKind := flag.String("policy", "ffnn", "Policy: ffnn (built-in baseline) or remote (websocket runtime)")
	listen := flag.String("listen", ":8901", "Listen address for the remote policy bridge")
	train := flag.Bool("train", true, "Run in training mode (area resets, shaped rewards)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	stepBudget := cfg.Episode.MaxSteps
	if *maxSteps >= 0 {
		stepBudget = *maxSteps
	}

	scene, err := sim.BuildScene(cfg, rng)
	if err != nil {
		slog.Error("failed to build scene", "error", err)
		os.Exit(1)
	}

	var policy sim.Policy
	switch *policyKind {
	case "ffnn":
		policy = neural.New(rng)
	case "remote":
		srv := remote.NewPolicyServer(
			*listen,
			time.Duration(cfg.Remote.ReadTimeout*float64(time.Second)),
			time.Duration(cfg.Remote.WriteTimeout*float64(time.Second)),
			logger,
		)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("policy bridge failed", "error", err)
				os.Exit(1)
			}
		}()
		slog.Info("policy bridge listening", "addr", *listen)
		policy = srv
	default:
		slog.Error("unknown policy", "policy", *policyKind)
		os.Exit(1)
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	agent := sim.NewAgent(*train)
	env := scene.NewSim(cfg, rng, agent, policy)

	slog.Info("starting run",
		"seed", rngSeed,
		"episodes", *episodes,
		"max_steps", stepBudget,
		"flowers", scene.Field.Count(),
		"training", *train,
	)

	records := make([]telemetry.EpisodeRecord, 0, *episodes)
	for ep := 0; ep < *episodes; ep++ {
		if err := env.BeginEpisode(); err != nil {
			fatal("episode begin failed", err)
		}
		for st := 0; stepBudget == 0 || st < stepBudget; st++ {
			if err := env.Step(); err != nil {
				fatal("step failed", err)
			}
		}
		rec, err := env.EndEpisode()
		if err != nil {
			fatal("episode end failed", err)
		}
		if err := om.WriteEpisode(rec); err != nil {
			fatal("telemetry write failed", err)
		}
		records = append(records, rec)

		slog.Info("episode complete",
			"episode", rec.Episode,
			"steps", rec.Steps,
			"nectar", rec.Nectar,
			"feeds", rec.Feeds,
			"depletions", rec.Depletions,
			"boundary_hits", rec.BoundaryHits,
			"reward", rec.Reward,
		)
	}

	summary := telemetry.Summarize(records)
	slog.Info("run complete",
		"episodes", summary.Episodes,
		"reward_mean", summary.RewardMean,
		"reward_std", summary.RewardStd,
		"reward_p50", summary.RewardP50,
		"nectar_mean", summary.NectarMean,
		"nectar_max", summary.NectarMax,
		"steps_mean", summary.StepsMean,
	)
}

func fatal(msg string, err error) {
	// Scene and placement sentinels point at a bad config, not a runtime
	// fault; tag them so operators know where to look.
	if errors.Is(err, systems.ErrNoSafePose) ||
		errors.Is(err, systems.ErrTriggerNotFound) ||
		errors.Is(err, systems.ErrDuplicateTrigger) {
		slog.Error(msg, "error", err, "kind", "configuration")
	} else {
		slog.Error(msg, "error", err)
	}
	os.Exit(1)
}
