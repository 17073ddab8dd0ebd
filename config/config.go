// Package config provides configuration loading and access for the environment.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all environment configuration parameters.
type Config struct {
	Area      AreaConfig      `yaml:"area"`
	Agent     AgentConfig     `yaml:"agent"`
	Flower    FlowerConfig    `yaml:"flower"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Placement PlacementConfig `yaml:"placement"`
	Reward    RewardConfig    `yaml:"reward"`
	Episode   EpisodeConfig   `yaml:"episode"`
	Remote    RemoteConfig    `yaml:"remote"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// AreaConfig holds the bounded foraging area and scene generation parameters.
type AreaConfig struct {
	Diameter        float64 `yaml:"diameter"`          // Nominal area diameter; also the observation distance normalizer
	Plants          int     `yaml:"plants"`            // Number of plant structures placed in a ring
	FlowersPerPlant int     `yaml:"flowers_per_plant"` // Flowers attached to each plant
	PlantRingRadius float64 `yaml:"plant_ring_radius"` // Distance of plant bases from the area origin
	PlantHeight     float64 `yaml:"plant_height"`      // Stem height; flowers attach near the top
	StemRadius      float64 `yaml:"stem_radius"`       // Collider radius of each plant stem
}

// AgentConfig holds the agent's flight and body parameters.
type AgentConfig struct {
	MoveForce     float64 `yaml:"move_force"`      // Force applied per unit of move action
	PitchSpeed    float64 `yaml:"pitch_speed"`     // Degrees per second at full pitch rate
	YawSpeed      float64 `yaml:"yaw_speed"`       // Degrees per second at full yaw rate
	MaxPitch      float64 `yaml:"max_pitch"`       // Pitch clamp in degrees
	SmoothingRate float64 `yaml:"smoothing_rate"`  // Units per second the smoothed rates may change
	BeakOffset    float64 `yaml:"beak_offset"`     // Beak tip distance along local forward
	BeakTipRadius float64 `yaml:"beak_tip_radius"` // Feeding proximity radius at the beak tip
	BodyRadius    float64 `yaml:"body_radius"`     // Agent collider radius
	Mass          float64 `yaml:"mass"`
	Drag          float64 `yaml:"drag"` // Linear drag coefficient (per second)
}

// FlowerConfig holds feedable flower parameters.
type FlowerConfig struct {
	NectarCapacity float64 `yaml:"nectar_capacity"` // Nectar each flower holds when full
	FeedAmount     float64 `yaml:"feed_amount"`     // Nectar requested per qualifying contact
	FeedOffset     float64 `yaml:"feed_offset"`     // Feeding point offset along the flower's up axis
	TriggerRadius  float64 `yaml:"trigger_radius"`  // Nectar trigger sphere radius
}

// PhysicsConfig holds integration cadence parameters.
type PhysicsConfig struct {
	DT               float64 `yaml:"dt"`                // Physics sub-step in seconds
	DecisionInterval int     `yaml:"decision_interval"` // Physics sub-steps per decide step
	Gravity          float64 `yaml:"gravity"`           // Downward acceleration (0 = hover flight)
}

// PlacementConfig holds safe placement sampling parameters.
type PlacementConfig struct {
	MaxAttempts    int     `yaml:"max_attempts"`
	SafeRadius     float64 `yaml:"safe_radius"`      // Clearance sphere around a candidate pose
	FrontMin       float64 `yaml:"front_min"`        // Min distance in front of a flower
	FrontMax       float64 `yaml:"front_max"`        // Max distance in front of a flower
	FreeHeightMin  float64 `yaml:"free_height_min"`
	FreeHeightMax  float64 `yaml:"free_height_max"`
	FreeRadiusMin  float64 `yaml:"free_radius_min"`
	FreeRadiusMax  float64 `yaml:"free_radius_max"`
	FreePitchRange float64 `yaml:"free_pitch_range"` // Pitch sampled uniformly in +/- this range
}

// RewardConfig holds reward shaping constants.
type RewardConfig struct {
	FeedBase        float64 `yaml:"feed_base"`        // Base reward per qualifying feed
	AlignBonus      float64 `yaml:"align_bonus"`      // Scale of the heading-alignment bonus
	BoundaryPenalty float64 `yaml:"boundary_penalty"` // Flat penalty on boundary contact
}

// EpisodeConfig holds episode control parameters.
type EpisodeConfig struct {
	MaxSteps int `yaml:"max_steps"` // Decide steps per training episode (0 = unlimited)
}

// RemoteConfig holds remote policy bridge timeouts.
type RemoteConfig struct {
	ReadTimeout  float64 `yaml:"read_timeout"`  // Seconds to wait for an action
	WriteTimeout float64 `yaml:"write_timeout"` // Seconds to deliver an observation
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HalfDiameter float64 // Area.Diameter / 2, the boundary half-extent
	DecideDT     float64 // Physics.DT * DecisionInterval, seconds per decide step
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.HalfDiameter = c.Area.Diameter / 2
	c.Derived.DecideDT = c.Physics.DT * float64(c.Physics.DecisionInterval)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
