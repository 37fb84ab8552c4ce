package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/whalefx/fountain/internal/config"
)

// Scenario is an optional YAML overlay for the emitter and physics
// parameters. Only keys present in the file override the TOML config;
// everything else keeps its configured value. Durations are strings in
// time.ParseDuration syntax ("100ms", "20s").
type Scenario struct {
	Emitter EmitterScenario  `yaml:"emitter"`
	Physics *PhysicsScenario `yaml:"physics"`
}

type EmitterScenario struct {
	Interval     string          `yaml:"interval"`
	BatchSize    *int            `yaml:"batch_size"`
	Lifetime     string          `yaml:"lifetime"`
	InitialSpeed *float64        `yaml:"initial_speed"`
	Region       *RegionScenario `yaml:"region"`
}

type RegionScenario struct {
	MinX float64 `yaml:"min_x"`
	MaxX float64 `yaml:"max_x"`
	MinY float64 `yaml:"min_y"`
	MaxY float64 `yaml:"max_y"`
	MinZ float64 `yaml:"min_z"`
	MaxZ float64 `yaml:"max_z"`
}

type PhysicsScenario struct {
	ParticleRadius    *float64 `yaml:"particle_radius"`
	Gravity           *float64 `yaml:"gravity"`
	GroundHeight      *float64 `yaml:"ground_height"`
	Restitution       *float64 `yaml:"restitution"`
	HorizontalDamping *float64 `yaml:"horizontal_damping"`
}

// LoadScenario reads an emitter scenario from path.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Apply overlays the scenario onto cfg. The merged config must be
// re-validated by the caller; a scenario can introduce violations just as
// the TOML file can.
func (sc *Scenario) Apply(cfg *config.Config) error {
	if sc.Emitter.Interval != "" {
		d, err := time.ParseDuration(sc.Emitter.Interval)
		if err != nil {
			return fmt.Errorf("scenario emitter.interval: %w", err)
		}
		cfg.Spawn.Interval = d
	}
	if sc.Emitter.BatchSize != nil {
		cfg.Spawn.BatchSize = *sc.Emitter.BatchSize
	}
	if sc.Emitter.Lifetime != "" {
		d, err := time.ParseDuration(sc.Emitter.Lifetime)
		if err != nil {
			return fmt.Errorf("scenario emitter.lifetime: %w", err)
		}
		cfg.Spawn.Lifetime = d
	}
	if sc.Emitter.InitialSpeed != nil {
		cfg.Spawn.InitialSpeed = *sc.Emitter.InitialSpeed
	}
	if r := sc.Emitter.Region; r != nil {
		cfg.Spawn.Region = config.RegionConfig{
			MinX: r.MinX, MaxX: r.MaxX,
			MinY: r.MinY, MaxY: r.MaxY,
			MinZ: r.MinZ, MaxZ: r.MaxZ,
		}
	}
	if p := sc.Physics; p != nil {
		if p.ParticleRadius != nil {
			cfg.Physics.ParticleRadius = *p.ParticleRadius
		}
		if p.Gravity != nil {
			cfg.Physics.Gravity = *p.Gravity
		}
		if p.GroundHeight != nil {
			cfg.Physics.GroundHeight = *p.GroundHeight
		}
		if p.Restitution != nil {
			cfg.Physics.Restitution = *p.Restitution
		}
		if p.HorizontalDamping != nil {
			cfg.Physics.HorizontalDamping = *p.HorizontalDamping
		}
	}
	return nil
}
