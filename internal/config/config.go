package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/whalefx/fountain/internal/geom"
)

// Config holds all simulation parameters. It is loaded once at startup,
// validated fatally, and never mutated afterwards.
type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Spawn      SpawnConfig      `toml:"spawn"`
	Physics    PhysicsConfig    `toml:"physics"`
	Logging    LoggingConfig    `toml:"logging"`
	Metrics    MetricsConfig    `toml:"metrics"`
}

type SimulationConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	Seed     uint64        `toml:"seed"`     // 0 = seed from wall clock at boot
	Backend  string        `toml:"backend"`  // "internal" or "delegated"
	Scenario string        `toml:"scenario"` // optional YAML emitter scenario path
}

type SpawnConfig struct {
	Interval     time.Duration `toml:"interval"`
	BatchSize    int           `toml:"batch_size"`
	Lifetime     time.Duration `toml:"lifetime"`
	InitialSpeed float64       `toml:"initial_speed"`
	Region       RegionConfig  `toml:"region"`
}

// RegionConfig bounds the spawn volume per axis.
type RegionConfig struct {
	MinX float64 `toml:"min_x"`
	MaxX float64 `toml:"max_x"`
	MinY float64 `toml:"min_y"`
	MaxY float64 `toml:"max_y"`
	MinZ float64 `toml:"min_z"`
	MaxZ float64 `toml:"max_z"`
}

// Box converts the region bounds into a geometry box.
func (r RegionConfig) Box() geom.Box {
	return geom.Box{
		Min: geom.Vec3{X: r.MinX, Y: r.MinY, Z: r.MinZ},
		Max: geom.Vec3{X: r.MaxX, Y: r.MaxY, Z: r.MaxZ},
	}
}

type PhysicsConfig struct {
	ParticleRadius    float64 `toml:"particle_radius"`
	Gravity           float64 `toml:"gravity"` // downward acceleration magnitude
	GroundHeight      float64 `toml:"ground_height"`
	Restitution       float64 `toml:"restitution"`
	HorizontalDamping float64 `toml:"horizontal_damping"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type MetricsConfig struct {
	ListenAddress string `toml:"listen_address"` // empty = exposition disabled
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Defaults returns the stock fountain: a batch of 20 particles every 100ms,
// each living 20 seconds, launched upward at 9.81 from a small box above
// the ground plane.
func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate: 16 * time.Millisecond,
			Backend:  "internal",
		},
		Spawn: SpawnConfig{
			Interval:     100 * time.Millisecond,
			BatchSize:    20,
			Lifetime:     20 * time.Second,
			InitialSpeed: 9.81,
			Region: RegionConfig{
				MinX: 1.0, MaxX: 3.0,
				MinY: 1.0, MaxY: 2.0,
				MinZ: 1.0, MaxZ: 3.0,
			},
		},
		Physics: PhysicsConfig{
			ParticleRadius:    0.25,
			Gravity:           9.81,
			GroundHeight:      0.0,
			Restitution:       0.4,
			HorizontalDamping: 0.85,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects parameter sets the simulation cannot run under. All
// violations are startup-fatal; nothing here is recoverable mid-run.
func (c *Config) Validate() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive, got %s", c.Simulation.TickRate)
	}
	switch c.Simulation.Backend {
	case "internal", "delegated":
	default:
		return fmt.Errorf("simulation.backend must be \"internal\" or \"delegated\", got %q", c.Simulation.Backend)
	}
	if c.Spawn.Interval <= 0 {
		return fmt.Errorf("spawn.interval must be positive, got %s", c.Spawn.Interval)
	}
	if c.Spawn.BatchSize <= 0 {
		return fmt.Errorf("spawn.batch_size must be positive, got %d", c.Spawn.BatchSize)
	}
	if c.Spawn.Lifetime <= 0 {
		return fmt.Errorf("spawn.lifetime must be positive, got %s", c.Spawn.Lifetime)
	}
	if c.Spawn.InitialSpeed < 0 {
		return fmt.Errorf("spawn.initial_speed must not be negative, got %g", c.Spawn.InitialSpeed)
	}
	r := c.Spawn.Region
	if r.MinX > r.MaxX || r.MinY > r.MaxY || r.MinZ > r.MaxZ {
		return fmt.Errorf("spawn.region bounds inverted: min (%g,%g,%g) max (%g,%g,%g)",
			r.MinX, r.MinY, r.MinZ, r.MaxX, r.MaxY, r.MaxZ)
	}
	if c.Physics.ParticleRadius <= 0 {
		return fmt.Errorf("physics.particle_radius must be positive, got %g", c.Physics.ParticleRadius)
	}
	if c.Physics.Gravity < 0 {
		return fmt.Errorf("physics.gravity must not be negative, got %g", c.Physics.Gravity)
	}
	if c.Physics.Restitution < 0 || c.Physics.Restitution >= 1 {
		return fmt.Errorf("physics.restitution must be in [0,1), got %g", c.Physics.Restitution)
	}
	if c.Physics.HorizontalDamping < 0 || c.Physics.HorizontalDamping > 1 {
		return fmt.Errorf("physics.horizontal_damping must be in [0,1], got %g", c.Physics.HorizontalDamping)
	}
	return nil
}
