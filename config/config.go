// Package config provides configuration loading and validation for the
// simulation. Every field is optional in user files; embedded defaults fill
// the rest. Constraint violations are reported once, at load time, naming
// the offending field — a loaded configuration never fails mid-simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/swarm/sim"
	"github.com/pthm-cable/swarm/vec"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters. One Config per host
// driver; engines receive their sections by value at construction, so
// multiple independent simulations can coexist.
type Config struct {
	Particles ParticlesConfig `yaml:"particles"`
	Flock     FlockConfig     `yaml:"flock"`
	Step      StepConfig      `yaml:"step"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// BoxConfig is an axis-aligned min/max range.
type BoxConfig struct {
	Min vec.V3 `yaml:"min"`
	Max vec.V3 `yaml:"max"`
}

// ParticlesConfig holds particle lifecycle parameters.
type ParticlesConfig struct {
	Count    int       `yaml:"count"`
	Bounds   BoxConfig `yaml:"bounds"`
	Lifetime float64   `yaml:"lifetime"`
	Gravity  vec.V3    `yaml:"gravity"`
	Velocity BoxConfig `yaml:"velocity"` // initial/respawn velocity range
}

// FlockConfig holds boid steering parameters.
type FlockConfig struct {
	Count            int     `yaml:"count"`
	PerceptionRadius float64 `yaml:"perception_radius"`
	Separation       float64 `yaml:"separation"`
	Alignment        float64 `yaml:"alignment"`
	Cohesion         float64 `yaml:"cohesion"`
	MaxSpeed         float64 `yaml:"max_speed"`
	MaxForce         float64 `yaml:"max_force"`
	WorldBound       float64 `yaml:"world_bound"` // world half-extent
}

// StepConfig holds tick timing parameters.
type StepConfig struct {
	DT float64 `yaml:"dt"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // seconds of sim time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // ticks averaged per perf report
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32        float32            // Step.DT as float32
	ParticleCfg sim.ParticleConfig // engine-ready particle section
	FlockCfg    sim.FlockConfig    // engine-ready flock section
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The returned Config has
// been validated and its derived block computed.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every constraint the engines will rely on. The per-engine
// sections delegate to the engine config validators so the rules live in
// one place.
func (c *Config) Validate() error {
	if err := c.Derived.ParticleCfg.Validate(); err != nil {
		return fmt.Errorf("particles: %w", err)
	}
	if err := c.Derived.FlockCfg.Validate(); err != nil {
		return fmt.Errorf("flock: %w", err)
	}
	if c.Step.DT <= 0 {
		return fmt.Errorf("step: %w: dt must be > 0, got %v", sim.ErrInvalidConfig, c.Step.DT)
	}
	if c.Telemetry.StatsWindow <= 0 {
		return fmt.Errorf("telemetry: %w: stats_window must be > 0, got %v", sim.ErrInvalidConfig, c.Telemetry.StatsWindow)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Step.DT)

	c.Derived.ParticleCfg = sim.ParticleConfig{
		Count:       c.Particles.Count,
		BoundsMin:   c.Particles.Bounds.Min,
		BoundsMax:   c.Particles.Bounds.Max,
		Lifetime:    float32(c.Particles.Lifetime),
		Gravity:     c.Particles.Gravity,
		VelocityMin: c.Particles.Velocity.Min,
		VelocityMax: c.Particles.Velocity.Max,
	}

	c.Derived.FlockCfg = sim.FlockConfig{
		Count:            c.Flock.Count,
		PerceptionRadius: float32(c.Flock.PerceptionRadius),
		Separation:       float32(c.Flock.Separation),
		Alignment:        float32(c.Flock.Alignment),
		Cohesion:         float32(c.Flock.Cohesion),
		MaxSpeed:         float32(c.Flock.MaxSpeed),
		MaxForce:         float32(c.Flock.MaxForce),
		WorldBound:       float32(c.Flock.WorldBound),
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
