// Package config provides configuration loading and access for the density simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Particles ParticlesConfig `yaml:"particles"`
	Cylinder  CylinderConfig  `yaml:"cylinder"`
	Kernel    KernelConfig    `yaml:"kernel"`
	Frame     FrameConfig     `yaml:"frame"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Parallel  ParallelConfig  `yaml:"parallel"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ParticlesConfig holds particle system parameters.
type ParticlesConfig struct {
	Count        int     `yaml:"count"`         // N, fixed for the lifetime of the scene
	EmitRate     int     `yaml:"emit_rate"`     // Particles born per frame until Count is reached (0 = all at once)
	Lifetime     int     `yaml:"lifetime"`      // Frames before a particle is re-emitted
	NormalFactor float64 `yaml:"normal_factor"` // Initial speed along the emitter normal
	EmitOffset   float64 `yaml:"emit_offset"`   // Gap between the tube end and the emitter plane
}

// CylinderConfig holds hollow cylinder geometry.
type CylinderConfig struct {
	Radius      float64 `yaml:"radius"`
	Height      float64 `yaml:"height"`
	Segments    int     `yaml:"segments"`    // Vertices around the circumference before subdivision
	Rings       int     `yaml:"rings"`       // Vertex rings along the axis before subdivision (>= 2)
	Subdivision int     `yaml:"subdivision"` // Each level doubles segment and ring resolution
}

// KernelConfig holds density kernel parameters.
type KernelConfig struct {
	Type      string  `yaml:"type"`      // "gaussian" or "exponential"
	Bandwidth float64 `yaml:"bandwidth"` // Gaussian h (0 = cylinder radius / 2)
	Rate      float64 `yaml:"rate"`      // Exponential decay rate per unit distance
}

// FrameConfig holds coordinate-frame reconciliation between mesh and particles.
type FrameConfig struct {
	Remap string `yaml:"remap"` // "none" or "rot_y_90"
}

// PhysicsConfig holds particle motion parameters.
type PhysicsConfig struct {
	DT              float64 `yaml:"dt"`
	Wind            Vector  `yaml:"wind"`
	Speed           float64 `yaml:"speed"`            // Wind multiplier
	Jitter          float64 `yaml:"jitter"`           // Uniform random acceleration half-width
	Drag            float64 `yaml:"drag"`             // Velocity damping per second
	Restitution     float64 `yaml:"restitution"`      // Radial velocity kept after a wall bounce
	Turbulence      float64 `yaml:"turbulence"`       // Noise acceleration strength (0 = off)
	TurbulenceScale float64 `yaml:"turbulence_scale"` // Noise spatial frequency
	TurbulenceSpeed float64 `yaml:"turbulence_speed"` // Noise evolution per second
}

// Vector is a 3D vector in config files.
type Vector struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// ParallelConfig holds density evaluation worker settings.
type ParallelConfig struct {
	Threshold int `yaml:"threshold"` // Minimum vertex count before the worker pool is used
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Frames per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Bandwidth   float64 // Effective Gaussian bandwidth
	Segments    int     // Segments after subdivision
	Rings       int     // Rings after subdivision
	VertexCount int     // Segments * Rings
	EmitterX    float64 // Emitter plane position along the tube axis
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Parse is like Load but reads YAML overrides from memory.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Particles.Count < 0 {
		errs = append(errs, fmt.Errorf("particles.count must be >= 0, got %d", c.Particles.Count))
	}
	if c.Particles.Lifetime < 1 {
		errs = append(errs, fmt.Errorf("particles.lifetime must be >= 1, got %d", c.Particles.Lifetime))
	}
	if c.Cylinder.Radius <= 0 || c.Cylinder.Height <= 0 {
		errs = append(errs, fmt.Errorf("cylinder radius and height must be positive"))
	}
	if c.Cylinder.Segments < 3 {
		errs = append(errs, fmt.Errorf("cylinder.segments must be >= 3, got %d", c.Cylinder.Segments))
	}
	if c.Cylinder.Rings < 2 {
		errs = append(errs, fmt.Errorf("cylinder.rings must be >= 2, got %d", c.Cylinder.Rings))
	}
	if c.Cylinder.Subdivision < 0 || c.Cylinder.Subdivision > 6 {
		errs = append(errs, fmt.Errorf("cylinder.subdivision must be in [0,6], got %d", c.Cylinder.Subdivision))
	}
	switch c.Kernel.Type {
	case "gaussian":
		if c.Kernel.Bandwidth < 0 {
			errs = append(errs, fmt.Errorf("kernel.bandwidth must be >= 0, got %g", c.Kernel.Bandwidth))
		}
	case "exponential":
		if c.Kernel.Rate <= 0 {
			errs = append(errs, fmt.Errorf("kernel.rate must be positive, got %g", c.Kernel.Rate))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kernel.type %q", c.Kernel.Type))
	}
	switch c.Frame.Remap {
	case "none", "rot_y_90":
	default:
		errs = append(errs, fmt.Errorf("unknown frame.remap %q", c.Frame.Remap))
	}
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %g", c.Physics.DT))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Refresh re-validates c and recomputes derived values after fields were
// changed in code.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	// Zero bandwidth falls back to half the radius
	c.Derived.Bandwidth = c.Kernel.Bandwidth
	if c.Derived.Bandwidth == 0 {
		c.Derived.Bandwidth = c.Cylinder.Radius / 2
	}

	scale := 1 << c.Cylinder.Subdivision
	c.Derived.Segments = c.Cylinder.Segments * scale
	c.Derived.Rings = (c.Cylinder.Rings-1)*scale + 1
	c.Derived.VertexCount = c.Derived.Segments * c.Derived.Rings

	c.Derived.EmitterX = -c.Cylinder.Height/2 - c.Particles.EmitOffset
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
