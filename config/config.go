// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Field modes.
const (
	FieldModeDiffuse = "diffuse" // coarse grid, additive deposits, blur + decay each tick
	FieldModeStamp   = "stamp"   // fine grid, deposits set a fixed value, no decay
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Field     FieldConfig     `yaml:"field"`
	Ants      AntsConfig      `yaml:"ants"`
	Steering  SteeringConfig  `yaml:"steering"`
	Camera    CameraConfig    `yaml:"camera"`
	Stream    StreamConfig    `yaml:"stream"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT    float64 `yaml:"dt"`     // fixed step used in headless mode
	MaxDT float64 `yaml:"max_dt"` // frame time cap in graphical mode (0 = uncapped)
}

// FieldConfig holds pheromone grid parameters.
type FieldConfig struct {
	Mode          string  `yaml:"mode"`           // "diffuse" or "stamp"
	Width         int     `yaml:"width"`          // cells
	Height        int     `yaml:"height"`         // cells
	CellSize      float64 `yaml:"cell_size"`      // world units per cell edge
	OriginX       float64 `yaml:"origin_x"`       // world position of cell (0,0) corner
	OriginY       float64 `yaml:"origin_y"`       //
	Centered      bool    `yaml:"centered"`       // place the grid centred on the world origin (overrides origin_x/y)
	DiffusionRate float64 `yaml:"diffusion_rate"` // fraction lost to spreading per update
	DecayRate     float64 `yaml:"decay_rate"`     // fraction lost to evaporation per update
	DepositAmount float64 `yaml:"deposit_amount"` // amount per pointer deposit event
	StampValue    float64 `yaml:"stamp_value"`    // value written by stamp-mode deposits
}

// Vec2Config is a YAML-friendly 2D vector.
type Vec2Config struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Vec returns the vector as an r2.Vec.
func (v Vec2Config) Vec() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

// AntsConfig holds ant creation parameters.
type AntsConfig struct {
	Count           int        `yaml:"count"`
	SpawnX          float64    `yaml:"spawn_x"`
	SpawnY          float64    `yaml:"spawn_y"`
	SpawnRadius     float64    `yaml:"spawn_radius"` // 0 = all ants at the spawn point
	BodySize        float64    `yaml:"body_size"`
	MaxSpeed        float64    `yaml:"max_speed"`
	MaxForce        float64    `yaml:"max_force"`
	InitialVelocity Vec2Config `yaml:"initial_velocity"`
	LeftAntenna     Vec2Config `yaml:"left_antenna"`  // body-local, x forward
	RightAntenna    Vec2Config `yaml:"right_antenna"` // body-local, x forward
	Target          Vec2Config `yaml:"target"`        // initial seek target
	SeekTarget      bool       `yaml:"seek_target"`   // seek the initial target from spawn
	SeekCursor      bool       `yaml:"seek_cursor"`   // cursor reports retarget every ant
}

// SteeringConfig holds steering execution parameters.
type SteeringConfig struct {
	ParallelThreshold int `yaml:"parallel_threshold"` // ant count at which steering fans out (0 = never)
}

// CameraConfig holds viewport parameters.
type CameraConfig struct {
	Zoom    float64 `yaml:"zoom"`
	MinZoom float64 `yaml:"min_zoom"`
	MaxZoom float64 `yaml:"max_zoom"`
}

// StreamConfig holds websocket streaming parameters.
type StreamConfig struct {
	Addr          string `yaml:"addr"`           // listen address, empty disables streaming
	FrameInterval int    `yaml:"frame_interval"` // ticks between broadcast frames
	FieldFrames   bool   `yaml:"field_frames"`   // include the grid in frames
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	FieldOrigin  r2.Vec  // world position of cell (0,0) corner
	FieldWorldW  float64 // Field.Width * Field.CellSize
	FieldWorldH  float64 // Field.Height * Field.CellSize
	LeftAntenna  r2.Vec
	RightAntenna r2.Vec
	ScreenW32    float32
	ScreenH32    float32
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

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve validates c and recomputes derived values. Call it again after
// editing a loaded config in code.
func (c *Config) Resolve() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.computeDerived()
	return nil
}

// Validate checks construction-time parameters. Diffusion and decay rates
// are deliberately not range-checked.
func (c *Config) Validate() error {
	switch c.Field.Mode {
	case FieldModeDiffuse, FieldModeStamp:
	default:
		return fmt.Errorf("field.mode %q: want %q or %q", c.Field.Mode, FieldModeDiffuse, FieldModeStamp)
	}
	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		return fmt.Errorf("field size %dx%d: dimensions must be positive", c.Field.Width, c.Field.Height)
	}
	if c.Field.CellSize <= 0 {
		return fmt.Errorf("field.cell_size %v: must be positive", c.Field.CellSize)
	}
	if c.Ants.MaxSpeed <= 0 {
		return fmt.Errorf("ants.max_speed %v: must be positive", c.Ants.MaxSpeed)
	}
	if c.Ants.MaxForce <= 0 {
		return fmt.Errorf("ants.max_force %v: must be positive", c.Ants.MaxForce)
	}
	if c.Ants.Count < 0 {
		return fmt.Errorf("ants.count %d: must not be negative", c.Ants.Count)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt %v: must be positive", c.Physics.DT)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.FieldWorldW = float64(c.Field.Width) * c.Field.CellSize
	c.Derived.FieldWorldH = float64(c.Field.Height) * c.Field.CellSize

	c.Derived.FieldOrigin = r2.Vec{X: c.Field.OriginX, Y: c.Field.OriginY}
	if c.Field.Centered {
		c.Derived.FieldOrigin = r2.Vec{X: -c.Derived.FieldWorldW / 2, Y: -c.Derived.FieldWorldH / 2}
	}

	c.Derived.LeftAntenna = c.Ants.LeftAntenna.Vec()
	c.Derived.RightAntenna = c.Ants.RightAntenna.Vec()

	// Antenna geometry defaults to the body-size proportions when unset
	zero := Vec2Config{}
	if c.Ants.LeftAntenna == zero && c.Ants.RightAntenna == zero {
		c.Derived.LeftAntenna = r2.Vec{X: c.Ants.BodySize * 1.25, Y: c.Ants.BodySize * 0.5}
		c.Derived.RightAntenna = r2.Vec{X: c.Ants.BodySize * 1.25, Y: -c.Ants.BodySize * 0.5}
	}

	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
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
