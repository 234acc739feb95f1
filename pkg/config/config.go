// Package config loads and validates the YAML configuration for the
// topology viewer: engine tuning, snapshot source selection and ambient
// concerns (logging, metrics).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Engine tunes the rendering engine. All fields have working defaults; a
// zero Engine is not usable, call DefaultEngine or Load.
type Engine struct {
	// FOVDegrees is the camera's vertical field of view.
	FOVDegrees float64 `yaml:"fov_degrees"`
	// Distance is the initial camera distance from the origin.
	Distance float64 `yaml:"distance"`
	// MinDistance and MaxDistance clamp wheel zoom.
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	// ZoomStep is the multiplicative factor applied per wheel notch.
	ZoomStep float64 `yaml:"zoom_step"`

	// IdleRotation is the slow automatic yaw in radians per second while
	// the user is not dragging.
	IdleRotation float64 `yaml:"idle_rotation"`
	// InertiaDamping is the per-frame decay factor for residual drag
	// velocity, in (0,1).
	InertiaDamping float64 `yaml:"inertia_damping"`
	// DragSensitivity converts pointer pixels to radians.
	DragSensitivity float64 `yaml:"drag_sensitivity"`
	// ClickThreshold is the accumulated drag distance in pixels above
	// which a click is treated as the tail of a drag and ignored.
	ClickThreshold float64 `yaml:"click_threshold"`

	// HighlightScale is the selected body's enlargement factor.
	HighlightScale float64 `yaml:"highlight_scale"`
	// HighlightDuration is how long the selection tween runs.
	HighlightDuration time.Duration `yaml:"highlight_duration"`
	// DimOpacity is the opacity of unselected bodies while a selection
	// is active.
	DimOpacity float64 `yaml:"dim_opacity"`

	// FrameRate is the Step cadence for headless Run hosting, in frames
	// per second. Interactive hosts drive Step themselves.
	FrameRate int `yaml:"frame_rate"`
}

// Source selects and tunes the snapshot producer.
type Source struct {
	// Kind is one of "simulator", "mangos", "http".
	Kind string `yaml:"kind"`
	// Address is the mangos dial URL or the HTTP endpoint.
	Address string `yaml:"address"`
	// Interval is the simulator/poller cadence.
	Interval time.Duration `yaml:"interval"`
	// Seed makes the simulator deterministic when non-zero.
	Seed int64 `yaml:"seed"`
	// AnomalyRate is the per-tick probability a simulated device degrades.
	AnomalyRate float64 `yaml:"anomaly_rate"`
}

// Config is the root configuration document.
type Config struct {
	Engine  Engine  `yaml:"engine"`
	Source  Source  `yaml:"source"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
}

// Log configures the structured logger.
type Log struct {
	Level string `yaml:"level"`
}

// Metrics configures the Prometheus scrape endpoint. An empty listen
// address disables it.
type Metrics struct {
	Listen string `yaml:"listen"`
}

// DefaultEngine returns the engine tuning used when no file overrides it.
func DefaultEngine() Engine {
	return Engine{
		FOVDegrees:        60,
		Distance:          18,
		MinDistance:       6,
		MaxDistance:       60,
		ZoomStep:          1.1,
		IdleRotation:      0.06,
		InertiaDamping:    0.92,
		DragSensitivity:   0.008,
		ClickThreshold:    5,
		HighlightScale:    1.4,
		HighlightDuration: 300 * time.Millisecond,
		DimOpacity:        0.35,
		FrameRate:         30,
	}
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		Engine: DefaultEngine(),
		Source: Source{
			Kind:        "simulator",
			Interval:    5 * time.Second,
			AnomalyRate: 0.2,
		},
		Log:     Log{Level: "INFO"},
		Metrics: Metrics{},
	}
}

// Load reads path and merges it over the defaults. A missing file is not
// an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the YAML schema cannot express.
func (c *Config) Validate() error {
	e := &c.Engine
	if e.MinDistance <= 0 || e.MaxDistance <= e.MinDistance {
		return fmt.Errorf("invalid zoom range [%v, %v]", e.MinDistance, e.MaxDistance)
	}
	if e.Distance < e.MinDistance || e.Distance > e.MaxDistance {
		return fmt.Errorf("initial distance %v outside zoom range", e.Distance)
	}
	if e.InertiaDamping <= 0 || e.InertiaDamping >= 1 {
		return fmt.Errorf("inertia damping %v must be in (0,1)", e.InertiaDamping)
	}
	if e.ZoomStep <= 1 {
		return fmt.Errorf("zoom step %v must be > 1", e.ZoomStep)
	}
	if e.FrameRate <= 0 {
		return fmt.Errorf("frame rate %d must be positive", e.FrameRate)
	}
	switch c.Source.Kind {
	case "simulator", "mangos", "http":
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Source.Kind != "simulator" && c.Source.Address == "" {
		return fmt.Errorf("source kind %q requires an address", c.Source.Kind)
	}
	if c.Source.Interval <= 0 {
		return fmt.Errorf("source interval must be positive")
	}
	return nil
}
