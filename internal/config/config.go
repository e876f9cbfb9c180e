// Package config loads runtime settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ayusman/zenparticles/internal/particle"
	"github.com/ayusman/zenparticles/internal/shape"
)

// ErrInvalid is returned by Validate for values that cannot be clamped.
var ErrInvalid = errors.New("invalid config")

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "zenparticles.toml"

// Config holds runtime configuration. Fields may be loaded from a TOML file
// and overridden by command-line flags.
type Config struct {
	Camera    CameraConfig   `toml:"camera"`
	Particles ParticleConfig `toml:"particles"`
	Window    WindowConfig   `toml:"window"`
	Tray      TrayConfig     `toml:"tray"`
	Store     StoreConfig    `toml:"store"`
}

// CameraConfig controls frame acquisition.
type CameraConfig struct {
	DeviceID        int     `toml:"device_id"`
	ActiveFPS       int     `toml:"active_fps"`
	IdleFPS         int     `toml:"idle_fps"`
	MotionThreshold float64 `toml:"motion_threshold"`
	// IdleAfterMs is how long without motion before dropping to IdleFPS.
	IdleAfterMs int `toml:"idle_after_ms"`
}

type ParticleConfig struct {
	Count     int    `toml:"count"`
	Shape     string `toml:"shape"`
	Color     string `toml:"color"`
	RenderFPS int    `toml:"render_fps"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed uint64 `toml:"seed"`
}

type WindowConfig struct {
	Enabled bool   `toml:"enabled"`
	Title   string `toml:"title"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
}

type TrayConfig struct {
	Enabled bool `toml:"enabled"`
}

// StoreConfig names the recordings database and the optional recording to
// write or replay this run.
type StoreConfig struct {
	Path   string `toml:"path"`
	Record string `toml:"record"`
	Replay string `toml:"replay"`
	Loop   bool   `toml:"loop"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			DeviceID:        0,
			ActiveFPS:       30,
			IdleFPS:         10,
			MotionThreshold: 1.0,
			IdleAfterMs:     2000,
		},
		Particles: ParticleConfig{
			Count:     shape.DefaultCount,
			Shape:     shape.Heart.String(),
			Color:     particle.DefaultColor,
			RenderFPS: 60,
		},
		Window: WindowConfig{
			Enabled: true,
			Title:   "Zen Particles",
			Width:   960,
			Height:  720,
		},
		Tray: TrayConfig{
			Enabled: true,
		},
		Store: StoreConfig{
			Path: "zenparticles.db",
		},
	}
}

// Validate clamps numeric values to safe ranges and rejects an unknown shape
// or a malformed color.
func (c *Config) Validate() error {
	if c.Camera.DeviceID < 0 {
		c.Camera.DeviceID = 0
	}
	if c.Camera.ActiveFPS <= 0 {
		c.Camera.ActiveFPS = 30
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.IdleFPS > c.Camera.ActiveFPS {
		c.Camera.IdleFPS = min(10, c.Camera.ActiveFPS)
	}
	if c.Camera.MotionThreshold <= 0 || c.Camera.MotionThreshold > 100 {
		c.Camera.MotionThreshold = 1.0
	}
	if c.Camera.IdleAfterMs <= 0 {
		c.Camera.IdleAfterMs = 2000
	}

	if c.Particles.Count <= 0 {
		c.Particles.Count = shape.DefaultCount
	}
	if c.Particles.RenderFPS <= 0 || c.Particles.RenderFPS > 240 {
		c.Particles.RenderFPS = 60
	}
	if _, err := shape.Parse(c.Particles.Shape); err != nil {
		return fmt.Errorf("%w: particles.shape: %v", ErrInvalid, err)
	}
	if _, err := particle.ParseColor(c.Particles.Color); err != nil {
		return fmt.Errorf("%w: particles.color: %v", ErrInvalid, err)
	}

	if c.Window.Width <= 0 {
		c.Window.Width = 960
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 720
	}
	if c.Window.Title == "" {
		c.Window.Title = "Zen Particles"
	}

	if c.Store.Record != "" && c.Store.Replay != "" {
		return fmt.Errorf("%w: store.record and store.replay are mutually exclusive", ErrInvalid)
	}
	if c.Store.Path == "" && (c.Store.Record != "" || c.Store.Replay != "") {
		return fmt.Errorf("%w: store.path is required to record or replay", ErrInvalid)
	}
	return nil
}

// Load reads configuration from the TOML file at path. A missing file yields
// the defaults. Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
