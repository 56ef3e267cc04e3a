// Package config loads effect configuration from YAML layered over embedded
// defaults, and holds the few settings the render loop may change at runtime.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"fire-smoke/internal/compositor"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every setting of a run.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Noise     NoiseConfig     `yaml:"noise"`
	Effect    EffectConfig    `yaml:"effect"`
	Renderer  RendererConfig  `yaml:"renderer"`
	HUD       HUDConfig       `yaml:"hud"`
	Remote    RemoteConfig    `yaml:"remote"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Title    string `yaml:"title"`
	VSync    bool   `yaml:"vsync"`
	FPSLimit int    `yaml:"fps_limit"` // 0 = uncapped
}

// NoiseConfig parameterises the lattice built at startup.
type NoiseConfig struct {
	Seed      uint32  `yaml:"seed"`
	Size      int     `yaml:"size"`
	Frequency float64 `yaml:"frequency"`
	Workers   int     `yaml:"workers"` // 1 = sequential, 0 = GOMAXPROCS
}

// EffectConfig picks a compositor preset. Keys under params override
// individual fields of that preset.
type EffectConfig struct {
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"params,omitempty"`
}

// RendererConfig selects the compositing backend.
type RendererConfig struct {
	Backend  string  `yaml:"backend"`   // "gpu" or "cpu"
	CPUScale float64 `yaml:"cpu_scale"` // raster resolution relative to the window
	Workers  int     `yaml:"workers"`   // CPU raster workers, 0 = GOMAXPROCS
}

type HUDConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RemoteConfig controls the websocket control endpoint.
type RemoteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TelemetryConfig controls the frame-timing CSV.
type TelemetryConfig struct {
	PerfCSV string  `yaml:"perf_csv"` // empty = disabled
	Window  float64 `yaml:"window"`   // seconds per row
}

const (
	BackendGPU = "gpu"
	BackendCPU = "cpu"
)

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
		// only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the effect cannot run with.
func (c *Config) Validate() error {
	if c.Window.Width < 1 || c.Window.Height < 1 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Noise.Size < 1 {
		return fmt.Errorf("noise.size must be at least 1, got %d", c.Noise.Size)
	}
	if c.Noise.Frequency <= 0 {
		return fmt.Errorf("noise.frequency must be positive, got %v", c.Noise.Frequency)
	}
	if c.Renderer.Backend != BackendGPU && c.Renderer.Backend != BackendCPU {
		return fmt.Errorf("renderer.backend must be %q or %q, got %q", BackendGPU, BackendCPU, c.Renderer.Backend)
	}
	if c.Renderer.CPUScale <= 0 || c.Renderer.CPUScale > 1 {
		return fmt.Errorf("renderer.cpu_scale must be in (0,1], got %v", c.Renderer.CPUScale)
	}
	if c.Remote.Enabled && c.Remote.Addr == "" {
		return fmt.Errorf("remote.addr is required when remote is enabled")
	}
	if _, err := c.Effect.Params(); err != nil {
		return err
	}
	return nil
}

// Params resolves the preset and applies the overrides on top of it.
func (e EffectConfig) Params() (compositor.Params, error) {
	p, err := compositor.Preset(e.Preset)
	if err != nil {
		return compositor.Params{}, fmt.Errorf("effect: %w", err)
	}
	if !e.Overrides.IsZero() {
		if err := e.Overrides.Decode(&p); err != nil {
			return compositor.Params{}, fmt.Errorf("effect.params: %w", err)
		}
	}
	if err := p.Validate(); err != nil {
		return compositor.Params{}, fmt.Errorf("effect.params: %w", err)
	}
	return p, nil
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
