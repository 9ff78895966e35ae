package config

import (
	"fmt"
	"os"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/params"
	"github.com/san-kum/softsim/internal/scene"
	"github.com/san-kum/softsim/internal/softbody"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS       = 60
	DefaultTheme     = "default"
	DefaultPolicy    = "pause"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultWindowW   = 1280
	DefaultWindowH   = 800
	DefaultRunFrames = 600
)

type Config struct {
	Solver  SolverConfig     `yaml:"solver"`
	Body    softbody.BoxSpec `yaml:"body"`
	Scene   scene.Config     `yaml:"scene"`
	Grab    GrabConfig       `yaml:"grab"`
	View    ViewConfig       `yaml:"view"`
	Log     LogConfig        `yaml:"log"`
	Metrics MetricsConfig    `yaml:"metrics"`
}

type SolverConfig struct {
	Substeps         int     `yaml:"substeps"`
	EdgeCompliance   float64 `yaml:"edge_compliance"`
	VolumeCompliance float64 `yaml:"volume_compliance"`
	Animate          bool    `yaml:"animate"`
}

type GrabConfig struct {
	Policy string `yaml:"policy"`
}

type ViewConfig struct {
	Theme  string `yaml:"theme"`
	FPS    int    `yaml:"fps"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Frames int    `yaml:"frames"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			Substeps:         params.DefaultSubsteps,
			EdgeCompliance:   params.DefaultEdgeCompliance,
			VolumeCompliance: params.DefaultVolumeCompliance,
			Animate:          true,
		},
		Body:  softbody.DefaultBox(),
		Scene: scene.DefaultConfig(),
		Grab:  GrabConfig{Policy: DefaultPolicy},
		View: ViewConfig{
			Theme:  DefaultTheme,
			FPS:    DefaultFPS,
			Width:  DefaultWindowW,
			Height: DefaultWindowH,
			Frames: DefaultRunFrames,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values against the panel ranges. Errors wrap
// dynamo.ErrParameterBounds.
func (c *Config) Validate() error {
	s := c.Solver
	if s.Substeps < params.MinSubsteps || s.Substeps > params.MaxSubsteps {
		return fmt.Errorf("%w: substeps %d not in [%d,%d]", dynamo.ErrParameterBounds, s.Substeps, params.MinSubsteps, params.MaxSubsteps)
	}
	if s.EdgeCompliance < 0 || s.EdgeCompliance > params.MaxCompliance {
		return fmt.Errorf("%w: edge compliance %g not in [0,%g]", dynamo.ErrParameterBounds, s.EdgeCompliance, params.MaxCompliance)
	}
	if s.VolumeCompliance < 0 || s.VolumeCompliance > params.MaxCompliance {
		return fmt.Errorf("%w: volume compliance %g not in [0,%g]", dynamo.ErrParameterBounds, s.VolumeCompliance, params.MaxCompliance)
	}
	for i, n := range c.Body.Cells {
		if n < 1 {
			return fmt.Errorf("%w: body cells[%d] = %d", dynamo.ErrParameterBounds, i, n)
		}
		if c.Body.Size[i] <= 0 {
			return fmt.Errorf("%w: body size[%d] = %g", dynamo.ErrParameterBounds, i, c.Body.Size[i])
		}
	}
	if c.Grab.Policy != "pause" && c.Grab.Policy != "run" {
		return fmt.Errorf("%w: grab policy %q", dynamo.ErrParameterBounds, c.Grab.Policy)
	}
	if c.View.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", dynamo.ErrParameterBounds, c.View.FPS)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
