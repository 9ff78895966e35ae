package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/softsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Solver.Substeps != 10 {
		t.Errorf("expected 10 substeps, got %d", cfg.Solver.Substeps)
	}
	if cfg.Solver.EdgeCompliance != 100 || cfg.Solver.VolumeCompliance != 0 {
		t.Errorf("unexpected compliances %+v", cfg.Solver)
	}
	if !cfg.Solver.Animate {
		t.Error("animate should default on")
	}
	if cfg.Scene.CameraYZ != [2]float64{1, 2} {
		t.Errorf("unexpected camera %v", cfg.Scene.CameraYZ)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"substeps low", func(c *Config) { c.Solver.Substeps = 0 }},
		{"substeps high", func(c *Config) { c.Solver.Substeps = 31 }},
		{"edge negative", func(c *Config) { c.Solver.EdgeCompliance = -1 }},
		{"volume high", func(c *Config) { c.Solver.VolumeCompliance = 501 }},
		{"no cells", func(c *Config) { c.Body.Cells[1] = 0 }},
		{"flat body", func(c *Config) { c.Body.Size[2] = 0 }},
		{"policy", func(c *Config) { c.Grab.Policy = "hover" }},
		{"fps", func(c *Config) { c.View.FPS = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "softsim.yaml")
	cfg := DefaultConfig()
	cfg.Solver.EdgeCompliance = 250
	cfg.Grab.Policy = "run"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("solver:\n  substeps: 4\n  animate: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Solver.Substeps != 4 {
		t.Errorf("expected 4 substeps, got %d", cfg.Solver.Substeps)
	}
	if cfg.View.FPS != DefaultFPS {
		t.Errorf("fps default lost: %d", cfg.View.FPS)
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("solver:\n  substeps: 90\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("jelly")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Solver.EdgeCompliance != 250 {
		t.Errorf("expected edge compliance 250, got %f", cfg.Solver.EdgeCompliance)
	}

	cfg.Solver.EdgeCompliance = 0
	if GetPreset("jelly").Solver.EdgeCompliance != 250 {
		t.Error("GetPreset returned shared state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestWatchDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "softsim.yaml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan *Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(c *Config) {
			if c.Solver.Substeps != 25 {
				return
			}
			select {
			case got <- c:
			default:
			}
		})
	}()

	cfg := DefaultConfig()
	cfg.Solver.Substeps = 25
	// Rewrite until the watcher goroutine has registered and seen a change.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case c := <-got:
			if c.Solver.EdgeCompliance != 100 {
				t.Errorf("expected edge compliance 100, got %f", c.Solver.EdgeCompliance)
			}
			cancel()
			<-done
			return
		case <-ticker.C:
			if err := Save(path, cfg); err != nil {
				t.Fatal(err)
			}
		case <-ctx.Done():
			t.Fatal("no reload delivered")
		}
	}
}
