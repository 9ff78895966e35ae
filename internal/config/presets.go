package config

import "sort"

// Presets are named solver and body setups.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"jelly": withSolver(SolverConfig{
		Substeps: 10, EdgeCompliance: 250, VolumeCompliance: 20, Animate: true,
	}),
	"stiff": withSolver(SolverConfig{
		Substeps: 20, EdgeCompliance: 0, VolumeCompliance: 0, Animate: true,
	}),
	"wobbly": withSolver(SolverConfig{
		Substeps: 5, EdgeCompliance: 500, VolumeCompliance: 100, Animate: true,
	}),
	"fine": func() *Config {
		cfg := withSolver(SolverConfig{
			Substeps: 15, EdgeCompliance: 100, VolumeCompliance: 0, Animate: true,
		})
		cfg.Body.Cells = [3]int{6, 6, 6}
		return cfg
	}(),
}

func withSolver(s SolverConfig) *Config {
	cfg := DefaultConfig()
	cfg.Solver = s
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
