package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/softsim/internal/demo"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/params"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario is a scripted sequence of frame windows.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep applies its actions in field order (reset, squash, animate,
// params) and then runs Frames display frames.
type ScenarioStep struct {
	Reset   bool               `yaml:"reset"`
	Squash  bool               `yaml:"squash"`
	Animate *bool              `yaml:"animate"`
	Params  map[string]float64 `yaml:"params"`
	Frames  int                `yaml:"frames"`
}

// StepResult reports what one step did to the frame counters.
type StepResult struct {
	Index   int
	Frames  int
	Steps   int
	Running bool
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	for i, s := range scenario.Steps {
		if s.Frames < 0 {
			return nil, fmt.Errorf("step %d: negative frame count %d", i+1, s.Frames)
		}
	}
	return &scenario, nil
}

// TotalFrames is the number of frames the scenario runs.
func (s *Scenario) TotalFrames() int {
	n := 0
	for _, step := range s.Steps {
		n += step.Frames
	}
	return n
}

// RunScenario executes all steps against an initialized demo. Every edit
// goes through the demo's panel, exactly as a UI edit would.
func RunScenario(ctx context.Context, scenario *Scenario, d *demo.Demo, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctrl := d.Controller()
	if ctrl == nil {
		return nil, demo.ErrNotInitialized
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := applyStep(d, step); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		frames, steps := ctrl.Frames(), ctrl.Steps()
		for f := 0; f < step.Frames; f++ {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			d.Update()
		}

		res := StepResult{
			Index:   i + 1,
			Frames:  ctrl.Frames() - frames,
			Steps:   ctrl.Steps() - steps,
			Running: ctrl.State() == frame.Running,
		}
		results = append(results, res)
		logger.Debug("scenario step done",
			zap.String("scenario", scenario.Name),
			zap.Int("step", res.Index),
			zap.Int("frames", res.Frames),
			zap.Int("engine_steps", res.Steps))
	}

	return results, nil
}

func applyStep(d *demo.Demo, step ScenarioStep) error {
	panel := d.Panel()
	if step.Reset {
		if err := panel.Press(params.KeyReset); err != nil {
			return err
		}
	}
	if step.Squash {
		if err := panel.Press(params.KeySquash); err != nil {
			return err
		}
	}
	if step.Animate != nil {
		if err := panel.Entry(params.KeyAnimate).SetChecked(*step.Animate); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(step.Params))
	for k := range step.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := panel.Set(k, step.Params[k]); err != nil {
			return err
		}
	}
	return nil
}
