// Package sweep benchmarks independent soft bodies across solver substep
// counts. Each case owns its engine, demo and metrics; nothing is shared
// between goroutines.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/demo"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrNoCases = errors.New("sweep: no substep counts")

type Result struct {
	Substeps    int
	Frames      int
	Particles   int
	Elapsed     time.Duration
	StepTime    time.Duration
	StepsPerSec float64
	FinalHeight float64
	MinHeight   float64
	Speed       float64
	Stable      bool
}

type Options struct {
	Frames  int
	Workers int
	Logger  *zap.Logger
}

// stepTimer sums engine step durations reported by the frame controller.
type stepTimer struct{ total time.Duration }

func (s *stepTimer) ObserveFrame(_ frame.State, step time.Duration) { s.total += step }
func (s *stepTimer) ObserveRestore(frame.Event)                     {}

// Run simulates base once per substep count, concurrently, and returns
// results in the order of substeps.
func Run(ctx context.Context, base *config.Config, substeps []int, opts Options) ([]Result, error) {
	if len(substeps) == 0 {
		return nil, ErrNoCases
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result, len(substeps))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, n := range substeps {
		cfg := base.Clone()
		cfg.Solver.Substeps = n
		cfg.Solver.Animate = true
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("substeps %d: %w", n, err)
		}
		g.Go(func() error {
			res, err := runCase(ctx, cfg, opts.Frames)
			if err != nil {
				return fmt.Errorf("substeps %d: %w", n, err)
			}
			logger.Debug("sweep case done", zap.Int("substeps", n), zap.Duration("elapsed", res.Elapsed))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runCase(ctx context.Context, cfg *config.Config, frames int) (Result, error) {
	timer := &stepTimer{}
	d := demo.FromConfig(cfg, nil, nil, demo.WithObservers(demo.Observers{Frame: []frame.Observer{timer}}))
	if err := d.Init(); err != nil {
		return Result{}, err
	}

	height := metrics.NewHeight()
	minHeight := metrics.NewMinHeight()
	speed := metrics.NewSpeed()
	stability := metrics.NewStability(metrics.DefaultStabilityBound)
	ms := []metrics.Metric{height, minHeight, speed, stability}

	ctrl := d.Controller()
	start := time.Now()
	for f := 0; f < frames; f++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		d.Update()
		pos := d.View().Floats()
		for _, m := range ms {
			m.Observe(pos, ctrl.Time())
		}
	}
	elapsed := time.Since(start)

	res := Result{
		Substeps:    cfg.Solver.Substeps,
		Frames:      ctrl.Frames(),
		Particles:   d.View().Particles(),
		Elapsed:     elapsed,
		StepTime:    timer.total,
		FinalHeight: height.Value(),
		MinHeight:   minHeight.Value(),
		Speed:       speed.Value(),
		Stable:      stability.Err() == nil,
	}
	if s := elapsed.Seconds(); s > 0 {
		res.StepsPerSec = float64(ctrl.Steps()) / s
	}
	return res, nil
}
