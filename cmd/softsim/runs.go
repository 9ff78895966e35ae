package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softsim/internal/analysis"
	"github.com/san-kum/softsim/internal/automation"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/demo"
	"github.com/san-kum/softsim/internal/export"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/storage"
	"github.com/san-kum/softsim/internal/sweep"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runHeadless(cmd *cobra.Command, args []string) error {
	var scenario *automation.Scenario
	fallback := ""
	if scenarioFile != "" {
		s, err := automation.LoadScenario(scenarioFile)
		if err != nil {
			return fmt.Errorf("failed to load scenario: %w", err)
		}
		scenario, fallback = s, s.Preset
	}

	cfg, err := resolveConfig(cmd, fallback)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	col := metrics.NewCollector()
	startMetrics(ctx, cfg, col, logger)
	rec := storage.NewRecorder()
	obs := observers(col)
	obs.Frame = append(obs.Frame, rec)

	d := demo.FromConfig(cfg, nil, nil, demo.WithLogger(logger), demo.WithObservers(obs))
	if err := d.Init(); err != nil {
		return err
	}
	rec.Attach(d.Surface())
	col.SetTopology(d.View().Particles(), d.Engine().NumTets())

	start := time.Now()
	if scenario != nil {
		if _, err := automation.RunScenario(ctx, scenario, d, logger); err != nil {
			return err
		}
	} else {
		for i := 0; i < cfg.View.Frames; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			d.Update()
		}
	}
	elapsed := time.Since(start)
	if err := rec.Err(); err != nil {
		logger.Warn("simulation diverged", zap.Error(err))
	}

	name := preset
	if name == "" {
		name = fallback
	}
	if name == "" {
		name = "default"
	}
	set := d.Params()
	meta := storage.RunMetadata{
		Name:      name,
		Dt:        d.Engine().Dt(),
		Steps:     d.Controller().Steps(),
		Particles: d.View().Particles(),
		Tets:      set.Tets,
		Solver: config.SolverConfig{
			Substeps:         set.Substeps,
			EdgeCompliance:   set.EdgeCompliance,
			VolumeCompliance: set.VolumeCompliance,
			Animate:          set.Animate,
		},
	}
	if scenario != nil {
		meta.Scenario = scenario.Name
	}
	run := rec.Run(meta)
	runID, err := st.Save(run)
	if err != nil {
		return err
	}

	logger.Info("run saved",
		zap.String("id", runID),
		zap.Int("frames", run.Meta.Frames),
		zap.Int("steps", run.Meta.Steps),
		zap.Duration("elapsed", elapsed))
	fmt.Printf("run: %s\n", runID)
	fmt.Printf("frames: %d  steps: %d  sim time: %.2fs  wall: %v\n", run.Meta.Frames, run.Meta.Steps, run.Meta.Duration, elapsed.Round(time.Millisecond))
	fmt.Printf("final height: %.4f  min height: %.4f\n", run.Meta.Metrics["final_height"], run.Meta.Metrics["min_height"])
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tSIM\tSUBSTEPS\tEDGE\tVOLUME\tSCENARIO")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%d\t%.1f\t%.1f\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Duration,
			run.Solver.Substeps,
			run.Solver.EdgeCompliance,
			run.Solver.VolumeCompliance,
			run.Scenario,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(frames))

	series := []struct {
		caption string
		value   func(storage.FrameSample) float64
	}{
		{"centroid height", func(f storage.FrameSample) float64 { return f.Centroid[1] }},
		{"min particle height", func(f storage.FrameSample) float64 { return f.MinHeight }},
		{"mean particle speed", func(f storage.FrameSample) float64 { return f.Speed }},
		{"bounding radius", func(f storage.FrameSample) float64 { return f.Radius }},
	}
	for _, s := range series {
		data := make([]float64, len(frames))
		for i, f := range frames {
			data[i] = s.value(f)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	heights := storage.Heights(frames)
	if len(heights) < 4 {
		return fmt.Errorf("not enough running frames to analyze (%d)", len(heights))
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("preset: %s\n\n", meta.Name)

	ps := analysis.PowerSpectrum(heights)
	plotData := ps[:max(2, len(ps)/4)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (centroid height)"),
	)
	fmt.Println(graph)
	fmt.Println()

	s := analysis.Summarize(heights, meta.Dt, analysis.DefaultSettleTolerance)
	fmt.Printf("height: mean %.4f  min %.4f  max %.4f  std %.4f\n", s.Mean, s.Min, s.Max, s.Std)
	fmt.Printf("dominant frequency: %.3f hz (amplitude %.4f)\n", s.DominantHz, s.Amplitude)
	if s.DominantHz > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/s.DominantHz)
	}
	if s.SettleTime >= 0 {
		fmt.Printf("settled after: %.2f s\n", s.SettleTime)
	} else {
		fmt.Println("settled after: never")
	}

	portrait := analysis.GeneratePhasePortrait(heights, meta.Dt)
	if portrait == nil {
		return nil
	}
	fmt.Println("\nphase portrait (height vs vertical velocity)")
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))

	if phaseSVG != "" {
		if err := export.WriteFile(phaseSVG, export.PhasePortraitToSVG(portrait, export.PlotOptions{})); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", phaseSVG)
	}

	return nil
}

// output opens outputPath, or stdout when it is empty.
func output() (io.Writer, func() error, error) {
	if outputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, data); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportCSV(w, data); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSUBSTEPS\tEDGE\tVOLUME\tCELLS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		c := cfg.Body.Cells
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%dx%dx%d\n",
			name, cfg.Solver.Substeps, cfg.Solver.EdgeCompliance, cfg.Solver.VolumeCompliance, c[0], c[1], c[2])
	}
	return w.Flush()
}

func benchSubsteps(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	fmt.Printf("benchmarking %d frames per case\n\n", frames)
	results, err := sweep.Run(ctx, cfg, benchSteps, sweep.Options{Frames: frames, Logger: logger})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBSTEPS\tFRAMES\tTIME\tSTEP TIME\tSTEPS/SEC\tHEIGHT\tMIN\tSPEED\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%v\t%v\t%.0f\t%.4f\t%.4f\t%.4f\t%v\n",
			r.Substeps, r.Frames, r.Elapsed.Round(time.Millisecond), r.StepTime.Round(time.Millisecond),
			r.StepsPerSec, r.FinalHeight, r.MinHeight, r.Speed, r.Stable)
	}
	return w.Flush()
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !strings.HasSuffix(outputPath, ".svg") {
		return errors.New("snapshot output must end in .svg")
	}
	svg, err := export.Snapshot(cfg, export.SnapshotOptions{
		Frames: frames,
		Cols:   svgCols,
		Rows:   svgRows,
		Theme:  cfg.View.Theme,
	}, logger)
	if err != nil {
		return err
	}
	if err := export.WriteFile(outputPath, svg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outputPath)
	return nil
}
