package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/demo"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/grab"
	"github.com/san-kum/softsim/internal/gui"
	"github.com/san-kum/softsim/internal/logging"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/params"
	"github.com/san-kum/softsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	configFile string
	preset     string
	// solver overrides
	substeps         int
	edgeCompliance   float64
	volumeCompliance float64
	paused           bool
	policy           string
	// ambient overrides
	logLevel    string
	logFormat   string
	metricsAddr string
	theme       string
	frameRate   int
	watch       bool
	// headless
	frames       int
	scenarioFile string
	outputPath   string
	benchSteps   []int
	svgCols      int
	svgRows      int
	phaseSVG     string
)

// main registers commands and flags. With no subcommand the preset menu
// starts in the terminal.
func main() {
	rootCmd := &cobra.Command{
		Use:          "softsim",
		Short:        "tetrahedral soft-body playground",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if preset == "" && configFile == "" {
				return runMenu(cmd)
			}
			return runLive(cmd, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".softsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.IntVar(&substeps, "substeps", params.DefaultSubsteps, "solver substeps per frame")
	pf.Float64Var(&edgeCompliance, "edge-compliance", params.DefaultEdgeCompliance, "edge compliance")
	pf.Float64Var(&volumeCompliance, "volume-compliance", params.DefaultVolumeCompliance, "volume compliance")
	pf.BoolVar(&paused, "paused", false, "start with animate off")
	pf.StringVar(&policy, "grab-policy", config.DefaultPolicy, "grab policy (pause or run)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")
	pf.StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format (console or json)")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the soft body in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	liveCmd.Flags().BoolVar(&watch, "watch", false, "hot-reload solver parameters from --config")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the soft body in a window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	guiCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and record the frames",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultRunFrames, "frames to run")
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "wobble frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&phaseSVG, "svg", "", "also write the phase portrait to this svg file")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark substep counts concurrently",
		Args:  cobra.NoArgs,
		RunE:  benchSubsteps,
	}
	benchCmd.Flags().IntVar(&frames, "frames", 300, "frames per case")
	benchCmd.Flags().IntSliceVar(&benchSteps, "cases", []int{1, 5, 10, 20, 30}, "substep counts to compare")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render a frame to SVG",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	snapshotCmd.Flags().IntVar(&frames, "frames", 60, "frames to run before rendering")
	snapshotCmd.Flags().StringVarP(&outputPath, "output", "o", "snapshot.svg", "output file")
	snapshotCmd.Flags().IntVar(&svgCols, "cols", 80, "canvas columns")
	snapshotCmd.Flags().IntVar(&svgRows, "rows", 30, "canvas rows")
	snapshotCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")

	rootCmd.AddCommand(liveCmd, guiCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, presetsCmd, benchCmd, snapshotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers defaults, then a preset, then a config file, then
// explicitly set flags. fallbackPreset applies when neither --preset nor
// --config is given.
func resolveConfig(cmd *cobra.Command, fallbackPreset string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	name := preset
	if name == "" && configFile == "" {
		name = fallbackPreset
	}
	if name != "" {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("substeps") {
		cfg.Solver.Substeps = substeps
	}
	if flags.Changed("edge-compliance") {
		cfg.Solver.EdgeCompliance = edgeCompliance
	}
	if flags.Changed("volume-compliance") {
		cfg.Solver.VolumeCompliance = volumeCompliance
	}
	if flags.Changed("paused") {
		cfg.Solver.Animate = !paused
	}
	if flags.Changed("grab-policy") {
		cfg.Grab.Policy = policy
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if flags.Changed("theme") {
		cfg.View.Theme = theme
	}
	if flags.Changed("fps") {
		cfg.View.FPS = frameRate
	}
	if flags.Changed("frames") {
		cfg.View.Frames = frames
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to the data directory when the terminal is owned by the
// UI, so log lines never land on the screen.
func newLogger(cfg *config.Config, tui bool) (*zap.Logger, error) {
	output := cfg.Log.Output
	if tui && (output == "" || output == "stderr" || output == "stdout") {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, err
		}
		output = filepath.Join(dataDir, "softsim.log")
	}
	return logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: output})
}

func observers(col *metrics.Collector) demo.Observers {
	return demo.Observers{
		Frame: []frame.Observer{col},
		Edit:  []params.Observer{col.ObserveEdit},
		Grab:  []grab.Observer{col.ObserveGrab},
	}
}

// startMetrics serves col in the background when an address is configured.
func startMetrics(ctx context.Context, cfg *config.Config, col *metrics.Collector, logger *zap.Logger) {
	if cfg.Metrics.Addr == "" {
		return
	}
	go func() {
		if err := metrics.Serve(ctx, cfg.Metrics.Addr, col.Registry(), logger); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func newLive(name string, cfg *config.Config, logger *zap.Logger, col *metrics.Collector) (viz.Model, error) {
	sc := viz.NewScene(80, 30)
	d := demo.FromConfig(cfg, sc, sc, demo.WithLogger(logger), demo.WithObservers(observers(col)))
	if err := d.Init(); err != nil {
		return viz.Model{}, err
	}
	col.SetTopology(d.View().Particles(), d.Engine().NumTets())
	return viz.NewModel(d, sc, viz.Options{
		Name:     name,
		FPS:      cfg.View.FPS,
		Theme:    cfg.View.Theme,
		GIFDir:   dataDir,
		Logger:   logger,
		OnHeight: col.ObserveHeight,
	}), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	col := metrics.NewCollector()
	startMetrics(ctx, cfg, col, logger)

	name := preset
	if name == "" {
		name = "soft bodies"
	}
	m, err := newLive(name, cfg, logger, col)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if watch {
		if configFile == "" {
			return fmt.Errorf("--watch requires --config")
		}
		w, err := config.NewWatcher(configFile, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx, func(c *config.Config) { p.Send(viz.ReloadMsg{Config: c}) }); err != nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok {
		return fm.Err()
	}
	return nil
}

func runMenu(cmd *cobra.Command) error {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	col := metrics.NewCollector()
	startMetrics(ctx, cfg, col, logger)

	launch := func(name string, pc *config.Config) (viz.Model, error) {
		pc.Grab = cfg.Grab
		pc.Log = cfg.Log
		return newLive(name, pc, logger, col)
	}
	final, err := tea.NewProgram(viz.NewMenu(launch), tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(interface{ Err() error }); ok {
		return fm.Err()
	}
	return nil
}

func runGUI(cmd *cobra.Command, args []string) error {
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

	col := metrics.NewCollector()
	col.SetTopology(cfg.Body.NumParticles(), cfg.Body.NumTets())
	startMetrics(ctx, cfg, col, logger)

	return gui.Run(cfg, logger, observers(col))
}
