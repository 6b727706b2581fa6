package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lao-tseu-is-alive/go-flocking/internal/viewer"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/simulation"
)

const (
	minWindowSide  = 400
	maxWindowSide  = 1000
	volumetricSide = 800
	defaultTicks   = 1000
)

func main() {
	var (
		configPath = flag.String("config", "", "JSON or YAML configuration file (overrides -preset)")
		preset     = flag.String("preset", simulation.PresetPlanar, "preset: planar, planar-wrap or volumetric")
		seed       = flag.Int64("seed", -1, "random seed (overrides the configuration when >= 0)")
		mode       = flag.String("mode", "", "update mode: sequential or simultaneous (overrides the configuration)")
		headless   = flag.Bool("headless", false, "run without a window and print the final state digest")
		ticks      = flag.Uint64("ticks", defaultTicks, "number of ticks to run in headless mode")
		report     = flag.Uint64("report", 0, "log stats every N ticks in headless mode (0 disables)")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(*configPath, *preset)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if *seed >= 0 {
		cfg.Seed = uint64(*seed)
	}
	if *mode != "" {
		cfg.UpdateMode = *mode
	}

	flock, err := simulation.NewFlock(cfg, simulation.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to create flock", zap.Error(err))
	}

	if *headless {
		runHeadless(flock, *ticks, *report, logger)
		return
	}
	if err := runWindow(flock, *debug, logger); err != nil {
		logger.Fatal("viewer stopped", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      debug,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    !debug,
	}
	return config.Build()
}

func loadConfig(path, preset string) (*simulation.Config, error) {
	if path != "" {
		return simulation.LoadConfig(path)
	}
	return simulation.PresetConfig(preset)
}

func runHeadless(flock *simulation.Flock, ticks, report uint64, logger *zap.Logger) {
	var degenerate, jittered int
	for t := uint64(1); t <= ticks; t++ {
		flock.Step()
		stats := flock.Stats()
		degenerate += stats.Degenerate
		jittered += stats.Jittered
		if report > 0 && t%report == 0 {
			logger.Info("progress",
				zap.Uint64("tick", t),
				zap.Int("degenerate", degenerate),
				zap.Int("jittered", jittered),
			)
		}
	}
	fmt.Printf("tick=%d boids=%d degenerate=%d jittered=%d digest=%016x\n",
		flock.Tick(), flock.Len(), degenerate, jittered, flock.Digest())
}

func runWindow(flock *simulation.Flock, debug bool, logger *zap.Logger) error {
	ctx := context.Background()

	var actorLogger golog.Logger = golog.DiscardLogger
	if debug {
		actorLogger = golog.DefaultLogger
	}
	system, err := actor.NewActorSystem("FlockWorld",
		actor.WithLogger(actorLogger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}
	defer func() { _ = system.Stop(ctx) }()

	cfg := flock.Config()
	w, h := windowSize(cfg)
	game, err := viewer.NewGame(ctx, system, flock, w, h, logger)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(fmt.Sprintf("Flock: %s (%d boids)", cfg.Preset, flock.Len()))
	return ebiten.RunGame(game)
}

// windowSize keeps the aspect ratio of planar worlds, at one pixel per unit
// when the longest side fits in [minWindowSide, maxWindowSide]. Volumetric
// worlds get a square view.
func windowSize(cfg simulation.Config) (int, int) {
	if cfg.Dimensions == 3 {
		return volumetricSide, volumetricSide
	}
	w, h := cfg.World.Span(0), cfg.World.Span(1)
	longest := max(w, h)
	scale := min(max(longest, minWindowSide), maxWindowSide) / longest
	return int(w * scale), int(h * scale)
}
