package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tubedensity/config"
	"github.com/pthm-cable/tubedensity/scene"
	"github.com/pthm-cable/tubedensity/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	bandwidth := flag.Float64("bandwidth", 0, "Gaussian bandwidth override (0 = use config)")
	debug := flag.Bool("debug", false, "Log skipped frames at debug level")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := scene.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}

	if *headless {
		os.Exit(runHeadless(cfg, opts, *bandwidth, *maxFrames))
	}
	os.Exit(runWindow(cfg, opts, *bandwidth, *maxFrames))
}

// runHeadless runs the simulation without raylib and returns the exit code.
func runHeadless(cfg *config.Config, opts scene.Options, bandwidth float64, maxFrames int) int {
	s, err := scene.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		return 1
	}
	defer s.Unload()
	s.SetBandwidth(bandwidth)

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_frames", maxFrames,
	)

	for {
		if err := s.Update(); err != nil {
			slog.Error("simulation stopped", "frame", s.Frame(), "error", err)
			return 1
		}

		if maxFrames > 0 && s.Frame() >= maxFrames {
			slog.Info("max frames reached", "frame", s.Frame())
			return 0
		}
	}
}

// runWindow runs the interactive viewer and returns the exit code.
func runWindow(cfg *config.Config, opts scene.Options, bandwidth float64, maxFrames int) int {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Tube Density")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	s, err := scene.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		return 1
	}
	defer s.Unload()
	s.SetBandwidth(bandwidth)

	v := viewer.New(s, cfg)
	code := 0
	for !rl.WindowShouldClose() {
		if err := v.Update(); err != nil && code == 0 {
			// Keep the window open on the last good frame
			slog.Error("density update stopped", "frame", s.Frame(), "error", err)
			code = 1
		}
		v.Draw()

		if maxFrames > 0 && s.Frame() >= maxFrames {
			break
		}
	}
	return code
}
