package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"runtime"
	"time"

	"fire-smoke/internal/config"
	"fire-smoke/internal/noise"
	"fire-smoke/internal/remote"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// glfw and GL calls must stay on the main thread
	runtime.LockOSThread()
}

type options struct {
	configPath  string
	seed        int64
	backend     string
	preset      string
	logJSON     bool
	debug       bool
	dumpConfig  string
	snapshotDir string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.Int64Var(&opts.seed, "seed", -1, "Noise seed (-1 = use config)")
	flag.StringVar(&opts.backend, "backend", "", "Compositing backend: gpu or cpu (empty = use config)")
	flag.StringVar(&opts.preset, "preset", "", "Effect preset (empty = use config)")
	flag.BoolVar(&opts.logJSON, "log-json", false, "Log JSON instead of text")
	flag.BoolVar(&opts.debug, "debug", false, "Log per-window frame timings")
	flag.StringVar(&opts.dumpConfig, "dump-config", "", "Write the resolved config to this path and exit")
	flag.StringVar(&opts.snapshotDir, "snapshot-dir", ".", "Directory for P key snapshots")
	flag.Parse()

	setupLogging(opts.logJSON, opts.debug)

	if err := run(opts); err != nil {
		slog.Error("fire exited", "error", err)
		os.Exit(1)
	}
}

func setupLogging(jsonOutput, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the config file and layers the command line on top.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.seed >= 0 {
		cfg.Noise.Seed = uint32(opts.seed)
	}
	if opts.backend != "" {
		cfg.Renderer.Backend = opts.backend
	}
	if opts.preset != "" {
		cfg.Effect.Preset = opts.preset
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.dumpConfig != "" {
		return cfg.WriteYAML(opts.dumpConfig)
	}
	cfg.Apply()

	params, err := cfg.Effect.Params()
	if err != nil {
		return err
	}

	// the lattice is complete before the first frame
	genStart := time.Now()
	lattice, err := noise.GenerateParallel(context.Background(), cfg.Noise.Seed, cfg.Noise.Size, cfg.Noise.Frequency, cfg.Noise.Workers)
	if err != nil {
		return err
	}
	stats := lattice.Stats()
	slog.Info("noise lattice ready",
		"seed", cfg.Noise.Seed,
		"size", cfg.Noise.Size,
		"frequency", cfg.Noise.Frequency,
		"took", time.Since(genStart),
		"min", stats.Min,
		"max", stats.Max,
		"mean", stats.Mean,
		"stddev", stats.StdDev,
	)

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	fbW, fbH := window.GetFramebufferSize()
	comps, err := setupEffect(cfg, lattice, params, fbW, fbH)
	if err != nil {
		return err
	}
	defer comps.Dispose()
	slog.Info("renderer ready", "backend", cfg.Renderer.Backend, "preset", cfg.Effect.Preset, "width", fbW, "height", fbH)

	var srv *remote.Server
	if cfg.Remote.Enabled {
		srv = remote.NewServer(64)
		addr, err := srv.Start(cfg.Remote.Addr)
		if err != nil {
			return err
		}
		slog.Info("remote control listening", "addr", addr.String())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Warn("remote shutdown", "error", err)
			}
		}()
	}

	loop, err := NewLoop(window, comps, srv, cfg.Telemetry, opts.snapshotDir)
	if err != nil {
		return err
	}
	defer loop.Close()

	setupInputHandlers(window, loop, comps)
	loop.Run()
	return nil
}
