//go:build ebiten

// Command fire-cpu shows the CPU-composited effect in an ebiten window. It
// needs no OpenGL 4.1 context, only the raster pool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"fire-smoke/internal/animation"
	"fire-smoke/internal/compositor"
	"fire-smoke/internal/config"
	"fire-smoke/internal/noise"
	"fire-smoke/internal/raster"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keys maps animation controls to the same keys the GL host uses.
var keys = map[animation.Action][]ebiten.Key{
	animation.ActionTogglePause: {ebiten.KeySpace},
	animation.ActionSpeedUp:     {ebiten.KeyArrowUp, ebiten.KeyEqual, ebiten.KeyNumpadAdd},
	animation.ActionSpeedDown:   {ebiten.KeyArrowDown, ebiten.KeyMinus, ebiten.KeyNumpadSubtract},
	animation.ActionCycleMode:   {ebiten.KeyC},
	animation.ActionReset:       {ebiten.KeyR},
}

// Game adapts the raster pool to the ebiten.Game interface.
type Game struct {
	pool       *raster.Pool
	controller *animation.Controller
	scale      float64
	start      time.Time

	img   *image.RGBA
	frame compositor.Frame
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		config.ToggleHUD()
	}

	state := animation.Keys{
		Held:    make(map[animation.Action]bool, len(keys)),
		Pressed: make(map[animation.Action]bool, len(keys)),
	}
	for action, ks := range keys {
		for _, k := range ks {
			if ebiten.IsKeyPressed(k) {
				state.Held[action] = true
			}
			if inpututil.IsKeyJustPressed(k) {
				state.Pressed[action] = true
			}
		}
	}
	g.frame = g.controller.Tick(time.Since(g.start).Seconds(), state)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	if g.img == nil || g.img.Bounds() != b {
		g.img = image.NewRGBA(b)
	}
	if err := g.pool.Render(context.Background(), g.img, g.frame); err != nil {
		slog.Error("raster render", "error", err)
		return
	}
	screen.WritePixels(g.img.Pix)

	if config.HUDVisible() {
		state := "playing"
		if g.controller.State().Paused {
			state = "paused"
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS %.0f  t=%.2fs  %.1fx  %s  [%s]",
			ebiten.ActualFPS(), g.frame.Time, g.frame.Speed, g.frame.Mode, state))
	}
}

// Layout renders at cpu_scale of the window; ebiten stretches the result.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w := max(1, int(float64(outsideWidth)*g.scale))
	h := max(1, int(float64(outsideHeight)*g.scale))
	return w, h
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", -1, "Noise seed (-1 = use config)")
	preset := flag.String("preset", "", "Effect preset (empty = use config)")
	flag.Parse()

	if err := run(*configPath, *seed, *preset); err != nil {
		slog.Error("fire-cpu exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, seed int64, preset string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed >= 0 {
		cfg.Noise.Seed = uint32(seed)
	}
	if preset != "" {
		cfg.Effect.Preset = preset
	}
	params, err := cfg.Effect.Params()
	if err != nil {
		return err
	}
	cfg.Apply()

	lattice, err := noise.GenerateParallel(context.Background(), cfg.Noise.Seed, cfg.Noise.Size, cfg.Noise.Frequency, cfg.Noise.Workers)
	if err != nil {
		return err
	}
	slog.Info("noise lattice ready", "seed", cfg.Noise.Seed, "size", cfg.Noise.Size)

	pool := raster.NewPool(compositor.New(lattice, params), cfg.Renderer.Workers)
	defer pool.Shutdown()
	slog.Info("raster pool started", "workers", pool.Workers())

	game := &Game{
		pool:       pool,
		controller: animation.NewController(),
		scale:      cfg.Renderer.CPUScale,
		start:      time.Now(),
	}

	ebiten.SetWindowTitle(cfg.Window.Title + " (cpu)")
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(cfg.Window.VSync)
	if cfg.Window.FPSLimit > 0 {
		ebiten.SetTPS(cfg.Window.FPSLimit)
	}

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
