package main

import (
	"fmt"
	"log/slog"

	"fire-smoke/internal/compositor"
	"fire-smoke/internal/config"
	"fire-smoke/internal/graphics/renderables/cpufire"
	"fire-smoke/internal/graphics/renderables/fire"
	"fire-smoke/internal/graphics/renderables/hud"
	renderer "fire-smoke/internal/graphics/renderer"
	"fire-smoke/internal/input"
	"fire-smoke/internal/noise"
	"fire-smoke/internal/raster"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const hudFontPixels = 13

func setupWindow(cfg config.WindowConfig) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		window.Destroy()
		return nil, fmt.Errorf("gl init: %w", err)
	}

	// without vsync the FPS limiter paces frames
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	return window, nil
}

// Components holds everything the loop drives.
type Components struct {
	Renderer    *renderer.Renderer
	HUDRenderer *hud.HUD
	Pool        *raster.Pool
	Input       *input.InputManager
}

// setupEffect builds the compositing pass for the configured backend with
// the HUD on top. The raster pool exists on both backends; snapshots use it.
func setupEffect(cfg *config.Config, lattice *noise.Lattice, params compositor.Params, width, height int) (*Components, error) {
	pool := raster.NewPool(compositor.New(lattice, params), cfg.Renderer.Workers)
	slog.Info("raster pool started", "workers", pool.Workers())

	var pass renderer.Renderable
	switch cfg.Renderer.Backend {
	case config.BackendCPU:
		pass = cpufire.NewCPUFire(pool, cfg.Renderer.CPUScale)
	default:
		pass = fire.NewFire(lattice, params)
	}

	info := fmt.Sprintf("%s  preset %s  seed %d  lattice %d^3", cfg.Renderer.Backend, cfg.Effect.Preset, cfg.Noise.Seed, lattice.Size)
	hudRenderer := hud.NewHUD(info, "", hudFontPixels)

	r, err := renderer.NewRenderer(width, height, pass, hudRenderer)
	if err != nil {
		pool.Shutdown()
		return nil, err
	}

	return &Components{
		Renderer:    r,
		HUDRenderer: hudRenderer,
		Pool:        pool,
		Input:       input.NewInputManager(),
	}, nil
}

// Dispose releases GL resources and stops the raster workers.
func (c *Components) Dispose() {
	c.Renderer.Dispose()
	c.Pool.Shutdown()
}
