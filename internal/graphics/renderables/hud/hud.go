package hud

import (
	"fmt"
	"time"

	"fire-smoke/internal/config"
	"fire-smoke/internal/graphics"
	renderer "fire-smoke/internal/graphics/renderer"
	"fire-smoke/internal/graphics/text"
	"fire-smoke/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	atlasWidth = 256
	margin     = 10
	lineStep   = 16
)

// HUD draws the playback status and, optionally, frame profiling as text
// over the effect.
type HUD struct {
	fontPath      string
	fontPixels    int
	info          string
	fontRenderer  *graphics.FontRenderer
	showProfiling bool

	// FPS tracking
	frames       int
	lastFPSCheck time.Time
	currentFPS   int

	profilingStats ProfilingStats
}

// NewHUD creates a new HUD renderable. info is a fixed line shown in the top
// right corner (backend, seed, lattice size). An empty fontPath uses the built-in
// bitmap face.
func NewHUD(info, fontPath string, fontPixels int) *HUD {
	return &HUD{
		info:       info,
		fontPath:   fontPath,
		fontPixels: fontPixels,
	}
}

// Init initializes the HUD rendering system
func (h *HUD) Init() error {
	face, err := text.LoadFace(h.fontPath, h.fontPixels)
	if err != nil {
		return fmt.Errorf("hud font: %w", err)
	}
	atlas, err := text.Rasterize(face, atlasWidth)
	if err != nil {
		return fmt.Errorf("hud font: %w", err)
	}

	// viewport is set by the renderer right after Init
	fontRenderer, err := graphics.NewFontRenderer(atlas, 1, 1)
	if err != nil {
		return err
	}
	h.fontRenderer = fontRenderer
	h.lastFPSCheck = time.Now()
	return nil
}

// Render renders the HUD elements
func (h *HUD) Render(ctx renderer.RenderContext) {
	// Update FPS tracking
	h.frames++
	if time.Since(h.lastFPSCheck) >= time.Second {
		h.currentFPS = h.frames
		h.lastFPSCheck = time.Now()
		h.frames = 0
	}

	if !config.HUDVisible() {
		return
	}

	defer profiling.Track("renderer.hud")()

	lines := StatusLines(ctx, h.currentFPS)
	h.fontRenderer.RenderLines(lines, margin, 20, lineStep, 1.0, mgl32.Vec3{1.0, 1.0, 1.0})

	// run info in the top right corner
	if h.info != "" {
		w, _ := h.fontRenderer.Measure(h.info, 1.0)
		h.fontRenderer.Render(h.info, float32(ctx.Width)-w-margin, 20, 1.0, mgl32.Vec3{0.8, 0.8, 0.8})
	}

	if h.showProfiling {
		h.RenderProfilingInfo(20 + lineStep*float32(len(lines)+1))
	}
}

// StatusLines formats the playback state.
func StatusLines(ctx renderer.RenderContext, fps int) []string {
	state := "playing"
	if ctx.Paused {
		state = "paused"
	}
	return []string{
		fmt.Sprintf("FPS: %d", fps),
		fmt.Sprintf("Time: %.2fs  Speed: %.1fx  Mode: %s  [%s]", ctx.Frame.Time, ctx.Frame.Speed, ctx.Frame.Mode, state),
		"Space pause  Up/Down speed  C color  R reset  P snapshot  H hud",
	}
}

// Dispose cleans up resources
func (h *HUD) Dispose() {
	if h.fontRenderer != nil {
		h.fontRenderer.Dispose()
		h.fontRenderer = nil
	}
}

// SetViewport updates the text projection
func (h *HUD) SetViewport(width, height int) {
	if h.fontRenderer != nil {
		h.fontRenderer.SetViewport(width, height)
	}
}

// ToggleProfiling toggles profiling HUD visibility
func (h *HUD) ToggleProfiling() {
	h.showProfiling = !h.showProfiling
}

// ShowProfiling returns whether profiling is enabled
func (h *HUD) ShowProfiling() bool {
	return h.showProfiling
}
