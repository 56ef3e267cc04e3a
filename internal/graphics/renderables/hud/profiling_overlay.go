package hud

import (
	"fmt"
	"time"

	"fire-smoke/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

type ProfilingStats struct {
	frameDuration time.Duration

	frameTimeHistory []time.Duration
	maxFrameTime     time.Duration
	minFrameTime     time.Duration
	avgFrameTime     time.Duration

	lastTotalFrameDuration time.Duration
	lastUpdateDuration     time.Duration

	lastPreRenderDuration  time.Duration
	lastSwapEventsDuration time.Duration
}

// Profiling methods for external updates
func (h *HUD) ProfilingSetLastTotalFrameDuration(d time.Duration) {
	h.profilingStats.lastTotalFrameDuration = d
}

func (h *HUD) ProfilingSetLastUpdateDuration(d time.Duration) {
	h.profilingStats.lastUpdateDuration = d
}

func (h *HUD) ProfilingSetPhases(preRender, swapEvents time.Duration) {
	h.profilingStats.lastPreRenderDuration = preRender
	h.profilingStats.lastSwapEventsDuration = swapEvents
}

// ProfilingSetRenderDuration stores the render() call duration for this frame
func (h *HUD) ProfilingSetRenderDuration(d time.Duration) {
	h.profilingStats.frameDuration = d
	// update rolling history and stats
	if len(h.profilingStats.frameTimeHistory) >= 60 {
		h.profilingStats.frameTimeHistory = h.profilingStats.frameTimeHistory[1:]
	}
	h.profilingStats.frameTimeHistory = append(h.profilingStats.frameTimeHistory, d)
	// recompute min/max/avg
	var total time.Duration
	lo, hi := d, d
	for _, v := range h.profilingStats.frameTimeHistory {
		total += v
		lo = min(lo, v)
		hi = max(hi, v)
	}
	h.profilingStats.avgFrameTime = total / time.Duration(len(h.profilingStats.frameTimeHistory))
	h.profilingStats.minFrameTime = lo
	h.profilingStats.maxFrameTime = hi
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

// RenderProfilingInfo renders the current profiling information starting at startY
func (h *HUD) RenderProfilingInfo(startY float32) {
	lines := make([]string, 0, 16)
	ps := &h.profilingStats

	tracked := profiling.SumWithPrefix("renderer.")
	lines = append(lines, fmt.Sprintf("Frame(render): %.2fms (%.2f avg, %.2f min, %.2f max) | Tracked(render): %.2fms",
		ms(ps.frameDuration), ms(ps.avgFrameTime), ms(ps.minFrameTime), ms(ps.maxFrameTime), ms(tracked)))

	if ps.lastUpdateDuration > 0 {
		lines = append(lines, fmt.Sprintf("Frame(update): %.2fms", ms(ps.lastUpdateDuration)))
	}

	if ps.lastTotalFrameDuration > 0 {
		overhead := max(ps.lastTotalFrameDuration-ps.frameDuration, 0)
		lines = append(lines, fmt.Sprintf("Frame(total): %.2fms | Overhead(non-render): %.2fms", ms(ps.lastTotalFrameDuration), ms(overhead)))
		lines = append(lines, fmt.Sprintf("Phases -> preRender: %.2fms, swap+events: %.2fms", ms(ps.lastPreRenderDuration), ms(ps.lastSwapEventsDuration)))
	}

	// Top N tracked sections, skipping ones that round to nothing
	for _, e := range profiling.Top(8) {
		if e.Duration >= 100*time.Microsecond {
			lines = append(lines, e.String())
		}
	}

	h.fontRenderer.RenderLines(lines, margin, startY, lineStep, 1.0, mgl32.Vec3{1.0, 0.9, 0.6})
}
