package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"fire-smoke/internal/animation"
	"fire-smoke/internal/compositor"
	"fire-smoke/internal/config"
	"fire-smoke/internal/frame"
	"fire-smoke/internal/input"
	"fire-smoke/internal/profiling"
	"fire-smoke/internal/remote"
	"fire-smoke/internal/snapshot"
	"fire-smoke/internal/telemetry"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const publishInterval = 250 * time.Millisecond

// Loop manages the main render loop state
type Loop struct {
	window     *glfw.Window
	comps      *Components
	controller *animation.Controller
	limiter    *frame.Limiter
	remote     *remote.Server // nil when disabled

	stats       *telemetry.FrameStats
	perf        *telemetry.CSVWriter
	snapshotDir string

	// Timing
	start            time.Time
	frames           int
	lastFPSCheckTime time.Time
	lastTime         time.Time
	lastPublish      time.Time

	frame       compositor.Frame
	paused      bool
	statusDirty bool
}

// NewLoop creates the loop. srv may be nil.
func NewLoop(window *glfw.Window, comps *Components, srv *remote.Server, tc config.TelemetryConfig, snapshotDir string) (*Loop, error) {
	perf, err := telemetry.CreateCSV(tc.PerfCSV)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Loop{
		window:           window,
		comps:            comps,
		controller:       animation.NewController(),
		limiter:          frame.NewLimiter(),
		remote:           srv,
		stats:            telemetry.NewFrameStats(time.Duration(tc.Window * float64(time.Second))),
		perf:             perf,
		snapshotDir:      snapshotDir,
		start:            now,
		lastFPSCheckTime: now,
		lastTime:         now,
	}, nil
}

// Run renders until the window is asked to close.
func (l *Loop) Run() {
	for !l.window.ShouldClose() {
		l.tick()
	}
}

// Close flushes telemetry.
func (l *Loop) Close() {
	if err := l.perf.Close(); err != nil {
		slog.Warn("closing perf csv", "error", err)
	}
}

func (l *Loop) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	// Poll events at start
	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	updateStart := time.Now()
	l.update(now)
	updateDur := time.Since(updateStart)

	renderDur := l.renderFrame(dt)

	// Present
	func() { defer profiling.Track("glfw.SwapBuffers")(); l.window.SwapBuffers() }()

	// Clear edge flags at end of frame
	l.comps.Input.PostUpdate()

	total := time.Since(now)
	l.updateProfiling(total, updateDur, renderDur)
	l.recordTelemetry(total, renderDur)
	l.publish(now)

	l.limiter.Wait(l.paused)
}

// update advances the animation from keys and remote actions, then handles
// the host-only controls.
func (l *Loop) update(now time.Time) {
	var queued []animation.Action
	if l.remote != nil {
		queued = l.remote.Drain()
	}

	prev, prevPaused := l.frame, l.paused
	l.frame = l.controller.Tick(now.Sub(l.start).Seconds(), l.comps.Input.AnimationKeys(), queued...)
	l.paused = l.controller.State().Paused
	if l.frame.Speed != prev.Speed || l.frame.Mode != prev.Mode || l.paused != prevPaused {
		l.statusDirty = true
	}

	im := l.comps.Input
	if im.JustPressed(input.ActionQuit) {
		l.window.SetShouldClose(true)
	}
	if im.JustPressed(input.ActionToggleHUD) {
		config.ToggleHUD()
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		l.comps.HUDRenderer.ToggleProfiling()
	}
	if im.JustPressed(input.ActionSnapshot) {
		l.saveSnapshot()
	}
}

func (l *Loop) renderFrame(dt float64) time.Duration {
	renderStart := time.Now()
	l.comps.Renderer.Render(l.frame, l.paused, dt)
	renderDur := time.Since(renderStart)
	l.comps.HUDRenderer.ProfilingSetRenderDuration(renderDur)
	l.frames++

	if time.Since(l.lastFPSCheckTime) >= time.Second {
		slog.Info("fps", "fps", l.frames, "time", l.frame.Time, "speed", l.frame.Speed, "mode", l.frame.Mode.String(), "paused", l.paused)
		l.frames = 0
		l.lastFPSCheckTime = time.Now()
	}

	return renderDur
}

// RefreshRender redraws the current frame without advancing it (used
// during window resize)
func (l *Loop) RefreshRender() {
	l.comps.Renderer.Render(l.frame, l.paused, 0)
	l.window.SwapBuffers()
}

// saveSnapshot composites the current frame on the CPU at framebuffer size,
// so the image has no HUD and does not depend on the backend.
func (l *Loop) saveSnapshot() {
	w, h := l.comps.Renderer.Size()
	img, err := snapshot.Render(context.Background(), l.comps.Pool, w, h, l.frame)
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		return
	}
	path := filepath.Join(l.snapshotDir, snapshot.Name(time.Now(), l.frame))
	if err := snapshot.WritePNG(path, img); err != nil {
		slog.Error("snapshot failed", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "width", w, "height", h)
}

func (l *Loop) updateProfiling(total, updateDur, renderDur time.Duration) {
	swapEventsDur := profiling.SumWithPrefix("glfw.")

	// Optional: warn if processing exceeds target frame time when limiter is active
	if limit := config.GetFPSLimit(); limit > 0 && !l.paused {
		processingDur := renderDur + updateDur
		targetFrameTime := time.Second / time.Duration(limit)
		if processingDur > targetFrameTime {
			slog.Debug("frame processing too slow", "took", processingDur, "target", targetFrameTime)
		}
	}

	preRenderDur := total - swapEventsDur - renderDur
	if preRenderDur < 0 {
		preRenderDur = 0
	}

	l.comps.HUDRenderer.ProfilingSetLastTotalFrameDuration(total)
	l.comps.HUDRenderer.ProfilingSetLastUpdateDuration(updateDur)
	l.comps.HUDRenderer.ProfilingSetPhases(preRenderDur, swapEventsDur)
}

func (l *Loop) recordTelemetry(total, renderDur time.Duration) {
	rec, ok := l.stats.Add(time.Now(), total, renderDur, l.frame, l.paused)
	if !ok {
		return
	}
	slog.Debug("perf", rec.LogAttrs()...)
	if err := l.perf.Write(rec); err != nil {
		slog.Warn("writing perf csv", "error", err)
	}
}

// publish sends the playback status to remote clients on change and at a
// steady rate otherwise.
func (l *Loop) publish(now time.Time) {
	if l.remote == nil {
		return
	}
	if !l.statusDirty && now.Sub(l.lastPublish) < publishInterval {
		return
	}
	l.remote.Publish(remote.NewStatus(l.frame, l.paused))
	l.lastPublish = now
	l.statusDirty = false
}
