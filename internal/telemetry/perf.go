// Package telemetry aggregates frame timings into fixed wall-clock windows
// and writes them as CSV rows.
package telemetry

import (
	"time"

	"fire-smoke/internal/compositor"
)

// PerfRecord is one closed window of frame timings plus the playback state
// at the end of the window.
type PerfRecord struct {
	Window      int     `csv:"window"`
	WallSeconds float64 `csv:"wall_s"`
	Frames      int     `csv:"frames"`
	FPS         float64 `csv:"fps"`
	AvgFrameMs  float64 `csv:"avg_frame_ms"`
	MaxFrameMs  float64 `csv:"max_frame_ms"`
	AvgRenderMs float64 `csv:"avg_render_ms"`
	AnimTime    float64 `csv:"anim_time"`
	Speed       float64 `csv:"speed"`
	Mode        string  `csv:"mode"`
	Paused      bool    `csv:"paused"`
}

// FrameStats accumulates frames until the window length has elapsed.
type FrameStats struct {
	window time.Duration

	start       time.Time
	windowStart time.Time
	index       int

	frames    int
	sumTotal  time.Duration
	maxTotal  time.Duration
	sumRender time.Duration
}

// NewFrameStats creates a collector emitting one record per window.
// Non-positive windows default to one second.
func NewFrameStats(window time.Duration) *FrameStats {
	if window <= 0 {
		window = time.Second
	}
	return &FrameStats{window: window}
}

// Add records a frame that finished at now, took total wall time of which
// render was spent drawing. When the window closes it returns the record and
// true, and a new window starts at now.
func (s *FrameStats) Add(now time.Time, total, render time.Duration, f compositor.Frame, paused bool) (PerfRecord, bool) {
	if s.start.IsZero() {
		s.start = now
		s.windowStart = now
	}

	s.frames++
	s.sumTotal += total
	s.sumRender += render
	s.maxTotal = max(s.maxTotal, total)

	span := now.Sub(s.windowStart)
	if span < s.window {
		return PerfRecord{}, false
	}

	n := float64(s.frames)
	rec := PerfRecord{
		Window:      s.index,
		WallSeconds: now.Sub(s.start).Seconds(),
		Frames:      s.frames,
		FPS:         n / span.Seconds(),
		AvgFrameMs:  durationMs(s.sumTotal) / n,
		MaxFrameMs:  durationMs(s.maxTotal),
		AvgRenderMs: durationMs(s.sumRender) / n,
		AnimTime:    float64(f.Time),
		Speed:       float64(f.Speed),
		Mode:        f.Mode.String(),
		Paused:      paused,
	}

	s.index++
	s.windowStart = now
	s.frames = 0
	s.sumTotal, s.maxTotal, s.sumRender = 0, 0, 0
	return rec, true
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

// LogAttrs returns the record as slog key/value pairs.
func (r PerfRecord) LogAttrs() []any {
	return []any{
		"window", r.Window,
		"fps", int(r.FPS + 0.5),
		"avg_frame_ms", r.AvgFrameMs,
		"max_frame_ms", r.MaxFrameMs,
		"avg_render_ms", r.AvgRenderMs,
		"speed", r.Speed,
		"mode", r.Mode,
		"paused", r.Paused,
	}
}
