package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fire-smoke/internal/compositor"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameStatsWindow(t *testing.T) {
	s := NewFrameStats(time.Second)
	t0 := time.Unix(1000, 0)
	f := compositor.Frame{Time: 2.5, Speed: 1.5, Mode: compositor.ModeLava}

	// 10 frames at 100ms: the window closes on the frame landing at t0+1s
	var rec PerfRecord
	var closed bool
	for i := 0; i <= 10; i++ {
		rec, closed = s.Add(t0.Add(time.Duration(i)*100*time.Millisecond), 10*time.Millisecond, 4*time.Millisecond, f, false)
		if i < 10 {
			require.False(t, closed, "window closed early at frame %d", i)
		}
	}
	require.True(t, closed)

	assert.Equal(t, 0, rec.Window)
	assert.Equal(t, 11, rec.Frames)
	assert.InDelta(t, 11.0, rec.FPS, 1e-9)
	assert.InDelta(t, 10.0, rec.AvgFrameMs, 1e-9)
	assert.InDelta(t, 10.0, rec.MaxFrameMs, 1e-9)
	assert.InDelta(t, 4.0, rec.AvgRenderMs, 1e-9)
	assert.InDelta(t, 1.0, rec.WallSeconds, 1e-9)
	assert.InDelta(t, 2.5, rec.AnimTime, 1e-6)
	assert.Equal(t, "lava", rec.Mode)
	assert.False(t, rec.Paused)
}

func TestFrameStatsResetsBetweenWindows(t *testing.T) {
	s := NewFrameStats(500 * time.Millisecond)
	t0 := time.Unix(0, 0)
	f := compositor.Frame{Speed: 1}

	s.Add(t0, 50*time.Millisecond, 0, f, false)
	rec, ok := s.Add(t0.Add(500*time.Millisecond), 5*time.Millisecond, 0, f, true)
	require.True(t, ok)
	assert.InDelta(t, 50.0, rec.MaxFrameMs, 1e-9)
	assert.True(t, rec.Paused)

	rec, ok = s.Add(t0.Add(time.Second), 8*time.Millisecond, 0, f, false)
	require.True(t, ok)
	assert.Equal(t, 1, rec.Window)
	assert.Equal(t, 1, rec.Frames)
	assert.InDelta(t, 8.0, rec.MaxFrameMs, 1e-9, "max resets with the window")
	assert.InDelta(t, 1.0, rec.WallSeconds, 1e-9)
}

func TestNewFrameStatsDefaultWindow(t *testing.T) {
	s := NewFrameStats(0)
	assert.Equal(t, time.Second, s.window)
}

func TestCSVWriterHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	require.NoError(t, w.Write(PerfRecord{Window: 0, Frames: 60, FPS: 60, Mode: "classic", Speed: 1}))
	require.NoError(t, w.Write(PerfRecord{Window: 1, Frames: 59, FPS: 59, Mode: "blue", Speed: 2, Paused: true}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "window,wall_s,frames,fps"), "header: %s", lines[0])

	var back []PerfRecord
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &back))
	require.Len(t, back, 2)
	assert.Equal(t, "blue", back[1].Mode)
	assert.True(t, back[1].Paused)
}

func TestCreateCSV(t *testing.T) {
	w, err := CreateCSV("")
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.NoError(t, w.Write(PerfRecord{}), "nil writer discards")
	assert.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "perf.csv")
	w, err = CreateCSV(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(PerfRecord{Frames: 3, Mode: "classic"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "avg_frame_ms")
}

func TestCreateCSVBadPath(t *testing.T) {
	_, err := CreateCSV(filepath.Join(t.TempDir(), "missing", "perf.csv"))
	assert.Error(t, err)
}
