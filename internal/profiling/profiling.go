// Package profiling keeps per-frame wall-clock totals for named sections of
// the render loop, e.g. "raster.Render" or "glfw.SwapBuffers".
package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
)

// Entry is one named total of the current frame.
type Entry struct {
	Name     string
	Duration time.Duration
}

// String formats the entry as "name:4.2ms", truncated to a tenth of a
// millisecond.
func (e Entry) String() string {
	return e.Name + ":" + formatMs(e.Duration)
}

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// SumWithPrefix totals every tracked duration whose name starts with prefix.
// Example: SumWithPrefix("glfw.") covers glfw.PollEvents and glfw.SwapBuffers.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for k, v := range frameTotals {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	return total
}

// Top returns up to n entries, longest first. Equal durations sort by name
// so the overlay does not flicker between them.
func Top(n int) []Entry {
	ss := Snapshot()
	list := make([]Entry, 0, len(ss))
	for k, v := range ss {
		list = append(list, Entry{Name: k, Duration: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Duration != list[j].Duration {
			return list[i].Duration > list[j].Duration
		}
		return list[i].Name < list[j].Name
	})
	if n < len(list) {
		list = list[:max(n, 0)]
	}
	return list
}

// TopN formats top N durations from the current frame totals.
// Example: "renderer.Render:4.2ms, raster.Render:2.1ms"
func TopN(n int) string {
	top := Top(n)
	parts := make([]string, len(top))
	for i, e := range top {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops ".0", working in whole tenths so
// float rounding cannot turn 2.3 into 2.2.
func formatMs(d time.Duration) string {
	tenths := d.Microseconds() / 100
	s := strconv.FormatInt(tenths/10, 10)
	if frac := tenths % 10; frac != 0 {
		if frac < 0 {
			frac = -frac
		}
		s += "." + strconv.FormatInt(frac, 10)
	}
	return s + "ms"
}
