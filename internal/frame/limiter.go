// Package frame paces the render loop.
package frame

import (
	"time"

	"fire-smoke/internal/config"
)

// PausedLimit caps the frame rate while the animation is frozen; the image
// only changes when the window is resized.
const PausedLimit = 30

const spinWindow = 200 * time.Microsecond

// Limiter provides high-precision frame rate limiting
type Limiter struct {
	next  time.Time
	limit func() int
}

// NewLimiter creates a limiter that follows the runtime FPS setting.
func NewLimiter() *Limiter {
	return &Limiter{limit: config.GetFPSLimit}
}

// NewFixedLimiter creates a limiter with a constant cap. 0 disables it.
func NewFixedLimiter(fps int) *Limiter {
	return &Limiter{limit: func() int { return fps }}
}

// Wait blocks until the next frame should be rendered based on the FPS limit.
// Uses a hybrid sleep/spin approach for better precision on high FPS caps.
func (f *Limiter) Wait(paused bool) {
	effectiveLimit := f.limit()
	if paused && (effectiveLimit <= 0 || effectiveLimit > PausedLimit) {
		effectiveLimit = PausedLimit
	}

	if effectiveLimit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(effectiveLimit)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > spinWindow {
			time.Sleep(remaining - spinWindow)
		}
		// busy-wait for the final few microseconds
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// late by more than a frame (hitch): resync instead of bursting to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
