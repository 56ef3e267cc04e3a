package frame

import (
	"testing"
	"time"
)

func TestLimiterPacesFrames(t *testing.T) {
	l := NewFixedLimiter(100)
	start := time.Now()
	for i := 0; i < 10; i++ {
		l.Wait(false)
	}
	// 10 frames at 100 fps cannot finish in under ~100ms
	if elapsed := time.Since(start); elapsed < 95*time.Millisecond {
		t.Errorf("10 frames took %v, want at least 95ms", elapsed)
	}
}

func TestLimiterUnlimited(t *testing.T) {
	l := NewFixedLimiter(0)
	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.Wait(false)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("unlimited limiter blocked for %v", elapsed)
	}
}

func TestLimiterPausedCap(t *testing.T) {
	l := NewFixedLimiter(0)
	start := time.Now()
	for i := 0; i < 3; i++ {
		l.Wait(true)
	}
	want := 3 * time.Second / PausedLimit
	if elapsed := time.Since(start); elapsed < want-5*time.Millisecond {
		t.Errorf("paused frames took %v, want at least %v", elapsed, want)
	}
}

func TestLimiterResyncAfterHitch(t *testing.T) {
	l := NewFixedLimiter(200)
	l.Wait(false)
	time.Sleep(30 * time.Millisecond)
	l.Wait(false)

	// after a hitch the next deadline is one frame out, not in the past
	if until := time.Until(l.next); until <= 0 {
		t.Errorf("limiter did not resync, next deadline %v ago", -until)
	}
}
