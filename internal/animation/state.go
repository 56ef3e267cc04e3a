// Package animation holds the playback state of the effect: the animation
// clock, speed, color mode and pause flag, mutated only by discrete actions.
package animation

import (
	"math"

	"fire-smoke/internal/compositor"
)

const (
	MinSpeed     = 0.1
	MaxSpeed     = 3.0
	DefaultSpeed = 1.0
	SpeedStep    = 0.1
)

// State is the animation state machine. The zero value is not ready; use
// NewState.
type State struct {
	Paused bool
	Speed  float32
	Mode   compositor.ColorMode

	elapsed  float64 // animation seconds, already scaled by speed
	lastWall float64
	anchored bool
}

// NewState returns a playing state at normal speed in the classic palette.
func NewState() State {
	return State{Speed: DefaultSpeed, Mode: compositor.ModeClassic}
}

// Advance moves the clock to wall time now (seconds). While playing the
// animation clock grows by the wall delta times Speed; while paused it
// stays frozen. The first call only anchors the wall clock.
func (s *State) Advance(now float64) {
	if !s.anchored {
		s.lastWall = now
		s.anchored = true
		return
	}
	dt := now - s.lastWall
	s.lastWall = now
	if dt < 0 || s.Paused {
		return
	}
	s.elapsed += dt * float64(s.Speed)
}

// Apply performs one transition.
func (s *State) Apply(a Action) {
	switch a {
	case ActionTogglePause:
		// Advance keeps lastWall current while paused, so resuming
		// continues from the frozen time without a jump.
		s.Paused = !s.Paused
	case ActionSpeedUp:
		s.Speed = stepSpeed(s.Speed, SpeedStep)
	case ActionSpeedDown:
		s.Speed = stepSpeed(s.Speed, -SpeedStep)
	case ActionCycleMode:
		s.Mode = s.Mode.Next()
	case ActionReset:
		s.Speed = DefaultSpeed
		s.Mode = compositor.ModeClassic
		s.Paused = false
	}
}

// stepSpeed adds delta and snaps to the 0.1 grid so repeated steps do not
// accumulate float error.
func stepSpeed(speed, delta float32) float32 {
	v := math.Round(float64(speed+delta)*10) / 10
	return float32(math.Min(MaxSpeed, math.Max(MinSpeed, v)))
}

// Time returns the animation clock in seconds.
func (s *State) Time() float64 {
	return s.elapsed
}

// Frame snapshots the state for one compositing pass.
func (s *State) Frame() compositor.Frame {
	return compositor.Frame{
		Time:  float32(s.elapsed),
		Speed: s.Speed,
		Mode:  s.Mode,
	}
}
