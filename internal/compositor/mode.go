package compositor

import "fmt"

// ColorMode selects the fire palette.
type ColorMode int

const (
	ModeClassic ColorMode = iota
	ModeLava
	ModeBlue
	modeCount
)

var modeNames = [modeCount]string{"classic", "lava", "blue"}

// Next returns the following mode, wrapping blue back to classic.
func (m ColorMode) Next() ColorMode {
	return (m + 1) % modeCount
}

// Valid reports whether m is one of the known modes.
func (m ColorMode) Valid() bool {
	return m >= 0 && m < modeCount
}

func (m ColorMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseColorMode maps a mode name back to its value.
func ParseColorMode(s string) (ColorMode, error) {
	for i, name := range modeNames {
		if name == s {
			return ColorMode(i), nil
		}
	}
	return ModeClassic, fmt.Errorf("unknown color mode %q", s)
}

// Frame is the per-frame animation snapshot every pixel reads.
// Time is the animation clock, already scaled by playback speed.
type Frame struct {
	Time  float32
	Speed float32
	Mode  ColorMode
}
