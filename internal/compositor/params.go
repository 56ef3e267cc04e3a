package compositor

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxOctaves bounds the FBM loop; the GLSL program unrolls up to this many.
const MaxOctaves = 8

// Palette is the two endpoint colors a fire intensity is mapped between.
type Palette struct {
	Low  mgl32.Vec3 `yaml:"low"`
	High mgl32.Vec3 `yaml:"high"`
}

// Params holds every tuning constant of the compositor. The defaults
// reproduce the reference look; presets and config files override them.
type Params struct {
	// FBM
	Octaves    int     `yaml:"octaves"`
	Gain       float32 `yaml:"gain"`
	Lacunarity float32 `yaml:"lacunarity"`

	// Sampling domain
	UVScale    mgl32.Vec2 `yaml:"uv_scale"`
	UVBias     mgl32.Vec2 `yaml:"uv_bias"`
	ScrollRate float32    `yaml:"scroll_rate"`
	ZDrift     float32    `yaml:"z_drift"`
	// Fold mirrors fire, smoke and blur samples into [0,1] instead of
	// letting the lattice clamp them. Off by default: with the reference
	// scroll, y leaves the unit cube after about 5s and z after about 10s,
	// and from then on fire and smoke freeze on the edge texels. Only the
	// sparks keep moving. Fold keeps the whole pattern alive at the cost of
	// visible mirror seams.
	Fold bool `yaml:"fold"`

	// Fire
	FirePower     float32 `yaml:"fire_power"`
	FireColorGain float32 `yaml:"fire_color_gain"`
	Classic       Palette `yaml:"classic"`
	Lava          Palette `yaml:"lava"`
	Blue          Palette `yaml:"blue"`

	// Smoke
	SmokeOffset mgl32.Vec2 `yaml:"smoke_offset"`
	SmokeDrift  float32    `yaml:"smoke_drift"`
	SmokeLow    float32    `yaml:"smoke_low"`
	SmokeHigh   float32    `yaml:"smoke_high"`
	SmokeDark   mgl32.Vec3 `yaml:"smoke_dark"`
	SmokeLight  mgl32.Vec3 `yaml:"smoke_light"`

	// Heat distortion
	DistortOffsetA  mgl32.Vec3 `yaml:"distort_offset_a"`
	DistortOffsetB  mgl32.Vec3 `yaml:"distort_offset_b"`
	DistortStrength float32    `yaml:"distort_strength"`
	// DistortSpeedGain couples the haze to playback speed: strength is
	// scaled by 1 + gain*(speed-1). Zero keeps it constant.
	DistortSpeedGain float32 `yaml:"distort_speed_gain"`

	// Height blend
	HeightLow  float32 `yaml:"height_low"`
	HeightHigh float32 `yaml:"height_high"`

	// Sparks
	SparkScale     float32    `yaml:"spark_scale"`
	SparkOffset    mgl32.Vec3 `yaml:"spark_offset"`
	SparkLow       float32    `yaml:"spark_low"`
	SparkHigh      float32    `yaml:"spark_high"`
	SparkMaskLow   float32    `yaml:"spark_mask_low"`
	SparkMaskHigh  float32    `yaml:"spark_mask_high"`
	SparkPulseRate float32    `yaml:"spark_pulse_rate"`
	SparkPulseFreq mgl32.Vec2 `yaml:"spark_pulse_freq"`
	SparkTint      mgl32.Vec3 `yaml:"spark_tint"`
	SparkGain      float32    `yaml:"spark_gain"`

	// Post blur
	BlurRadius float32 `yaml:"blur_radius"`
	BlurWeight float32 `yaml:"blur_weight"`
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		Octaves:    5,
		Gain:       0.5,
		Lacunarity: 2.0,

		UVScale:    mgl32.Vec2{1.5, 2.5},
		ScrollRate: 0.2,
		ZDrift:     0.5,

		FirePower:     3.0,
		FireColorGain: 2.0,
		Classic:       Palette{Low: mgl32.Vec3{1.0, 0.4, 0.0}, High: mgl32.Vec3{1.0, 1.0, 0.2}},
		Lava:          Palette{Low: mgl32.Vec3{0.5, 0.0, 0.0}, High: mgl32.Vec3{1.0, 0.35, 0.0}},
		Blue:          Palette{Low: mgl32.Vec3{0.0, 0.2, 1.0}, High: mgl32.Vec3{0.0, 1.0, 1.0}},

		SmokeOffset: mgl32.Vec2{0.0, 1.0},
		SmokeDrift:  0.2,
		SmokeLow:    0.4,
		SmokeHigh:   0.9,
		SmokeDark:   mgl32.Vec3{0.1, 0.1, 0.1},
		SmokeLight:  mgl32.Vec3{0.4, 0.4, 0.4},

		DistortOffsetA:  mgl32.Vec3{5.2, 1.3, 0.0},
		DistortOffsetB:  mgl32.Vec3{1.7, 9.2, 0.0},
		DistortStrength: 0.15,

		HeightLow:  0.2,
		HeightHigh: 1.0,

		SparkScale:     4.0,
		SparkOffset:    mgl32.Vec3{37.0, 17.0, 0.0},
		SparkLow:       0.58,
		SparkHigh:      0.72,
		SparkMaskLow:   0.3,
		SparkMaskHigh:  0.5,
		SparkPulseRate: 6.0,
		SparkPulseFreq: mgl32.Vec2{40.0, 25.0},
		SparkTint:      mgl32.Vec3{1.0, 0.6, 0.2},
		SparkGain:      0.8,

		BlurRadius: 0.01,
		BlurWeight: 0.08,
	}
}

// Presets returns the named tunings. "classic" is the reference look;
// "dense" is the sibling variant with a UV bias, six octaves and a tighter
// domain.
func Presets() map[string]Params {
	dense := DefaultParams()
	dense.Octaves = 6
	dense.UVBias = mgl32.Vec2{0.0, 0.1}
	dense.UVScale = mgl32.Vec2{2.0, 3.0}

	return map[string]Params{
		"classic": DefaultParams(),
		"dense":   dense,
	}
}

// Preset looks up a named tuning.
func Preset(name string) (Params, error) {
	p, ok := Presets()[name]
	if !ok {
		return Params{}, fmt.Errorf("unknown preset %q (have %v)", name, PresetNames())
	}
	return p, nil
}

// PresetNames lists preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, 2)
	for name := range Presets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate rejects tunings the compositor cannot evaluate.
func (p Params) Validate() error {
	if p.Octaves < 1 || p.Octaves > MaxOctaves {
		return fmt.Errorf("octaves must be in [1,%d], got %d", MaxOctaves, p.Octaves)
	}
	if p.Gain <= 0 || p.Lacunarity <= 0 {
		return fmt.Errorf("gain and lacunarity must be positive, got %v and %v", p.Gain, p.Lacunarity)
	}
	if p.SmokeLow >= p.SmokeHigh {
		return fmt.Errorf("smoke_low %v must be below smoke_high %v", p.SmokeLow, p.SmokeHigh)
	}
	if p.HeightLow >= p.HeightHigh {
		return fmt.Errorf("height_low %v must be below height_high %v", p.HeightLow, p.HeightHigh)
	}
	if p.SparkLow >= p.SparkHigh || p.SparkMaskLow >= p.SparkMaskHigh {
		return fmt.Errorf("spark smoothstep bounds must be increasing")
	}
	if p.BlurWeight < 0 || p.BlurWeight > 1 {
		return fmt.Errorf("blur_weight must be in [0,1], got %v", p.BlurWeight)
	}
	return nil
}

// Palette returns the endpoints for mode. Unknown modes fall back to classic.
func (p *Params) Palette(mode ColorMode) Palette {
	switch mode {
	case ModeLava:
		return p.Lava
	case ModeBlue:
		return p.Blue
	default:
		return p.Classic
	}
}
