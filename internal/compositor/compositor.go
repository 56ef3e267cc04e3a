// Package compositor layers multi-octave noise into fire, smoke, sparks and
// heat haze. Compositor is the CPU evaluation; FragmentSource is the same
// algorithm as a GLSL program.
package compositor

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sampler reads a scalar volume at a continuous point in normalized
// coordinates. *noise.Lattice implements it.
type Sampler interface {
	Sample(p mgl32.Vec3) float32
}

// Compositor evaluates pixel colors. It holds no per-frame state and is safe
// for concurrent use as long as the sampler is.
type Compositor struct {
	sampler Sampler
	params  Params
}

// New creates a compositor over s.
func New(s Sampler, p Params) *Compositor {
	return &Compositor{sampler: s, params: p}
}

// Params returns the tuning in use.
func (c *Compositor) Params() Params {
	return c.params
}

func (c *Compositor) sample(p mgl32.Vec3, mirror bool) float32 {
	if mirror {
		p = fold(p)
	}
	return c.sampler.Sample(p)
}

// FBM sums Octaves samples at doubling frequency and halving weight:
// Σ gain^(i+1) * sample(p * lacunarity^i).
func (c *Compositor) FBM(p mgl32.Vec3) float32 {
	return c.fbm(p, c.params.Fold)
}

// foldedFBM is FBM with every octave mirrored into the lattice. Sparks and
// heat haze sample far outside [0,1]³ and would otherwise read one edge texel.
func (c *Compositor) foldedFBM(p mgl32.Vec3) float32 {
	return c.fbm(p, true)
}

func (c *Compositor) fbm(p mgl32.Vec3, mirror bool) float32 {
	var v float32
	a := c.params.Gain
	for i := 0; i < c.params.Octaves; i++ {
		v += a * c.sample(p, mirror)
		p = p.Mul(c.params.Lacunarity)
		a *= c.params.Gain
	}
	return v
}

// domain maps a surface coordinate and animation time to the fire's
// sampling point: y scrolls upward with time and z drifts slowly.
func (c *Compositor) domain(u, v, time float32) mgl32.Vec3 {
	pr := &c.params
	t := time * pr.ScrollRate
	return mgl32.Vec3{
		u*pr.UVScale[0] + pr.UVBias[0],
		v*pr.UVScale[1] + pr.UVBias[1] + t,
		t * pr.ZDrift,
	}
}

// Pixel returns the color at surface coordinate (u, v) in [0,1]², v = 0 at
// the bottom of the frame.
func (c *Compositor) Pixel(u, v float32, f Frame) mgl32.Vec3 {
	pr := &c.params

	t := f.Time * pr.ScrollRate
	p := c.domain(u, v, f.Time)

	fire := c.fire(p)

	smokeP := p.Add(mgl32.Vec3{pr.SmokeOffset[0], pr.SmokeOffset[1], -t * pr.SmokeDrift})
	smoke := smoothstep(pr.SmokeLow, pr.SmokeHigh, c.FBM(smokeP))

	// heat haze: bright regions shimmer more
	strength := fire * pr.DistortStrength * (1 + pr.DistortSpeedGain*(f.Speed-1))
	dx := (c.foldedFBM(p.Add(pr.DistortOffsetA)) - 0.5) * strength
	dy := (c.foldedFBM(p.Add(pr.DistortOffsetB)) - 0.5) * strength
	fire = c.fire(p.Add(mgl32.Vec3{dx, dy, 0}))

	pal := pr.Palette(f.Mode)
	colFire := mix(pal.Low, pal.High, mgl32.Clamp(fire*pr.FireColorGain, 0, 1))
	colSmoke := mix(pr.SmokeDark, pr.SmokeLight, smoke)

	height := smoothstep(pr.HeightLow, pr.HeightHigh, v)
	col := mix(colFire, colSmoke, height)

	col = col.Add(pr.SparkTint.Mul(c.spark(p, u, v, f.Time) * pr.SparkGain))

	b := c.blur(p)
	col = mix(col, mgl32.Vec3{b, b, b}, pr.BlurWeight)

	return mgl32.Vec3{
		mgl32.Clamp(col[0], 0, 1),
		mgl32.Clamp(col[1], 0, 1),
		mgl32.Clamp(col[2], 0, 1),
	}
}

func (c *Compositor) fire(p mgl32.Vec3) float32 {
	return float32(math.Pow(float64(c.FBM(p)), float64(c.params.FirePower)))
}

// spark is the ember intensity: high-frequency noise far from the fire
// domain, kept to the lower half of the frame and pulsed over time.
func (c *Compositor) spark(p mgl32.Vec3, u, v, time float32) float32 {
	pr := &c.params
	s := smoothstep(pr.SparkLow, pr.SparkHigh, c.foldedFBM(p.Mul(pr.SparkScale).Add(pr.SparkOffset)))
	s *= 1 - smoothstep(pr.SparkMaskLow, pr.SparkMaskHigh, v)
	phase := time*pr.SparkPulseRate + u*pr.SparkPulseFreq[0] + v*pr.SparkPulseFreq[1]
	return s * (0.5 + 0.5*float32(math.Sin(float64(phase))))
}

// blur averages a 3×3 neighbourhood of raw lattice samples around p.
func (c *Compositor) blur(p mgl32.Vec3) float32 {
	r := c.params.BlurRadius
	var sum float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			sum += c.sample(p.Add(mgl32.Vec3{float32(dx) * r, float32(dy) * r, 0}), c.params.Fold)
		}
	}
	return sum / 9
}

// smoothstep matches GLSL for e0 < e1 and degrades to a step otherwise.
func smoothstep(e0, e1, x float32) float32 {
	if e1 <= e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := mgl32.Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

func mix(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// fold mirrors each coordinate into [0,1] with period 2, continuous at
// every fold.
func fold(p mgl32.Vec3) mgl32.Vec3 {
	for i := range p {
		m := p[i] - 2*float32(math.Floor(float64(p[i]/2)))
		if m > 1 {
			m = 2 - m
		}
		p[i] = m
	}
	return p
}
