package compositor

import (
	"math"
	"strings"
	"testing"

	"fire-smoke/internal/noise"

	"github.com/go-gl/mathgl/mgl32"
)

type constSampler float32

func (c constSampler) Sample(mgl32.Vec3) float32 { return float32(c) }

type recordingSampler struct {
	points []mgl32.Vec3
}

func (r *recordingSampler) Sample(p mgl32.Vec3) float32 {
	r.points = append(r.points, p)
	return 1
}

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func nearVec(a, b mgl32.Vec3, eps float32) bool {
	return near(a[0], b[0], eps) && near(a[1], b[1], eps) && near(a[2], b[2], eps)
}

func TestFBMWeights(t *testing.T) {
	tests := []struct {
		octaves int
		value   float32
		want    float32
	}{
		{1, 1, 0.5},
		{5, 1, 0.96875},
		{6, 1, 0.984375},
		{5, 0.5, 0.484375},
	}
	for _, tt := range tests {
		p := DefaultParams()
		p.Octaves = tt.octaves
		c := New(constSampler(tt.value), p)
		if got := c.FBM(mgl32.Vec3{0.3, 0.2, 0.1}); !near(got, tt.want, 1e-6) {
			t.Errorf("FBM with %d octaves of %v = %v, want %v", tt.octaves, tt.value, got, tt.want)
		}
	}
}

// TestFBMDoublesFrequency verifies octave i samples at p * 2^i
func TestFBMDoublesFrequency(t *testing.T) {
	rec := &recordingSampler{}
	c := New(rec, DefaultParams())
	p := mgl32.Vec3{0.1, 0.2, 0.3}
	c.FBM(p)

	if len(rec.points) != 5 {
		t.Fatalf("got %d samples, want 5", len(rec.points))
	}
	scale := float32(1)
	for i, got := range rec.points {
		if want := p.Mul(scale); !nearVec(got, want, 1e-6) {
			t.Errorf("octave %d sampled %v, want %v", i, got, want)
		}
		scale *= 2
	}
}

// TestPixelBlackLattice pins the composition against a lattice of zeros:
// no fire, no smoke, no sparks, so only palette endpoints and the blur remain.
func TestPixelBlackLattice(t *testing.T) {
	c := New(constSampler(0), DefaultParams())
	tests := []struct {
		name string
		v    float32
		mode ColorMode
		want mgl32.Vec3
	}{
		{"classic base", 0, ModeClassic, mgl32.Vec3{0.92, 0.368, 0}},
		{"lava base", 0, ModeLava, mgl32.Vec3{0.46, 0, 0}},
		{"blue base", 0, ModeBlue, mgl32.Vec3{0, 0.184, 0.92}},
		{"smoke top", 1, ModeClassic, mgl32.Vec3{0.092, 0.092, 0.092}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Pixel(0.5, tt.v, Frame{Time: 3, Speed: 1, Mode: tt.mode})
			if !nearVec(got, tt.want, 1e-5) {
				t.Errorf("Pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPixelSaturatedLattice checks the fire end of the palette and the
// output clamp.
func TestPixelSaturatedLattice(t *testing.T) {
	c := New(constSampler(1), DefaultParams())
	got := c.Pixel(0.5, 0, Frame{Time: 0, Speed: 1, Mode: ModeClassic})
	for i := range got {
		if got[i] < 0 || got[i] > 1 {
			t.Fatalf("channel %d = %v out of [0,1]", i, got[i])
		}
	}
	// fbm = 0.96875, fire = 0.909 → palette saturates to the high end
	if got[0] != 1 || got[1] < 0.9 {
		t.Errorf("expected a bright yellow base, got %v", got)
	}
}

func TestPixelRange(t *testing.T) {
	lat := noise.Generate(noise.DefaultSeed, 16, 0.08)
	for _, name := range PresetNames() {
		p, _ := Preset(name)
		for _, fold := range []bool{false, true} {
			p.Fold = fold
			c := New(lat, p)
			for _, tm := range []float32{0, 1.7, 42} {
				for y := 0; y <= 10; y++ {
					for x := 0; x <= 10; x++ {
						col := c.Pixel(float32(x)/10, float32(y)/10, Frame{Time: tm, Speed: 3, Mode: ModeBlue})
						for i := range col {
							if col[i] < 0 || col[i] > 1 || math.IsNaN(float64(col[i])) {
								t.Fatalf("%s fold=%v: Pixel(%d,%d,t=%v)[%d] = %v", name, fold, x, y, tm, i, col[i])
							}
						}
					}
				}
			}
		}
	}
}

func TestPixelIsPure(t *testing.T) {
	lat := noise.Generate(noise.DefaultSeed, 16, 0.08)
	c := New(lat, DefaultParams())
	f := Frame{Time: 2.5, Speed: 1.3, Mode: ModeLava}
	a := c.Pixel(0.3, 0.4, f)
	for i := 0; i < 10; i++ {
		if b := c.Pixel(0.3, 0.4, f); b != a {
			t.Fatalf("Pixel not deterministic: %v vs %v", a, b)
		}
	}
}

// TestPixelColorModesDiffer is the end-to-end scenario: same coordinates
// and time, different color modes, different colors.
func TestPixelColorModesDiffer(t *testing.T) {
	lat := noise.Generate(237, 16, 0.08)
	c := New(lat, DefaultParams())

	classic := c.Pixel(0.5, 0.1, Frame{Time: 0, Speed: 1, Mode: ModeClassic})
	lava := c.Pixel(0.5, 0.1, Frame{Time: 0, Speed: 1, Mode: ModeLava})
	blue := c.Pixel(0.5, 0.1, Frame{Time: 0, Speed: 1, Mode: ModeBlue})

	if classic == lava {
		t.Errorf("classic and lava produced the same color %v", classic)
	}
	if classic == blue || lava == blue {
		t.Errorf("blue matched another mode: classic=%v lava=%v blue=%v", classic, lava, blue)
	}
}

func TestPixelAnimatesOverTime(t *testing.T) {
	lat := noise.Generate(noise.DefaultSeed, 16, 0.08)
	c := New(lat, DefaultParams())
	a := c.Pixel(0.4, 0.2, Frame{Time: 0, Speed: 1})
	b := c.Pixel(0.4, 0.2, Frame{Time: 0.5, Speed: 1})
	if a == b {
		t.Errorf("expected the pattern to move between t=0 and t=0.5, both %v", a)
	}
}

// referenceLattice is the default-sized lattice for the reference seed.
func referenceLattice() *noise.Lattice {
	return noise.Generate(237, 64, 0.08)
}

// TestSparksInLowerHalf checks sparks light up somewhere near the fire base
// and never above the mask.
func TestSparksInLowerHalf(t *testing.T) {
	c := New(referenceLattice(), DefaultParams())
	mask := DefaultParams().SparkMaskHigh

	lit := 0
	for _, tm := range []float32{0, 0.5, 1, 2, 5} {
		for y := 0; y <= 40; y++ {
			v := float32(y) / 40
			for x := 0; x <= 40; x++ {
				u := float32(x) / 40
				s := c.spark(c.domain(u, v, tm), u, v, tm)
				if v >= mask && s != 0 {
					t.Fatalf("spark at (%v,%v,t=%v) = %v above the mask", u, v, tm, s)
				}
				if v < mask && s > 0 {
					lit++
				}
			}
		}
	}
	if lit == 0 {
		t.Fatal("no spark in the lower half at any time")
	}
}

// TestHazeNoiseVaries checks the distortion lookups read real lattice
// detail rather than one edge texel.
func TestHazeNoiseVaries(t *testing.T) {
	p := DefaultParams()
	c := New(referenceLattice(), p)

	for _, offset := range []mgl32.Vec3{p.DistortOffsetA, p.DistortOffsetB} {
		lo, hi := float32(1), float32(0)
		for y := 0; y <= 20; y++ {
			for x := 0; x <= 20; x++ {
				n := c.foldedFBM(c.domain(float32(x)/20, float32(y)/20, 1).Add(offset))
				lo = min(lo, n)
				hi = max(hi, n)
			}
		}
		if hi-lo < 0.05 {
			t.Errorf("haze noise at offset %v spans [%v,%v], want spatial variation", offset, lo, hi)
		}
	}
}

func TestHazeShiftsFire(t *testing.T) {
	lat := referenceLattice()
	calm := DefaultParams()
	calm.DistortStrength = 0
	withHaze := New(lat, DefaultParams())
	without := New(lat, calm)

	f := Frame{Time: 0, Speed: 1, Mode: ModeClassic}
	changed := 0
	for y := 0; y <= 8; y++ {
		for x := 0; x <= 20; x++ {
			u, v := float32(x)/20, float32(y)/40
			if withHaze.fire(withHaze.domain(u, v, 0)) == 0 {
				continue
			}
			if withHaze.Pixel(u, v, f) != without.Pixel(u, v, f) {
				changed++
			}
		}
	}
	if changed == 0 {
		t.Fatal("heat distortion did not change any pixel")
	}
}

func TestHazeIgnoresSpeedByDefault(t *testing.T) {
	c := New(referenceLattice(), DefaultParams())
	slow := c.Pixel(0.3, 0.1, Frame{Time: 1, Speed: 0.5})
	fast := c.Pixel(0.3, 0.1, Frame{Time: 1, Speed: 3})
	if slow != fast {
		t.Errorf("speed changed the frame at a fixed time: %v vs %v", slow, fast)
	}

	p := DefaultParams()
	p.DistortSpeedGain = 0.5
	coupled := New(referenceLattice(), p)
	if coupled.Pixel(0.3, 0.1, Frame{Time: 1, Speed: 1}) != c.Pixel(0.3, 0.1, Frame{Time: 1, Speed: 1}) {
		t.Error("speed gain must be neutral at speed 1")
	}
}

// TestClampedDomainFreezes records the trade-off behind Fold: once the
// scroll has left the unit cube, clamped fire is the same at every time,
// while the folded domain keeps moving.
func TestClampedDomainFreezes(t *testing.T) {
	lat := referenceLattice()
	clamped := New(lat, DefaultParams())
	p := DefaultParams()
	p.Fold = true
	folded := New(lat, p)

	moved := 0
	for y := 0; y <= 20; y++ {
		for x := 0; x <= 20; x++ {
			u, v := float32(x)/20, float32(y)/20
			a := clamped.FBM(clamped.domain(u, v, 30))
			b := clamped.FBM(clamped.domain(u, v, 37))
			if a != b {
				t.Fatalf("clamped FBM at (%v,%v) moved between t=30 and t=37: %v vs %v", u, v, a, b)
			}
			if folded.FBM(folded.domain(u, v, 30)) != folded.FBM(folded.domain(u, v, 37)) {
				moved++
			}
		}
	}
	if moved == 0 {
		t.Fatal("folded FBM did not move between t=30 and t=37")
	}
}

// TestShaderMirrorsFoldedLookups keeps the GLSL sparks and haze on the same
// folded lookups as the CPU path.
func TestShaderMirrorsFoldedLookups(t *testing.T) {
	src := FragmentSource()
	for _, want := range []string{
		"fbm(p + distortOffsetA, true)",
		"fbm(p + distortOffsetB, true)",
		"fbm(p * sparkScale + sparkOffset, true)",
		"pow(fbm(p, foldDomain), firePower)",
		"(1.0 + distortSpeedGain * (speed - 1.0))",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("fragment source is missing %q", want)
		}
	}
}

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		e0, e1, x, want float32
	}{
		{0.4, 0.9, 0.0, 0},
		{0.4, 0.9, 0.4, 0},
		{0.4, 0.9, 0.9, 1},
		{0.4, 0.9, 2.0, 1},
		{0.4, 0.9, 0.65, 0.5},
		{0.5, 0.5, 0.4, 0},
		{0.5, 0.5, 0.6, 1},
	}
	for _, tt := range tests {
		if got := smoothstep(tt.e0, tt.e1, tt.x); !near(got, tt.want, 1e-6) {
			t.Errorf("smoothstep(%v, %v, %v) = %v, want %v", tt.e0, tt.e1, tt.x, got, tt.want)
		}
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0.25, 0.25},
		{1.0, 1.0},
		{1.25, 0.75},
		{2.0, 0.0},
		{2.5, 0.5},
		{-0.25, 0.25},
		{-1.5, 0.5},
	}
	for _, tt := range tests {
		if got := fold(mgl32.Vec3{tt.in, 0, 0})[0]; !near(got, tt.want, 1e-6) {
			t.Errorf("fold(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	// continuous across the mirror points
	for _, edge := range []float32{1, 2, 3, -1} {
		a := fold(mgl32.Vec3{edge - 1e-4, 0, 0})[0]
		b := fold(mgl32.Vec3{edge + 1e-4, 0, 0})[0]
		if !near(a, b, 1e-3) {
			t.Errorf("fold jumps at %v: %v vs %v", edge, a, b)
		}
	}
}

func TestColorModeCycle(t *testing.T) {
	m := ModeClassic
	want := []ColorMode{ModeLava, ModeBlue, ModeClassic}
	for i, w := range want {
		m = m.Next()
		if m != w {
			t.Fatalf("step %d: got %v, want %v", i, m, w)
		}
	}
}

func TestParseColorMode(t *testing.T) {
	for _, m := range []ColorMode{ModeClassic, ModeLava, ModeBlue} {
		got, err := ParseColorMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseColorMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseColorMode("green"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
	if s := ColorMode(7).String(); s != "ColorMode(7)" {
		t.Errorf("String of invalid mode = %q", s)
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range PresetNames() {
		p, err := Preset(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}
	if _, err := Preset("nope"); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero octaves", func(p *Params) { p.Octaves = 0 }},
		{"too many octaves", func(p *Params) { p.Octaves = MaxOctaves + 1 }},
		{"zero gain", func(p *Params) { p.Gain = 0 }},
		{"inverted smoke", func(p *Params) { p.SmokeLow, p.SmokeHigh = 0.9, 0.4 }},
		{"inverted height", func(p *Params) { p.HeightLow = p.HeightHigh }},
		{"inverted spark mask", func(p *Params) { p.SparkMaskLow = 0.9 }},
		{"blur weight", func(p *Params) { p.BlurWeight = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func declaredUniforms(src string) map[string]bool {
	names := make(map[string]bool)
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "uniform ") {
			continue
		}
		fields := strings.Fields(strings.TrimSuffix(line, ";"))
		if len(fields) == 3 {
			names[fields[2]] = true
		}
	}
	return names
}

// TestUniformsCoverShader keeps Params.Uniforms and the GLSL declarations in sync
func TestUniformsCoverShader(t *testing.T) {
	declared := declaredUniforms(FragmentSource())
	perFrame := map[string]bool{"noiseTex": true, "time": true, "speed": true, "colorMode": true}

	bound := make(map[string]bool)
	for _, u := range DefaultParams().Uniforms() {
		if !declared[u.Name] {
			t.Errorf("uniform %q is bound but not declared", u.Name)
		}
		bound[u.Name] = true
	}
	for name := range declared {
		if !bound[name] && !perFrame[name] {
			t.Errorf("uniform %q is declared but never bound", name)
		}
	}
}

func TestFragmentSourceOctaveBound(t *testing.T) {
	if !strings.Contains(FragmentSource(), "#define MAX_OCTAVES 8") {
		t.Error("fragment source does not carry the octave bound")
	}
}

func BenchmarkPixel(b *testing.B) {
	lat := noise.Generate(noise.DefaultSeed, 64, 0.08)
	c := New(lat, DefaultParams())
	f := Frame{Time: 1, Speed: 1}
	for i := 0; i < b.N; i++ {
		_ = c.Pixel(float32(i%256)/256, 0.3, f)
	}
}
