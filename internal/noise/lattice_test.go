package noise

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// TestGenerateDeterministic verifies two runs with the same seed match cell for cell
func TestGenerateDeterministic(t *testing.T) {
	a := Generate(237, 8, 0.1)
	b := Generate(237, 8, 0.1)

	if len(a.Data) != 8*8*8 || len(b.Data) != len(a.Data) {
		t.Fatalf("unexpected lattice sizes %d and %d", len(a.Data), len(b.Data))
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("cell %d differs: %v vs %v", i, a.Data[i], b.Data[i])
		}
	}
}

// TestGenerateRange verifies every cell is in [0,1]
func TestGenerateRange(t *testing.T) {
	for _, f := range []float64{0.08, 0.1, 0.37, 1.3} {
		l := Generate(DefaultSeed, 16, f)
		for i, v := range l.Data {
			if v < 0 || v > 1 {
				t.Errorf("frequency %v: cell %d = %v, expected in [0,1]", f, i, v)
			}
		}
	}
}

// TestGenerateMatchesNoise verifies the x-fastest layout and the 0.5+0.5n remap
func TestGenerateMatchesNoise(t *testing.T) {
	const f = 0.1
	l := Generate(DefaultSeed, 8, f)
	n := NewPerlin3D(DefaultSeed)

	for _, c := range [][3]int{{0, 0, 0}, {7, 0, 0}, {0, 7, 0}, {0, 0, 7}, {3, 5, 6}} {
		want := float32(0.5 + 0.5*n.Noise(float64(c[0])*f, float64(c[1])*f, float64(c[2])*f))
		if got := l.At(c[0], c[1], c[2]); got != want {
			t.Errorf("At(%v) = %v, want %v", c, got, want)
		}
	}
	if l.Data[1] != l.At(1, 0, 0) || l.Data[8] != l.At(0, 1, 0) || l.Data[64] != l.At(0, 0, 1) {
		t.Error("lattice data is not laid out x fastest, then y, then z")
	}
}

func TestGenerateDegenerateSize(t *testing.T) {
	l := Generate(DefaultSeed, 0, 0.1)
	if l.Size != 0 || len(l.Data) != 0 {
		t.Fatalf("size 0 produced %d cells", len(l.Data))
	}
	if v := l.Sample(mgl32.Vec3{0.5, 0.5, 0.5}); v != 0 {
		t.Errorf("Sample on empty lattice = %v, want 0", v)
	}
}

func TestGenerateParallelMatchesSequential(t *testing.T) {
	seq := Generate(DefaultSeed, 16, 0.08)
	for _, workers := range []int{0, 1, 3, 64} {
		par, err := GenerateParallel(context.Background(), DefaultSeed, 16, 0.08, workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		for i := range seq.Data {
			if seq.Data[i] != par.Data[i] {
				t.Fatalf("workers=%d: cell %d differs: %v vs %v", workers, i, seq.Data[i], par.Data[i])
			}
		}
	}
}

func TestGenerateParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := GenerateParallel(ctx, DefaultSeed, 16, 0.08, 2); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

// TestSampleTexelCenters verifies exact reads at texel centers
func TestSampleTexelCenters(t *testing.T) {
	l := Generate(DefaultSeed, 8, 0.23)
	s := float32(l.Size)
	for _, c := range [][3]int{{0, 0, 0}, {2, 3, 4}, {7, 7, 7}} {
		p := mgl32.Vec3{(float32(c[0]) + 0.5) / s, (float32(c[1]) + 0.5) / s, (float32(c[2]) + 0.5) / s}
		got := l.Sample(p)
		want := l.At(c[0], c[1], c[2])
		if math.Abs(float64(got-want)) > 1e-5 {
			t.Errorf("Sample at center of %v = %v, want %v", c, got, want)
		}
	}
}

// TestSampleClampsToEdge verifies out-of-range reads clamp instead of wrapping
func TestSampleClampsToEdge(t *testing.T) {
	l := Generate(DefaultSeed, 8, 0.23)
	tests := []struct {
		p    mgl32.Vec3
		cell [3]int
	}{
		{mgl32.Vec3{-3, 0.5 / 8, 0.5 / 8}, [3]int{0, 0, 0}},
		{mgl32.Vec3{5, 0.5 / 8, 0.5 / 8}, [3]int{7, 0, 0}},
		{mgl32.Vec3{1, 1, 1}, [3]int{7, 7, 7}},
		{mgl32.Vec3{0, 0, 0}, [3]int{0, 0, 0}},
	}
	for _, tt := range tests {
		got := l.Sample(tt.p)
		want := l.At(tt.cell[0], tt.cell[1], tt.cell[2])
		if math.Abs(float64(got-want)) > 1e-5 {
			t.Errorf("Sample(%v) = %v, want edge cell %v = %v", tt.p, got, tt.cell, want)
		}
	}
}

// TestSampleContinuity samples just below and above lattice boundaries
func TestSampleContinuity(t *testing.T) {
	l := Generate(DefaultSeed, 16, 0.08)
	const eps = 1e-4
	s := float32(l.Size)
	for k := 1; k < l.Size; k++ {
		for _, edge := range []float32{float32(k) / s, (float32(k) + 0.5) / s} {
			below := l.Sample(mgl32.Vec3{edge - eps, 0.37, 0.61})
			above := l.Sample(mgl32.Vec3{edge + eps, 0.37, 0.61})
			// neighbouring cells differ by at most 1, so the step is bounded by 2*eps*Size
			if d := math.Abs(float64(above - below)); d > float64(2*eps*s)+1e-5 {
				t.Errorf("jump of %v across x=%v", d, edge)
			}
		}
	}
}

func TestSampleRange(t *testing.T) {
	l := Generate(DefaultSeed, 16, 0.08)
	for i := 0; i < 500; i++ {
		f := float32(i)
		p := mgl32.Vec3{f * 0.0137, f * 0.0291, f * 0.0077}
		if v := l.Sample(p); v < 0 || v > 1 {
			t.Errorf("Sample(%v) = %v, expected in [0,1]", p, v)
		}
	}
}

func TestStats(t *testing.T) {
	l := Generate(DefaultSeed, 16, 0.08)
	st := l.Stats()
	if st.Min < 0 || st.Max > 1 || st.Min > st.Max {
		t.Errorf("bad min/max: %+v", st)
	}
	if st.Mean < st.Min || st.Mean > st.Max {
		t.Errorf("mean outside [min,max]: %+v", st)
	}
	if st.StdDev <= 0 {
		t.Errorf("expected some variation, got %+v", st)
	}

	if (&Lattice{}).Stats() != (LatticeStats{}) {
		t.Error("empty lattice should report zero stats")
	}
}

func BenchmarkGenerate64(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Generate(DefaultSeed, 64, 0.08)
	}
}
