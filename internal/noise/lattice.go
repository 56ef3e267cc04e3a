package noise

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Lattice is a dense Size³ scalar field with values in [0,1].
// Data is laid out x fastest, then y, then z, which is the order
// glTexImage3D expects.
type Lattice struct {
	Size int
	Data []float32
}

// LatticeStats summarises the value distribution of a lattice.
type LatticeStats struct {
	Min, Max     float64
	Mean, StdDev float64
}

// Generate evaluates gradient noise at every cell (x*f, y*f, z*f) and remaps
// it to [0,1]. Callers must pass size >= 1 and frequency > 0; a size below 1
// yields an empty lattice and a non-positive frequency a degenerate one.
func Generate(seed uint32, size int, frequency float64) *Lattice {
	l := newLattice(size)
	n := NewPerlin3D(seed)
	for z := 0; z < l.Size; z++ {
		l.fillSlab(n, z, frequency)
	}
	return l
}

// GenerateParallel produces the same lattice as Generate, splitting z slabs
// across workers. workers <= 0 uses GOMAXPROCS.
func GenerateParallel(ctx context.Context, seed uint32, size int, frequency float64, workers int) (*Lattice, error) {
	l := newLattice(size)
	if l.Size == 0 {
		return l, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > l.Size {
		workers = l.Size
	}

	// the table is read-only once built, so workers share it
	n := NewPerlin3D(seed)
	slabs := make(chan int, l.Size)
	for z := 0; z < l.Size; z++ {
		slabs <- z
	}
	close(slabs)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for z := range slabs {
				if ctx.Err() != nil {
					return
				}
				l.fillSlab(n, z, frequency)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

func newLattice(size int) *Lattice {
	if size < 1 {
		return &Lattice{}
	}
	return &Lattice{Size: size, Data: make([]float32, size*size*size)}
}

func (l *Lattice) fillSlab(n *Perlin3D, z int, frequency float64) {
	s := l.Size
	idx := z * s * s
	for y := 0; y < s; y++ {
		for x := 0; x < s; x++ {
			v := 0.5 + 0.5*n.Noise(float64(x)*frequency, float64(y)*frequency, float64(z)*frequency)
			l.Data[idx] = float32(math.Min(1, math.Max(0, v)))
			idx++
		}
	}
}

func (l *Lattice) index(x, y, z int) int {
	return x + y*l.Size + z*l.Size*l.Size
}

// At returns the cell value at integer coordinates. Coordinates outside
// [0,Size) clamp to the nearest edge.
func (l *Lattice) At(x, y, z int) float32 {
	if l.Size == 0 {
		return 0
	}
	return l.Data[l.index(clampIndex(x, l.Size), clampIndex(y, l.Size), clampIndex(z, l.Size))]
}

// Sample reads the lattice at a continuous point in normalized texture space
// ([0,1] spans the whole lattice) with trilinear filtering and edge clamping,
// matching a GL_LINEAR / GL_CLAMP_TO_EDGE 3D texture fetch.
func (l *Lattice) Sample(p mgl32.Vec3) float32 {
	if l.Size == 0 {
		return 0
	}
	s := float32(l.Size)

	// texel centers sit at (i+0.5)/Size
	cx := p.X()*s - 0.5
	cy := p.Y()*s - 0.5
	cz := p.Z()*s - 0.5

	x0f := float32(math.Floor(float64(cx)))
	y0f := float32(math.Floor(float64(cy)))
	z0f := float32(math.Floor(float64(cz)))
	tx, ty, tz := cx-x0f, cy-y0f, cz-z0f

	x0, y0, z0 := int(x0f), int(y0f), int(z0f)
	x1, y1, z1 := x0+1, y0+1, z0+1

	c000 := l.At(x0, y0, z0)
	c100 := l.At(x1, y0, z0)
	c010 := l.At(x0, y1, z0)
	c110 := l.At(x1, y1, z0)
	c001 := l.At(x0, y0, z1)
	c101 := l.At(x1, y0, z1)
	c011 := l.At(x0, y1, z1)
	c111 := l.At(x1, y1, z1)

	i00 := lerp32(c000, c100, tx)
	i10 := lerp32(c010, c110, tx)
	i01 := lerp32(c001, c101, tx)
	i11 := lerp32(c011, c111, tx)

	return lerp32(lerp32(i00, i10, ty), lerp32(i01, i11, ty), tz)
}

// Stats computes min, max, mean and standard deviation over every cell.
func (l *Lattice) Stats() LatticeStats {
	if len(l.Data) == 0 {
		return LatticeStats{}
	}
	xs := make([]float64, len(l.Data))
	for i, v := range l.Data {
		xs[i] = float64(v)
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return LatticeStats{
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Mean:   mean,
		StdDev: std,
	}
}

func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}

func lerp32(a, b, t float32) float32 {
	return a + t*(b-a)
}
