package noise

import "math"

// fade is the quintic 6t^5 - 15t^4 + 10t^3. First and second derivatives are
// zero at both ends, so neighbouring cells meet without visible seams.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// grad dots the offset (x, y, z) with one of 16 edge directions picked from
// the low 4 bits of hash.
func grad(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := y
	if h < 8 {
		u = x
	}
	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

// Perlin3D evaluates 3D gradient noise over a fixed permutation table.
type Perlin3D struct {
	perm *Permutation
}

// NewPerlin3D creates a gradient noise source for seed.
func NewPerlin3D(seed uint32) *Perlin3D {
	return &Perlin3D{perm: NewPermutation(seed)}
}

// Noise returns gradient noise at (x, y, z), roughly in [-1, 1].
func (n *Perlin3D) Noise(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)

	// floor, not truncation: -0.5 belongs to cell -1, not cell 0
	X := int(fx) & 255
	Y := int(fy) & 255
	Z := int(fz) & 255

	x -= fx
	y -= fy
	z -= fz

	u, v, w := fade(x), fade(y), fade(z)

	p := n.perm
	A := p.At(X) + Y
	AA := p.At(A) + Z
	AB := p.At(A+1) + Z
	B := p.At(X+1) + Y
	BA := p.At(B) + Z
	BB := p.At(B+1) + Z

	// x first, then y, then z
	x00 := lerp(grad(p.At(AA), x, y, z), grad(p.At(BA), x-1, y, z), u)
	x10 := lerp(grad(p.At(AB), x, y-1, z), grad(p.At(BB), x-1, y-1, z), u)
	x01 := lerp(grad(p.At(AA+1), x, y, z-1), grad(p.At(BA+1), x-1, y, z-1), u)
	x11 := lerp(grad(p.At(AB+1), x, y-1, z-1), grad(p.At(BB+1), x-1, y-1, z-1), u)

	y0 := lerp(x00, x10, v)
	y1 := lerp(x01, x11, v)

	return lerp(y0, y1, w)
}
