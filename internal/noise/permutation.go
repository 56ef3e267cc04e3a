package noise

import "math/rand"

// PermutationSize is the number of distinct hash values in the table.
const PermutationSize = 256

// DefaultSeed is the seed used when none is configured.
const DefaultSeed uint32 = 237

// Permutation is a seeded shuffle of 0..255 stored twice in a row so that
// corner lookups like p[p[X]+Y+1] never need a modulo.
type Permutation struct {
	p [2 * PermutationSize]int
}

// NewPermutation builds the table for seed. Same seed, same table.
func NewPermutation(seed uint32) *Permutation {
	perm := &Permutation{}
	rng := rand.New(rand.NewSource(int64(seed)))

	var base [PermutationSize]int
	for i := range base {
		base[i] = i
	}

	// Fisher-Yates
	for i := len(base) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		base[i], base[j] = base[j], base[i]
	}

	for i := range PermutationSize {
		perm.p[i] = base[i]
		perm.p[i+PermutationSize] = base[i]
	}
	return perm
}

// At returns entry i of the doubled table. i must be in [0, 512).
func (perm *Permutation) At(i int) int {
	return perm.p[i]
}

// Values returns a copy of the full doubled table.
func (perm *Permutation) Values() [2 * PermutationSize]int {
	return perm.p
}
