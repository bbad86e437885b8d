package synth

import "math/rand/v2"

// RGen is the random generator of an instance. It is deterministic for a
// given seed and does not allocate.
type RGen struct {
	pcg rand.PCG
}

// Init seeds the generator.
func (r *RGen) Init(seed uint64) {
	r.pcg.Seed(seed, seed^0x9e3779b97f4a7c15)
}

func (r *RGen) Uint64() uint64 {
	return r.pcg.Uint64()
}

// Frand returns a value in [0, 1).
func (r *RGen) Frand() float32 {
	return float32(r.pcg.Uint64()>>40) / (1 << 24)
}

// Frand2 returns a value in [-1, 1).
func (r *RGen) Frand2() float32 {
	return 2*r.Frand() - 1
}
