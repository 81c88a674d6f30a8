package prng

// AlgorithmXorshift32V1 identifies the only generator shipped in this module.
// The output sequence for a given seed is part of the report contract.
const AlgorithmXorshift32V1 = "xorshift32/v1"

// zeroSeedReplacement is used when a caller seeds with 0, which is a fixed point of xorshift.
const zeroSeedReplacement uint32 = 0x9E3779B9

// Generator is a seeded deterministic pseudo-random source.
type Generator interface {
	// Algorithm returns the versioned algorithm name.
	Algorithm() string
	// Next advances the state and returns the new 32-bit value.
	Next() uint32
	// Float64 returns the next value scaled into [0, 1).
	Float64() float64
}

// Xorshift32 implements Generator with Marsaglia's 13/17/5 triple.
type Xorshift32 struct {
	state uint32
}

// NewXorshift32 creates a generator for the given seed.
func NewXorshift32(seed uint32) *Xorshift32 {
	if seed == 0 {
		seed = zeroSeedReplacement
	}
	return &Xorshift32{state: seed}
}

// New returns the default generator for seed.
func New(seed uint32) Generator {
	return NewXorshift32(seed)
}

func (x *Xorshift32) Algorithm() string { return AlgorithmXorshift32V1 }

func (x *Xorshift32) Next() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s
	return s
}

func (x *Xorshift32) Float64() float64 {
	return float64(x.Next()) / 4294967296.0
}
