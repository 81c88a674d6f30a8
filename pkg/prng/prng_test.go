package prng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXorshift32KnownSequence(t *testing.T) {
	g := NewXorshift32(1)
	// 1 -> 270369 -> 67634689 -> 2647435461
	require.Equal(t, uint32(270369), g.Next())
	require.Equal(t, uint32(67634689), g.Next())
	require.Equal(t, uint32(2647435461), g.Next())
}

func TestXorshift32SameSeedSameSequence(t *testing.T) {
	a, b := New(5201), New(5201)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestXorshift32ZeroSeed(t *testing.T) {
	g := NewXorshift32(0)
	assert.NotEqual(t, uint32(0), g.Next())
	assert.Equal(t, AlgorithmXorshift32V1, g.Algorithm())
}

func TestFloat64Range(t *testing.T) {
	g := New(42)
	for i := 0; i < 1000; i++ {
		v := g.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}
