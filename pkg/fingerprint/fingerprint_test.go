package fingerprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	B string            `json:"b"`
	A float64           `json:"a"`
	M map[string]string `json:"m"`
}

func TestOfStable(t *testing.T) {
	v := sample{B: "x", A: 1.5, M: map[string]string{"z": "1", "a": "2"}}
	f1, err := Of(v)
	require.NoError(t, err)
	f2, err := Of(v)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
	assert.Len(t, f1, 64)
}

func TestOfDiffers(t *testing.T) {
	a := MustOf(sample{A: 1})
	b := MustOf(sample{A: 2})
	assert.NotEqual(t, a, b)
}

func TestOfRejectsNaN(t *testing.T) {
	_, err := Of(sample{A: math.NaN()})
	assert.Error(t, err)
}

func TestBytesKnownDigest(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Bytes(nil))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.333333, Round(1.0/3.0))
	assert.Equal(t, 2.5, RoundTo(2.45, 1))
	assert.Equal(t, -2.5, RoundTo(-2.45, 1))
	assert.True(t, math.IsNaN(Round(math.NaN())))
	assert.Equal(t, 0.3, Round(0.1+0.2))
}
