package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterMonotonic(t *testing.T) {
	c := NewCounter(10, 5)
	assert.Equal(t, int64(10), c.Now())
	assert.Equal(t, int64(15), c.Now())
	assert.Equal(t, int64(20), c.Now())
}

func TestCounterInvalidStep(t *testing.T) {
	c := NewCounter(0, 0)
	assert.Equal(t, int64(0), c.Now())
	assert.Equal(t, int64(1), c.Now())
}

func TestFixed(t *testing.T) {
	var c Clock = Fixed(1700000000000)
	assert.Equal(t, c.Now(), c.Now())
}
