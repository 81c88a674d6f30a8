package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBucketDrainsAndRefills(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := New(2, 1, WithClock(clk.now))

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys have separate buckets")

	clk.advance(500 * time.Millisecond)
	assert.False(t, l.Allow("a"))
	clk.advance(500 * time.Millisecond)
	assert.True(t, l.Allow("a"))
}

func TestRefillCapsAtCapacity(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	l := New(1, 10, WithClock(clk.now))
	assert.True(t, l.Allow("a"))
	clk.advance(time.Hour)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestPrune(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	l := New(3, 1, WithClock(clk.now))
	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 0, l.Prune())
	clk.advance(2 * time.Second)
	assert.Equal(t, 2, l.Prune())
}
