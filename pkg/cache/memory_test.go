package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func newTestCache(size int) (*MemoryCache, *fakeNow) {
	clk := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(WithMemoryMaxSize(size), WithMemoryCleanup(0), WithMemoryClock(clk.now))
	return c, clk
}

func TestMemoryCacheRoundTripsJSON(t *testing.T) {
	c, _ := newTestCache(10)
	defer c.Close()
	ctx := context.Background()

	type report struct {
		Fingerprint string  `json:"fingerprint"`
		Gap         float64 `json:"gap"`
	}
	require.NoError(t, c.Set(ctx, "run:abc", report{Fingerprint: "abc", Gap: 0.57}, time.Minute))

	var got report
	require.NoError(t, c.Get(ctx, "run:abc", &got))
	assert.Equal(t, report{Fingerprint: "abc", Gap: 0.57}, got)

	var raw string
	require.NoError(t, c.Get(ctx, "run:abc", &raw))
	assert.JSONEq(t, `{"fingerprint":"abc","gap":0.57}`, raw)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c, clk := newTestCache(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	assert.Equal(t, 1, c.Len())

	clk.t = clk.t.Add(2 * time.Second)
	var v string
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, clk := newTestCache(2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	clk.t = clk.t.Add(time.Millisecond)
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	clk.t = clk.t.Add(time.Millisecond)
	var v string
	require.NoError(t, c.Get(ctx, "a", &v))
	clk.t = clk.t.Add(time.Millisecond)
	require.NoError(t, c.Set(ctx, "c", "3", 0))

	assert.ErrorIs(t, c.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, c.Get(ctx, "a", &v))
	assert.Equal(t, "1", v)
}

func TestMemoryCacheDefaultTTL(t *testing.T) {
	clk := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(clk.now), WithMemoryDefaultTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	clk.t = clk.t.Add(59 * time.Minute)
	var v string
	require.NoError(t, c.Get(ctx, "k", &v))
	clk.t = clk.t.Add(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "canary:run:abc", GenerateKey("canary:run", "abc"))
}
