package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"TreasureEngine/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStream serves one batch of ticks per Read session. Every session but the last
// ends as soon as its ticks are drained.
type scriptedStream struct {
	mu         sync.Mutex
	sessions   [][]models.PriceTick
	reconnects int
	closed     bool
}

func (s *scriptedStream) Connect(context.Context) error   { return nil }
func (s *scriptedStream) Subscribe(context.Context) error { return nil }
func (s *scriptedStream) IsConnected() bool               { return true }

func (s *scriptedStream) Read(ctx context.Context) (<-chan models.PriceTick, <-chan error) {
	s.mu.Lock()
	var next []models.PriceTick
	if len(s.sessions) > 0 {
		next, s.sessions = s.sessions[0], s.sessions[1:]
	}
	last := len(s.sessions) == 0
	s.mu.Unlock()

	ticks := make(chan models.PriceTick, len(next))
	errs := make(chan error, 1)
	for _, t := range next {
		ticks <- t
	}
	if !last {
		close(ticks)
		close(errs)
		return ticks, errs
	}
	go func() {
		<-ctx.Done()
		close(ticks)
		close(errs)
	}()
	return ticks, errs
}

func (s *scriptedStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return nil
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type memTickStore struct {
	mu      sync.Mutex
	batches [][]models.PriceTick
}

func (m *memTickStore) Init(context.Context) error   { return nil }
func (m *memTickStore) Health(context.Context) error { return nil }

func (m *memTickStore) StoreBatch(_ context.Context, ticks []models.PriceTick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, append([]models.PriceTick(nil), ticks...))
	return nil
}

func (m *memTickStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func ticksFor(symbol string, n int) []models.PriceTick {
	out := make([]models.PriceTick, n)
	for i := range out {
		out[i] = models.PriceTick{TsMs: fixtureStartMs + int64(i), Symbol: symbol, Price: 100 + float64(i), Volume: 1}
	}
	return out
}

func TestTickRecorderBatchesAcrossReconnects(t *testing.T) {
	stream := &scriptedStream{sessions: [][]models.PriceTick{ticksFor("BTCUSDT", 5), ticksFor("ETHUSDT", 4)}}
	store := &memTickStore{}
	m := newFakeMetrics()
	rec := NewTickRecorder(stream, store, m, 2, time.Hour)

	require.NoError(t, rec.Start(context.Background()))
	require.Eventually(t, func() bool { return store.Count() >= 8 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, rec.Shutdown(ctx))

	// the odd tick left in the buffer is flushed on shutdown
	assert.Equal(t, 9, store.Count())
	assert.Equal(t, 9, rec.Written())
	for _, b := range store.batches {
		assert.LessOrEqual(t, len(b), 2)
	}
	assert.Equal(t, 1, stream.reconnects)
	assert.True(t, stream.closed)
	assert.Contains(t, m.Errors(), "recorder_stream")
}

func TestTickRecorderFlushesOnInterval(t *testing.T) {
	stream := &scriptedStream{sessions: [][]models.PriceTick{ticksFor("BTCUSDT", 3)}}
	store := &memTickStore{}
	rec := NewTickRecorder(stream, store, nil, 100, 10*time.Millisecond)

	require.NoError(t, rec.Start(context.Background()))
	require.Eventually(t, func() bool { return store.Count() == 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, rec.Shutdown(context.Background()))
}
