package usecase

import (
	"context"
	"sync"
	"time"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
	applogger "TreasureEngine/pkg/logger"
)

// TickRecorder copies a live trade stream into a TickStore so it can be replayed later.
// Ticks are written in batches, flushed on size or interval.
type TickRecorder struct {
	stream    domrepo.MarketStream
	store     domrepo.TickStore
	metrics   domrepo.Metrics
	batchSize int
	interval  time.Duration
	l         *applogger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	written int
}

func NewTickRecorder(stream domrepo.MarketStream, store domrepo.TickStore, metrics domrepo.Metrics, batchSize int, interval time.Duration) *TickRecorder {
	if batchSize <= 0 {
		batchSize = 500
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &TickRecorder{
		stream:    stream,
		store:     store,
		metrics:   metrics,
		batchSize: batchSize,
		interval:  interval,
		l:         applogger.Nop(),
	}
}

func (r *TickRecorder) SetLogger(l *applogger.Logger) {
	if l != nil {
		r.l = l
	}
}

// IsConnected returns true if the market stream is connected.
func (r *TickRecorder) IsConnected() bool { return r.stream.IsConnected() }

// Written is the number of ticks handed to the store so far.
func (r *TickRecorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Start connects, subscribes and begins recording in the background.
func (r *TickRecorder) Start(ctx context.Context) error {
	if err := r.stream.Connect(ctx); err != nil {
		return err
	}
	if err := r.stream.Subscribe(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.mu.Lock()
	r.cancel, r.done = cancel, done
	r.mu.Unlock()

	go func() {
		defer close(done)
		r.loop(ctx)
	}()
	return nil
}

// Shutdown stops recording, flushes what is buffered and closes the stream.
func (r *TickRecorder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return r.stream.Close()
}

func (r *TickRecorder) loop(ctx context.Context) {
	batch := make([]models.PriceTick, 0, r.batchSize)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		ticks, errs := r.stream.Read(ctx)
		batch = r.drain(ctx, ticks, errs, ticker.C, batch)
		if ctx.Err() != nil {
			break
		}
		r.recordError("recorder_stream")
		if err := r.stream.Reconnect(ctx); err != nil && ctx.Err() == nil {
			r.l.Warn("recorder reconnect failed", applogger.Error(err))
		}
	}

	// final flush outlives the cancelled context
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.flush(flushCtx, batch)
}

// drain consumes one Read session until the stream fails or ctx ends.
func (r *TickRecorder) drain(ctx context.Context, ticks <-chan models.PriceTick, errs <-chan error, tick <-chan time.Time, batch []models.PriceTick) []models.PriceTick {
	for {
		select {
		case <-ctx.Done():
			// keep whatever was already buffered
			for {
				select {
				case t, ok := <-ticks:
					if !ok {
						return batch
					}
					batch = append(batch, t)
				default:
					return batch
				}
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.l.Warn("recorder stream error", applogger.Error(err))
			return batch
		case t, ok := <-ticks:
			if !ok {
				return batch
			}
			batch = append(batch, t)
			if len(batch) >= r.batchSize {
				batch = r.flush(ctx, batch)
			}
		case <-tick:
			batch = r.flush(ctx, batch)
		}
	}
}

// flush writes batch and returns it emptied. A failed batch is dropped.
func (r *TickRecorder) flush(ctx context.Context, batch []models.PriceTick) []models.PriceTick {
	if len(batch) == 0 {
		return batch
	}
	start := time.Now()
	if err := r.store.StoreBatch(ctx, batch); err != nil {
		r.recordError("recorder_store")
		r.l.Error("store tick batch", applogger.Int("size", len(batch)), applogger.Error(err))
	} else {
		r.mu.Lock()
		r.written += len(batch)
		r.mu.Unlock()
	}
	if r.metrics != nil {
		r.metrics.RecordLatency("recorder_flush", time.Since(start).Seconds())
	}
	return batch[:0]
}

func (r *TickRecorder) recordError(kind string) {
	if r.metrics != nil {
		r.metrics.RecordError(kind)
	}
}
