package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	msgs      chan kafka.Message
	mu        sync.Mutex
	committed []int64
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func (r *fakeReader) Close() error { return nil }

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Messages() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func (w *fakeWriter) Close() error { return nil }

type recordingHandler struct {
	topic string
	fail  map[string]bool
	mu    sync.Mutex
	seen  []string
	ids   []string
}

func (h *recordingHandler) Topic() string { return h.topic }

func (h *recordingHandler) Handle(ctx context.Context, b []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, string(b))
	h.ids = append(h.ids, RequestIDFrom(ctx))
	if h.fail[string(b)] {
		return errors.New("rejected")
	}
	return nil
}

func (h *recordingHandler) Seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestConsumerCommitsAndDeadLetters(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Topic: "canary.run.requests", Offset: 1, Value: []byte("ok"),
			Headers: []kafka.Header{{Key: RequestIDHeader, Value: []byte("req-1")}}},
		kafka.Message{Topic: "canary.run.requests", Offset: 2, Value: []byte("bad")},
	)
	dlq := &fakeWriter{}
	h := &recordingHandler{topic: "canary.run.requests", fail: map[string]bool{"bad": true}}

	c := NewConsumerWithReaders(ConsumerConfig{
		WorkerCount: 1,
		BufferSize:  4,
		RetryMax:    1,
		BackoffMin:  time.Millisecond,
		BackoffMax:  2 * time.Millisecond,
		DLQTopic:    "canary.run.requests.dlq",
	}, func(*ConsumerConfig, string) Reader { return reader }, dlq)
	c.WithConsumerHook(NewHookChain(RequestIDHook{}))
	c.RegisterHandler(h)
	require.NoError(t, c.Start())

	require.Eventually(t, func() bool { return len(reader.Commits()) == 2 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))

	// "bad" is tried once and retried once.
	assert.Equal(t, []string{"ok", "bad", "bad"}, h.Seen())
	assert.Equal(t, "req-1", h.ids[0])
	assert.NotEmpty(t, h.ids[1])

	out := dlq.Messages()
	require.Len(t, out, 1)
	assert.Equal(t, "canary.run.requests.dlq", out[0].Topic)
	assert.Equal(t, "bad", string(out[0].Value))
	assert.Equal(t, "canary.run.requests", HeaderValue(out[0], "source_topic"))
}

func TestConsumerStartRequiresHandler(t *testing.T) {
	c := NewConsumerWithReaders(ConsumerConfig{}, func(*ConsumerConfig, string) Reader { return newFakeReader() }, nil)
	assert.Error(t, c.Start())
}

type panicHook struct{ NoopHook }

func (panicHook) BeforeHandle(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
	panic("boom")
}

func TestHookChainRecoversPanics(t *testing.T) {
	chain := NewHookChain(nil, panicHook{})
	_, _, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var he *HookError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "ERR_PANIC", he.Code)
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 80*time.Millisecond)
	}
}

func TestProducerEncodesAndTagsMessages(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w)

	err := p.PublishBatch(context.Background(), "canary.reports", []Message{
		{Key: []byte("fp-1"), Value: map[string]string{"status": "COMPLETED"}, Headers: map[string]string{RequestIDHeader: "req-9"}},
		{Key: []byte("fp-2"), Value: "raw"},
	})
	require.NoError(t, err)

	out := w.Messages()
	require.Len(t, out, 2)
	assert.Equal(t, "canary.reports", out[0].Topic)
	assert.JSONEq(t, `{"status":"COMPLETED"}`, string(out[0].Value))
	assert.Equal(t, "req-9", HeaderValue(out[0], RequestIDHeader))
	assert.Equal(t, "raw", string(out[1].Value))
}

type permanentHandler struct{ recordingHandler }

func (h *permanentHandler) Handle(ctx context.Context, b []byte) error {
	_ = h.recordingHandler.Handle(ctx, b)
	return Permanent(errors.New("malformed"))
}

func TestConsumerSkipsRetryOnPermanentError(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "canary.run.requests", Offset: 1, Value: []byte("junk")})
	dlq := &fakeWriter{}
	h := &permanentHandler{recordingHandler{topic: "canary.run.requests"}}

	c := NewConsumerWithReaders(ConsumerConfig{
		WorkerCount: 1,
		BufferSize:  2,
		RetryMax:    3,
		BackoffMin:  time.Millisecond,
		BackoffMax:  2 * time.Millisecond,
		DLQTopic:    "canary.run.requests.dlq",
	}, func(*ConsumerConfig, string) Reader { return reader }, dlq)
	c.RegisterHandler(h)
	require.NoError(t, c.Start())

	require.Eventually(t, func() bool { return len(reader.Commits()) == 1 }, 2*time.Second, 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))

	assert.Equal(t, []string{"junk"}, h.Seen())
	require.Len(t, dlq.Messages(), 1)
	assert.True(t, IsPermanent(Permanent(errors.New("x"))))
	assert.False(t, IsPermanent(errors.New("x")))
	assert.Nil(t, Permanent(nil))
}
