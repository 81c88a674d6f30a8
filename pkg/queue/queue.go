package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// QueueService enqueues work. It returns the id assigned to the message.
type QueueService interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) (string, error)
}

type QueueConfig struct {
	Workers      int           // concurrent workers
	RetryLimit   int           // retries after the first attempt
	RetryDelay   time.Duration // delay before a failed message is retried
	PollInterval time.Duration // how often due retries are moved back to the queue
}

// Message is the envelope stored in Redis.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`
	LastError string          `json:"last_error,omitempty"`
}

type messageIDKey struct{}

// WithMessageID stores the id of the message being handled in ctx.
func WithMessageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, messageIDKey{}, id)
}

// MessageIDFrom returns the id stored by WithMessageID, or "".
func MessageIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(messageIDKey{}).(string)
	return id
}

// DecodePayload decodes a job payload into dest. Raw JSON is decoded as is; any other
// value is round-tripped through JSON, so fields already set on dest survive unless the
// payload names them.
func DecodePayload(payload interface{}, dest interface{}) error {
	var raw []byte
	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	case nil:
		return fmt.Errorf("empty payload")
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode payload %T: %w", payload, err)
		}
		raw = b
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
