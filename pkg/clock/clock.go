// Package clock provides the injected time source used by deterministic runs.
package clock

import "sync"

// Clock returns the current time in milliseconds. Implementations must be monotonic.
type Clock interface {
	Now() int64
}

// Counter is a monotonic clock that advances by a fixed step on every read.
type Counter struct {
	mu   sync.Mutex
	next int64
	step int64
}

// NewCounter returns a counter whose first Now() is start.
func NewCounter(start, step int64) *Counter {
	if step <= 0 {
		step = 1
	}
	return &Counter{next: start, step: step}
}

func (c *Counter) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.next
	c.next += c.step
	return v
}

// Fixed always returns the same instant. Useful when scoring many signals against one "now".
type Fixed int64

func (f Fixed) Now() int64 { return int64(f) }
