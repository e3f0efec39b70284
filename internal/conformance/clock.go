package conformance

import "sync/atomic"

// SeqClock hands out strictly increasing sequence numbers.
type SeqClock interface {
	Next() int64
}

// Clock is a monotonic logical clock stamping every MethodResult, so stored
// results keep their execution order without relying on wall time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
