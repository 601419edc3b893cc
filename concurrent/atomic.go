package concurrent

import "sync/atomic"

// AtomicCounter is a simple goroutine-safe counter, used by components
// that need a monotonically advancing index without taking on a full
// Map or List (e.g. cluster.Discoverer's round-robin cursor).
type AtomicCounter struct {
	val int64
}

func NewAtomicCounter() *AtomicCounter {
	return &AtomicCounter{}
}

func (c *AtomicCounter) Get() int {
	return int(atomic.LoadInt64(&c.val))
}

func (c *AtomicCounter) Inc() int {
	return int(atomic.AddInt64(&c.val, 1))
}

func (c *AtomicCounter) Dec() int {
	return int(atomic.AddInt64(&c.val, -1))
}
