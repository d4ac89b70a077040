package ring

import (
	"runtime"
	"sync/atomic"
)

// MPSC is a multi-producer, single-consumer queue built on top of SPSC: a
// CAS'd spinlock serializes concurrent producers around the SPSC push path;
// the consumer path is untouched and remains wait-free.
//
// Acceptable for low producer counts; above roughly eight producers a
// multi-slot Michael-Scott/Vyukov queue would be a better fit, since the
// busy-wait lock here can starve a consumer sharing a core with a spinning
// producer.
type MPSC[T any] struct {
	inner      *SPSC[T]
	enqueueLok uint32
}

// NewMPSC constructs an MPSC queue with the given power-of-two capacity.
func NewMPSC[T any](capacity int) *MPSC[T] {
	return &MPSC[T]{inner: NewSPSC[T](capacity)}
}

// TryPush pushes an item; safe for concurrent callers. Spins on a CAS'd
// lock rather than blocking, matching the Rust original's spin_loop hint.
func (q *MPSC[T]) TryPush(item T) bool {
	for {
		if atomic.CompareAndSwapUint32(&q.enqueueLok, 0, 1) {
			ok := q.inner.TryPush(item)
			atomic.StoreUint32(&q.enqueueLok, 0)
			return ok
		}
		runtime.Gosched()
	}
}

// TryPop pops an item. Only one goroutine may call TryPop.
func (q *MPSC[T]) TryPop() (T, bool) {
	return q.inner.TryPop()
}

func (q *MPSC[T]) IsEmpty() bool { return q.inner.IsEmpty() }
func (q *MPSC[T]) Len() int      { return q.inner.Len() }
func (q *MPSC[T]) Capacity() int { return q.inner.Capacity() }
