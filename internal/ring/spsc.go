// Package ring implements the fixed-capacity, power-of-two, cache-padded
// SPSC/MPSC ring buffer used to decouple producers (a network feed) from
// the hedge engine.
//
// Ordering discipline: relaxed producer-local loads, acquire/release across
// the producer/consumer boundary. Storage uses a generic value slice rather
// than boxing each slot behind a pointer: Tick is a small, fixed-size value
// type, so storing it by value avoids the per-push heap allocation that
// pointer-boxing would otherwise force.
package ring

import "sync/atomic"

type padded struct {
	v uint64
	_ [56]byte
}

// SPSC is a single-producer, single-consumer lock-free ring buffer.
// Capacity must be a power of two. Wait-free for both producer and
// consumer; zero allocation after construction.
type SPSC[T any] struct {
	buf  []T
	mask uint64
	head padded // consumer-owned
	tail padded // producer-owned
}

// NewSPSC constructs a ring buffer. Panics if capacity is not a power of
// two, matching the Rust original's construction-time assertion.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a power of two")
	}
	return &SPSC[T]{
		buf:  make([]T, capacity),
		mask: uint64(capacity - 1),
	}
}

// TryPush pushes an item. Returns false if the ring is full.
//
// Ordering: tail is loaded relaxed (only this goroutine ever writes it),
// head is loaded with acquire semantics to observe the consumer's most
// recent release-store before deciding "full". The slot write happens
// before the release-store of the new tail, making the item visible to
// the consumer only after it is fully written.
func (r *SPSC[T]) TryPush(item T) bool {
	tail := atomic.LoadUint64(&r.tail.v)
	next := (tail + 1) & r.mask
	head := atomic.LoadUint64(&r.head.v)
	if next == head {
		return false
	}
	r.buf[tail] = item
	atomic.StoreUint64(&r.tail.v, next)
	return true
}

// TryPop pops an item. Returns the zero value and false if the ring is
// empty. See TryPush for the ordering discipline (mirrored).
func (r *SPSC[T]) TryPop() (T, bool) {
	var zero T
	head := atomic.LoadUint64(&r.head.v)
	tail := atomic.LoadUint64(&r.tail.v)
	if head == tail {
		return zero, false
	}
	item := r.buf[head]
	next := (head + 1) & r.mask
	atomic.StoreUint64(&r.head.v, next)
	return item, true
}

// IsEmpty reports whether the ring is (momentarily) empty.
func (r *SPSC[T]) IsEmpty() bool {
	head := atomic.LoadUint64(&r.head.v)
	tail := atomic.LoadUint64(&r.tail.v)
	return head == tail
}

// IsFull reports whether the ring is (momentarily) full.
func (r *SPSC[T]) IsFull() bool {
	tail := atomic.LoadUint64(&r.tail.v)
	next := (tail + 1) & r.mask
	head := atomic.LoadUint64(&r.head.v)
	return next == head
}

// Len returns an approximate item count; concurrent access to the ring
// may make this stale the instant it returns.
func (r *SPSC[T]) Len() int {
	tail := atomic.LoadUint64(&r.tail.v)
	head := atomic.LoadUint64(&r.head.v)
	if tail >= head {
		return int(tail - head)
	}
	return int(uint64(len(r.buf)) - head + tail)
}

// Capacity returns the fixed ring capacity.
func (r *SPSC[T]) Capacity() int {
	return len(r.buf)
}
