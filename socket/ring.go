package socket

import (
	"errors"
	"math/bits"
	"runtime"
	"sync/atomic"
)

var (
	ErrFull  = errors.New("ring buffer is full")
	ErrEmpty = errors.New("ring buffer is empty")
)

// RingBuffer is a bounded lock-free MPMC queue.
type RingBuffer[T any] struct {
	buffer []slot[T]
	mask   uint64
	enqPos atomic.Uint64
	deqPos atomic.Uint64
}

type slot[T any] struct {
	sequence atomic.Uint64
	value    T
}

// NewRingBuffer creates a ring buffer holding at least size items. The
// capacity is rounded up to a power of 2.
func NewRingBuffer[T any](size int) *RingBuffer[T] {
	if size < 2 {
		size = 2
	}
	capacity := uint64(1) << bits.Len64(uint64(size-1))

	q := &RingBuffer[T]{
		buffer: make([]slot[T], capacity),
		mask:   capacity - 1,
	}
	for i := range q.buffer {
		q.buffer[i].sequence.Store(uint64(i))
	}
	return q
}

// Cap returns the number of slots.
func (q *RingBuffer[T]) Cap() int {
	return len(q.buffer)
}

// Enqueue adds an item to the ring buffer
func (q *RingBuffer[T]) Enqueue(val T) error {
	for {
		pos := q.enqPos.Load()
		slot := &q.buffer[pos&q.mask]

		seq := slot.sequence.Load()
		delta := int64(seq) - int64(pos)

		if delta == 0 {
			if q.enqPos.CompareAndSwap(pos, pos+1) {
				slot.value = val
				slot.sequence.Store(pos + 1)
				return nil
			}
		} else if delta < 0 {
			return ErrFull
		} else {
			runtime.Gosched()
		}
	}
}

// Dequeue removes and returns the oldest item
func (q *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	for {
		pos := q.deqPos.Load()
		slot := &q.buffer[pos&q.mask]

		seq := slot.sequence.Load()
		delta := int64(seq) - int64(pos+1)

		if delta == 0 {
			if q.deqPos.CompareAndSwap(pos, pos+1) {
				val := slot.value
				slot.value = zero
				slot.sequence.Store(pos + q.mask + 1)
				return val, nil
			}
		} else if delta < 0 {
			return zero, ErrEmpty
		} else {
			runtime.Gosched()
		}
	}
}
