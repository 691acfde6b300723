package comm

import "sync/atomic"

// DefaultRingCapacity is the receive buffer size used by the firmware.
const DefaultRingCapacity = 128

// ByteSource is the consumer side of a byte queue.
type ByteSource interface {
	// Pop removes and returns the oldest byte, false if empty.
	Pop() (byte, bool)
}

// RingBuffer is a lock-free single-producer/single-consumer byte queue.
//
// Push must only be called from the producer goroutine (the receiver)
// and Pop/Clear only from the consumer goroutine (the control task).
// The write counter is only stored by the producer and the read counter
// only by the consumer, each with a single atomic store, so the producer
// and the consumer always observe the unread count in [0, Cap()].
//
// When the buffer is full, Push drops the newest byte and counts an overrun.
// Unread bytes are never overwritten.
type RingBuffer struct {
	buf  []byte
	mask uint32

	write    atomic.Uint32 // producer owned
	read     atomic.Uint32 // consumer owned
	overruns atomic.Uint64 // producer owned
}

// NewRingBuffer creates a RingBuffer. The capacity is rounded up to
// a power of two so indices wrap with the free running counters.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &RingBuffer{buf: make([]byte, size), mask: uint32(size - 1)}
}

// Cap returns the capacity.
func (r *RingBuffer) Cap() int {
	return len(r.buf)
}

// Push appends a byte, returns false if the buffer is full.
func (r *RingBuffer) Push(b byte) bool {
	w := r.write.Load()
	if w-r.read.Load() >= uint32(len(r.buf)) {
		r.overruns.Add(1)
		return false
	}
	r.buf[w&r.mask] = b
	// publishes the byte written above.
	r.write.Store(w + 1)
	return true
}

// Pop implements ByteSource.
func (r *RingBuffer) Pop() (byte, bool) {
	rd := r.read.Load()
	if rd == r.write.Load() {
		return 0, false
	}
	b := r.buf[rd&r.mask]
	r.read.Store(rd + 1)
	return b, true
}

// Available returns the number of unread bytes. It's exact on the producer
// and the consumer. Other goroutines get an estimate in [0, Cap()] as the
// counters may move between the two loads.
func (r *RingBuffer) Available() int {
	n := int(int32(r.write.Load() - r.read.Load()))
	switch {
	case n < 0:
		return 0
	case n > len(r.buf):
		return len(r.buf)
	}
	return n
}

// Clear discards all unread bytes. Consumer side only.
func (r *RingBuffer) Clear() {
	r.read.Store(r.write.Load())
}

// Overruns returns the number of bytes dropped because the buffer was full.
func (r *RingBuffer) Overruns() uint64 {
	return r.overruns.Load()
}
