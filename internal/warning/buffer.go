package warning

import (
	"context"
	"sync"
)

// RingBuffer is a bounded, thread-safe buffer of warnings.
// When full, the oldest warnings are dropped to make room for new ones.
type RingBuffer struct {
	mu       sync.Mutex
	items    []Warning
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int

	dropped int64
	metrics *Metrics
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(capacity int, metrics *Metrics) *RingBuffer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &RingBuffer{
		items:    make([]Warning, capacity),
		capacity: capacity,
		metrics:  metrics,
	}
}

// Record is a Subscriber that enqueues every warning. It never fails.
func (b *RingBuffer) Record(_ context.Context, w Warning) error {
	b.Enqueue(w)
	return nil
}

// TryEnqueue adds a warning unless the buffer is full.
func (b *RingBuffer) TryEnqueue(w Warning) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		return false
	}
	b.push(w)
	return true
}

// Enqueue adds a warning, dropping the oldest if necessary.
func (b *RingBuffer) Enqueue(w Warning) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
		if b.metrics != nil {
			b.metrics.IncBufferDropped()
		}
	}
	b.push(w)
}

func (b *RingBuffer) push(w Warning) {
	b.items[b.head] = w
	b.head = (b.head + 1) % b.capacity
	b.count++
}

// DequeueBatch removes up to n warnings, oldest first.
func (b *RingBuffer) DequeueBatch(n int) []Warning {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	result := make([]Warning, n)
	for i := 0; i < n; i++ {
		result[i] = b.items[b.tail]
		b.items[b.tail] = Warning{}
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return result
}

// Requeue puts warnings back at the front, e.g. after a failed publish.
// Warnings that do not fit are dropped.
func (b *RingBuffer) Requeue(ws []Warning) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := len(ws) - 1; i >= 0; i-- {
		if b.count >= b.capacity {
			b.dropped += int64(i + 1)
			return
		}
		b.tail = (b.tail - 1 + b.capacity) % b.capacity
		b.items[b.tail] = ws[i]
		b.count++
	}
}

// Snapshot returns up to n of the most recent warnings, newest first,
// without removing them.
func (b *RingBuffer) Snapshot(n int) []Warning {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n <= 0 || n > b.count {
		n = b.count
	}
	out := make([]Warning, 0, n)
	for i := 0; i < n; i++ {
		idx := (b.head - 1 - i + b.capacity) % b.capacity
		out = append(out, b.items[idx])
	}
	return out
}

// Len returns the current number of warnings in the buffer.
func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Dropped returns the total number of dropped warnings.
func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
