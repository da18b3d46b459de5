// Package history keeps short, fixed-size windows of samples for charting.
package history

import "time"

const (
	// Window is how much wall-clock history a ring sized with CapacityFor covers.
	Window = 60 * time.Second
	// MinCapacity is the smallest ring CapacityFor returns.
	MinCapacity = 30

	minInterval = 500 * time.Millisecond
)

// CapacityFor returns the number of points needed to cover Window at the
// given sampling interval. Intervals below 500ms are treated as 500ms and
// the result never drops below MinCapacity.
func CapacityFor(interval time.Duration) int {
	if interval < minInterval {
		interval = minInterval
	}
	return max(int(Window/interval), MinCapacity)
}

// Ring is a fixed-capacity, insertion-ordered buffer. Once full, each Push
// evicts exactly the oldest element. It is not safe for concurrent use;
// owners serialize access.
type Ring[T any] struct {
	buf  []T
	head int // index of the oldest element
	n    int
}

// New returns an empty ring holding at most capacity elements.
// A capacity below 1 is raised to 1.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when the ring is full.
func (r *Ring[T]) Push(v T) {
	if r.n < len(r.buf) {
		r.buf[(r.head+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// Snapshot returns an independent copy of the contents, oldest first.
func (r *Ring[T]) Snapshot() []T {
	out := make([]T, r.n)
	for i := range r.n {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int { return r.n }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }
