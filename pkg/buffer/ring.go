package buffer

// Ring keeps the most recent values pushed into it, up to a fixed capacity.
// It is not safe for concurrent use.
type Ring[T any] struct {
	data     []T
	capacity int
	size     int
	head     int // next write position
}

// New creates a ring holding at most capacity values.
// A non-positive capacity is treated as 1.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{
		data:     make([]T, capacity),
		capacity: capacity,
	}
}

// Push adds v, evicting the oldest value when full.
func (r *Ring[T]) Push(v T) {
	r.data[r.head] = v
	r.head = (r.head + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

// Items returns the held values, oldest first.
func (r *Ring[T]) Items() []T {
	result := make([]T, r.size)
	start := (r.head - r.size + r.capacity) % r.capacity
	for i := range result {
		result[i] = r.data[(start+i)%r.capacity]
	}
	return result
}

// Len returns the number of values held.
func (r *Ring[T]) Len() int { return r.size }
