// unsafering implements a ring buffer that has no concurrency or parallelism
// support. It should only be used from a single goroutine, such as a
// bubbletea Update loop.
package unsafering

import "iter"

type Buffer[T any] struct {
	data  []T
	count int
	write int
}

func New[T any](size int) *Buffer[T] {
	return &Buffer[T]{data: make([]T, size)}
}

// Push appends v, overwriting the oldest element once the buffer is full.
func (r *Buffer[T]) Push(v T) {
	r.data[r.write] = v
	r.write = (r.write + 1) % len(r.data)
	r.count = min(r.count+1, len(r.data))
}

func (r *Buffer[T]) Len() int {
	return r.count
}

func (r *Buffer[T]) Cap() int {
	return len(r.data)
}

func (r *Buffer[T]) Reset() {
	clear(r.data)
	r.count = 0
	r.write = 0
}

// Latest returns the most recently pushed element.
func (r *Buffer[T]) Latest() (val T, ok bool) {
	if r.count == 0 {
		return val, false
	}
	return r.data[(r.write-1+len(r.data))%len(r.data)], true
}

// All iterates over the buffer contents, oldest to newest.
func (r *Buffer[T]) All() iter.Seq[T] {
	return r.Recent(r.count)
}

// Recent iterates over the most recent n items, oldest to newest.
//
// Example usage:
//
//	for v := range buf.Recent(5) {
//	    fmt.Println(v)
//	}
func (r *Buffer[T]) Recent(n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		n := min(n, r.count)
		if n <= 0 {
			return
		}

		start := (r.write - n + len(r.data)) % len(r.data)
		for i := range n {
			if !yield(r.data[(start+i)%len(r.data)]) {
				return
			}
		}
	}
}
