// SPDX-License-Identifier: MIT
package spectrogram

import (
	"fmt"
	"iter"
)

// Rolling is a fixed-size ring that keeps the most recent Len() values.
// Index 0 is always the oldest value. It starts out filled with the default
// value, so At is valid for every index from the first call. Rolling is not
// safe for concurrent use.
type Rolling[T any] struct {
	data    []T
	next    int // Slot the next insert overwrites, which is also the oldest.
	written uint64
}

// NewRolling returns a ring of size slots, each set to def.
func NewRolling[T any](size int, def T) *Rolling[T] {
	if size < 1 {
		panic(fmt.Sprintf("spectrogram: rolling buffer size %d", size))
	}
	data := make([]T, size)
	for i := range data {
		data[i] = def
	}
	return &Rolling[T]{data: data}
}

// Insert appends v, dropping the oldest value.
func (r *Rolling[T]) Insert(v T) {
	*r.Slot() = v
}

// InsertAll inserts vs in order. Only the last Len() values can survive, so
// earlier ones are skipped.
func (r *Rolling[T]) InsertAll(vs []T) {
	for _, v := range vs[max(len(vs)-len(r.data), 0):] {
		r.Insert(v)
	}
}

// Slot advances the ring and returns the slot that now holds the newest
// value, so callers can reuse whatever it held (a column buffer, say)
// instead of allocating a replacement.
func (r *Rolling[T]) Slot() *T {
	s := &r.data[r.next]
	r.next++
	if r.next == len(r.data) {
		r.next = 0
	}
	r.written++
	return s
}

// At returns the value i places after the oldest. It panics if i is outside
// [0, Len()).
func (r *Rolling[T]) At(i int) T {
	if i < 0 || i >= len(r.data) {
		panic(fmt.Sprintf("spectrogram: index %d is out of bounds 0 - %d", i, len(r.data)))
	}
	i += r.next
	if i >= len(r.data) {
		i -= len(r.data)
	}
	return r.data[i]
}

// Latest returns the most recently inserted value.
func (r *Rolling[T]) Latest() T {
	return r.At(len(r.data) - 1)
}

// Len returns the capacity of the ring.
func (r *Rolling[T]) Len() int { return len(r.data) }

// Written returns how many values have been inserted in total.
func (r *Rolling[T]) Written() uint64 { return r.written }

// All yields every value, oldest first.
func (r *Rolling[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range r.data {
			if !yield(i, r.At(i)) {
				return
			}
		}
	}
}

// CopyTo copies the values oldest first into dst and returns how many were
// copied.
func (r *Rolling[T]) CopyTo(dst []T) int {
	n := copy(dst, r.data[r.next:])
	n += copy(dst[n:], r.data[:r.next])
	return n
}
