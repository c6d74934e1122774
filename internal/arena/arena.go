// Package arena provides the bump-allocated storage the rest of the
// compiler builds on: append-only typed arenas for AST/IR nodes and a
// shared small-array pool for the variable-length sibling lists
// (parameters, members, arguments, phi operands, ...) that would
// otherwise be per-node heap slices.
//
// Indices are 1-based; 0 is reserved so a zero-valued handle means
// "undefined" without needing a separate validity bit.
package arena

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is a bump allocator over a single growable slice of T.
// Returned indices are stable for the lifetime of the arena: Arena
// never moves existing elements, only appends.
type Arena[T any] struct {
	data []T
}

// New creates an Arena whose backing slice starts with capacity capHint.
func New[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Alloc appends value and returns its 1-based index.
func (a *Arena[T]) Alloc(value T) uint32 {
	a.data = append(a.data, value)
	idx, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena: index overflow: %w", err))
	}
	return idx
}

// Reserve appends n zero-valued elements without running any
// initializer, returning the index of the first one. Used when a
// caller needs to allocate a run of entities before it knows their
// final contents (e.g. basic blocks referencing each other).
func (a *Arena[T]) Reserve(n uint) uint32 {
	first, err := safecast.Conv[uint32](len(a.data) + 1)
	if err != nil {
		panic(fmt.Errorf("arena: index overflow: %w", err))
	}
	var zero T
	for i := uint(0); i < n; i++ {
		a.data = append(a.data, zero)
	}
	return first
}

// AllocMany appends every value in values and returns the index of
// the first appended element (0 if values is empty).
func (a *Arena[T]) AllocMany(values []T) uint32 {
	if len(values) == 0 {
		return 0
	}
	first, err := safecast.Conv[uint32](len(a.data) + 1)
	if err != nil {
		panic(fmt.Errorf("arena: index overflow: %w", err))
	}
	a.data = append(a.data, values...)
	return first
}

// Get returns a pointer to the element at the 1-based index idx, or
// nil for idx == 0.
func (a *Arena[T]) Get(idx uint32) *T {
	if idx == 0 {
		return nil
	}
	return &a.data[idx-1]
}

// Slice exposes the underlying storage read-only; callers must not
// retain it across further Alloc/Reserve calls since append may
// reallocate.
func (a *Arena[T]) Slice() []T {
	return a.data
}

// Len returns the number of allocated elements (not counting the
// reserved index 0).
func (a *Arena[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena: length overflow: %w", err))
	}
	return n
}
