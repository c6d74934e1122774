package arena

import (
	"fmt"

	"fortio.org/safecast"
)

// Span refers to a run of elements inside a Pool by (offset, length)
// rather than by a Go slice, so the reference survives Pool growth
// and can be stored inline in a fixed-size node header.
type Span struct {
	Off uint32
	Len uint32
}

func (s Span) Empty() bool { return s.Len == 0 }

// Pool is the shared small-array arena described in §4.1: declaration
// parameter/member/argument lists, successor/predecessor vectors, phi
// argument lists and user sets all live here instead of as individual
// heap slices per owning entity.
type Pool[T any] struct {
	data []T
}

// NewPool creates a Pool with the given initial capacity hint.
func NewPool[T any](capHint uint) *Pool[T] {
	return &Pool[T]{data: make([]T, 0, capHint)}
}

// Append adds values to the end of the pool and returns a Span
// covering them.
func (p *Pool[T]) Append(values ...T) Span {
	if len(values) == 0 {
		return Span{}
	}
	off, err := safecast.Conv[uint32](len(p.data))
	if err != nil {
		panic(fmt.Errorf("pool: offset overflow: %w", err))
	}
	p.data = append(p.data, values...)
	n, err := safecast.Conv[uint32](len(values))
	if err != nil {
		panic(fmt.Errorf("pool: length overflow: %w", err))
	}
	return Span{Off: off, Len: n}
}

// Slice returns the elements covered by sp. The returned slice aliases
// the pool's backing array and must not be retained across a call
// that may grow the pool (Append/ReplaceAt).
func (p *Pool[T]) Slice(sp Span) []T {
	if sp.Len == 0 {
		return nil
	}
	return p.data[sp.Off : sp.Off+sp.Len]
}

// All exposes the pool's entire backing storage read-only-by-
// convention, the same aliasing caveat as [Pool.Slice] applies. Used
// by callers that need to rewrite every element in place (e.g. a
// handle-renumbering compaction pass) rather than one Span's worth.
func (p *Pool[T]) All() []T {
	return p.data
}

// Get returns the i'th element (0-based) of sp.
func (p *Pool[T]) Get(sp Span, i uint32) T {
	return p.data[sp.Off+i]
}

// Set overwrites the i'th element (0-based) of sp in place.
func (p *Pool[T]) Set(sp Span, i uint32, v T) {
	p.data[sp.Off+i] = v
}

// ReplaceAt implements the in-place splice used by static-conditional
// and #foreach expansion (§4.6): the oldCount elements starting at
// index in the array referenced by sp are logically replaced by
// newValues. Because Pool is append-only, the replacement is realized
// by appending newValues at the end and returning a new Span; callers
// hold Spans by value (in a node header or a local variable) so they
// simply overwrite their own copy with the result — no other holder
// of the old Span is affected, matching the arena's "clone via
// relocation, never mutate in place" discipline (§9).
func (p *Pool[T]) ReplaceAt(sp Span, index uint32, oldCount uint32, newValues []T) Span {
	if index > sp.Len || index+oldCount > sp.Len {
		panic(fmt.Errorf("pool: ReplaceAt out of range: index=%d oldCount=%d span=%v", index, oldCount, sp))
	}
	total := int(sp.Len) - int(oldCount) + len(newValues)
	merged := make([]T, 0, total)
	merged = append(merged, p.Slice(sp)[:index]...)
	merged = append(merged, newValues...)
	merged = append(merged, p.Slice(sp)[index+oldCount:]...)
	return p.Append(merged...)
}

// Len reports the total number of elements ever appended to the pool.
func (p *Pool[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(p.data))
	if err != nil {
		panic(fmt.Errorf("pool: length overflow: %w", err))
	}
	return n
}
