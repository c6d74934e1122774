package arena

// TempMark is a saved position in a Temp arena that Reset can rewind to.
type TempMark int

// Temp is scratch storage for per-function analysis state that must
// not outlive the pass that allocated it (§5 "Shared-resource
// policy"): the IR builder's blockVarDef map keys, work queues used by
// trivial-phi removal, and similar transient bookkeeping. Unlike
// Arena/Pool, Temp is explicitly reset at well-known boundaries
// (function-body IR generation start/end) rather than living for the
// whole compilation.
type Temp[T any] struct {
	data []T
}

// NewTemp creates an empty Temp arena.
func NewTemp[T any]() *Temp[T] {
	return &Temp[T]{}
}

// Mark returns a position that Reset can later rewind to.
func (t *Temp[T]) Mark() TempMark {
	return TempMark(len(t.data))
}

// Push appends v and returns its index.
func (t *Temp[T]) Push(v T) int {
	t.data = append(t.data, v)
	return len(t.data) - 1
}

// Reset truncates the arena back to a previously taken Mark. Using a
// Mark taken on a different Temp value, or one from before a Reset
// that already passed it, is a caller bug; Reset does not guard
// against it.
func (t *Temp[T]) Reset(m TempMark) {
	t.data = t.data[:m]
}

// Slice exposes storage from a mark to the current end.
func (t *Temp[T]) Slice(from TempMark) []T {
	return t.data[from:]
}

// Len reports the current size.
func (t *Temp[T]) Len() int {
	return len(t.data)
}
