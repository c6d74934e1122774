package ast

import "github.com/sdvcn/vox/internal/source"

// Header is embedded as the first field of every Decl, Stmt, Expr, and
// TypeNode: source location, per-node flags, the coarse lifecycle
// state, the fine-grained property tri-states, and an optional
// attribute-info side-pointer (§3).
type Header struct {
	Span     source.Span
	Flags    Flags
	State    AnalysisState
	Props    PropSet
	AttrInfo AttrIndex
}

func (h *Header) HasAttrs() bool { return h.AttrInfo != 0 }

// RequireState panics if h has not yet reached want; callers use it to
// enforce §3's "no node is read at a level beyond its current state"
// at the accessor boundary rather than trusting every call site.
func (h *Header) RequireState(want AnalysisState) {
	if !h.State.AtLeast(want) {
		panic("ast: node read before reaching " + want.String())
	}
}

// Advance moves h.State forward to want, refusing to move it backward
// (§3's "lifecycle state never decreases").
func (h *Header) Advance(want AnalysisState) {
	if h.State < want {
		h.State = want
	}
}
