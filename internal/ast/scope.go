package ast

import "github.com/sdvcn/vox/internal/intern"

// ScopeKind distinguishes the four scope flavors of §3.
type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeMember
	ScopeLocal
	ScopeNoScope // bounds attribute lifetime only; never holds names
)

// Scope is one node of the scope tree. Scopes point upward to their
// parent only; they never point down to children except through their
// own identifier map (§3's "ownership & lifecycle").
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeIndex
	DebugName string
	Names     map[intern.ID]Index

	// Owner is the Decl or Stmt node that introduced this scope (a
	// struct/enum_type/func Decl, or a StmtBlock), set once by name
	// registration (§4.6) once that node's own index is known. The type
	// checker (§4.8) walks the scope chain through this field to find
	// the nearest enclosing struct (for an implicit `this`) or function
	// (for a `return` statement's expected type) without a second pass.
	Owner Index
}

func newScope(kind ScopeKind, parent ScopeIndex, name string) Scope {
	return Scope{Kind: kind, Parent: parent, DebugName: name, Names: make(map[intern.ID]Index)}
}

// Declare inserts name -> decl, reporting whether a prior entry for
// the same id was already present (a duplicate-declaration condition
// the caller turns into a diagnostic).
func (s *Scope) Declare(id intern.ID, decl Index) (prior Index, duplicate bool) {
	if prior, ok := s.Names[id]; ok {
		return prior, true
	}
	s.Names[id] = decl
	return Undefined, false
}

func (s *Scope) Lookup(id intern.ID) (Index, bool) {
	idx, ok := s.Names[id]
	return idx, ok
}
