package ast

import (
	"fmt"

	"github.com/sdvcn/vox/internal/arena"
)

// Store owns every arena the AST lives in: one append-only arena per
// node kind, a shared small-array pool for item/parameter/argument
// lists (§4.1), and the scope and attribute-info side-arenas. A Store
// is one compilation context's AST; it is never merged with another.
type Store struct {
	Decls     *arena.Arena[Decl]
	Stmts     *arena.Arena[Stmt]
	Exprs     *arena.Arena[Expr]
	Types     *arena.Arena[TypeNode]
	Scopes    *arena.Arena[Scope]
	AttrInfos *arena.Arena[AttrInfo]

	// Items is the shared small-array pool backing every arena.Span
	// field on Decl/Stmt/Expr/TypeNode (parameters, members, arguments,
	// static-expansion item lists, ...).
	Items *arena.Pool[Index]
}

// NewStore creates an empty Store with modest capacity hints sized for
// a single small-to-medium source file; the driver grows them lazily
// per module.
func NewStore() *Store {
	return &Store{
		Decls:     arena.New[Decl](256),
		Stmts:     arena.New[Stmt](256),
		Exprs:     arena.New[Expr](512),
		Types:     arena.New[TypeNode](128),
		Scopes:    arena.New[Scope](32),
		AttrInfos: arena.New[AttrInfo](16),
		Items:     arena.NewPool[Index](512),
	}
}

func (s *Store) AllocDecl(d Decl) Index {
	return MakeIndex(KindDecl, s.Decls.Alloc(d))
}

func (s *Store) AllocStmt(st Stmt) Index {
	return MakeIndex(KindStmt, s.Stmts.Alloc(st))
}

func (s *Store) AllocExpr(e Expr) Index {
	return MakeIndex(KindExpr, s.Exprs.Alloc(e))
}

func (s *Store) AllocType(tn TypeNode) Index {
	return MakeIndex(KindType, s.Types.Alloc(tn))
}

// Decl returns the Decl node idx refers to, or nil if idx is not a
// Decl-kind handle.
func (s *Store) Decl(idx Index) *Decl {
	if idx.Kind() != KindDecl {
		return nil
	}
	return s.Decls.Get(idx.Payload())
}

func (s *Store) Stmt(idx Index) *Stmt {
	if idx.Kind() != KindStmt {
		return nil
	}
	return s.Stmts.Get(idx.Payload())
}

func (s *Store) Expr(idx Index) *Expr {
	if idx.Kind() != KindExpr {
		return nil
	}
	return s.Exprs.Get(idx.Payload())
}

func (s *Store) Type(idx Index) *TypeNode {
	if idx.Kind() != KindType {
		return nil
	}
	return s.Types.Get(idx.Payload())
}

// MustDecl panics if idx is not a Decl-kind handle; used once a caller
// already knows idx must be a declaration (e.g. an item list entry
// that static expansion has already normalized).
func (s *Store) MustDecl(idx Index) *Decl {
	d := s.Decl(idx)
	if d == nil {
		panic(fmt.Errorf("ast: %v is not a decl", idx))
	}
	return d
}

// Header returns the common header of any node kind, or nil for
// Undefined.
func (s *Store) Header(idx Index) *Header {
	switch idx.Kind() {
	case KindDecl:
		return &s.Decls.Get(idx.Payload()).Header
	case KindStmt:
		return &s.Stmts.Get(idx.Payload()).Header
	case KindExpr:
		return &s.Exprs.Get(idx.Payload()).Header
	case KindType:
		return &s.Types.Get(idx.Payload()).Header
	default:
		return nil
	}
}

// NewScope allocates a child scope of parent (Undefined for the root).
func (s *Store) NewScope(kind ScopeKind, parent ScopeIndex, debugName string) ScopeIndex {
	return ScopeIndex(s.Scopes.Alloc(newScope(kind, parent, debugName)))
}

func (s *Store) Scope(idx ScopeIndex) *Scope {
	return s.Scopes.Get(uint32(idx))
}

// NewAttrInfo snapshots attrs (copied, per makeDecl's "snapshot the
// current effective attributes" contract in §4.4) into a fresh
// AttrInfo and returns its handle.
func (s *Store) NewAttrInfo(attrs []Attr) AttrIndex {
	if len(attrs) == 0 {
		return 0
	}
	info := AttrInfo{Attrs: append([]Attr(nil), attrs...)}
	for _, a := range attrs {
		info.EffectMask |= a.Effect
	}
	return AttrIndex(s.AttrInfos.Alloc(info))
}

func (s *Store) AttrInfo(idx AttrIndex) *AttrInfo {
	return s.AttrInfos.Get(uint32(idx))
}

// ItemsOf returns the element indices covered by sp.
func (s *Store) ItemsOf(sp arena.Span) []Index {
	return s.Items.Slice(sp)
}

// AppendItems appends idxs to the shared item pool and returns a Span
// covering them.
func (s *Store) AppendItems(idxs ...Index) arena.Span {
	return s.Items.Append(idxs...)
}

// ReplaceItems splices newValues in place of the oldCount elements
// starting at index within sp, returning the resulting Span. Static
// expansion (§4.6) is the only caller: replacing a `#if`/`#version`/
// `#foreach` node with the items it selected or produced.
func (s *Store) ReplaceItems(sp arena.Span, index, oldCount uint32, newValues ...Index) arena.Span {
	return s.Items.ReplaceAt(sp, index, oldCount, newValues)
}
