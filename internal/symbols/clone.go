// Package symbols implements name registration, static-conditional
// expansion, and name resolution (§4.6/§4.7): the passes that turn a
// freshly parsed tree of declarations into one where every identifier
// use points at the declaration it means and every `#if`/`#version`/
// `#foreach` has been replaced by the items it selected or produced.
package symbols

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/intern"
)

// Clone deep-copies the subtree rooted at idx into fresh arena slots,
// relocating every nested Index and arena.Span reference along the
// way so the clone shares no mutable state with its source. Both
// `#foreach` expansion and template instantiation need exactly this:
// a fresh, independently analyzable instance of a template body,
// never the original nodes reused in place (§9's "clone via
// relocation, never mutate in place" discipline).
//
// The one reference Clone does *not* follow is TypeNode.Decl: a
// resolved struct/enum type node names an existing declaration
// elsewhere in the tree, it does not own a copy of it.
func Clone(store *ast.Store, idx ast.Index) ast.Index {
	switch idx.Kind() {
	case ast.KindDecl:
		return cloneDecl(store, idx)
	case ast.KindStmt:
		return cloneStmt(store, idx)
	case ast.KindExpr:
		return cloneExpr(store, idx)
	case ast.KindType:
		return cloneType(store, idx)
	default:
		return ast.Undefined
	}
}

// CloneItems clones every element of sp and appends the results as a
// fresh span, preserving order.
func CloneItems(store *ast.Store, sp arena.Span) arena.Span {
	items := store.ItemsOf(sp)
	if len(items) == 0 {
		return arena.Span{}
	}
	out := make([]ast.Index, len(items))
	for i, it := range items {
		out[i] = Clone(store, it)
	}
	return store.AppendItems(out...)
}

// freshHeader strips the lifecycle state, property tri-states, and
// error poisoning of the source header: a clone starts its life
// unanalyzed regardless of what happened to the node it was copied
// from. AttrInfo is kept as-is; attributes describe the declaration
// shape itself and are shared read-only data, not per-instance state.
func freshHeader(h ast.Header) ast.Header {
	return ast.Header{Span: h.Span, Flags: h.Flags &^ ast.FlagErrorNode, AttrInfo: h.AttrInfo}
}

func cloneDecl(store *ast.Store, idx ast.Index) ast.Index {
	d := store.MustDecl(idx)
	n := ast.Decl{
		Header:         freshHeader(d.Header),
		Kind:           d.Kind,
		Name:           d.Name,
		Path:           append([]intern.ID(nil), d.Path...),
		Type:           Clone(store, d.Type),
		Init:           Clone(store, d.Init),
		TemplateParams: CloneItems(store, d.TemplateParams),
		Params:         CloneItems(store, d.Params),
		Members:        CloneItems(store, d.Members),
		ReturnType:     Clone(store, d.ReturnType),
		Body:           Clone(store, d.Body),
		BaseType:       Clone(store, d.BaseType),
		Cond:           Clone(store, d.Cond),
		Then:           CloneItems(store, d.Then),
		Else:           CloneItems(store, d.Else),
		Message:        Clone(store, d.Message),
		VersionID:      d.VersionID,
		KeyName:        d.KeyName,
		ValueName:      d.ValueName,
		Iterable:       Clone(store, d.Iterable),
		ForBody:        CloneItems(store, d.ForBody),
	}
	if d.Scope != 0 {
		orig := store.Scope(d.Scope)
		n.Scope = store.NewScope(orig.Kind, 0, orig.DebugName)
	}
	return store.AllocDecl(n)
}

func cloneStmt(store *ast.Store, idx ast.Index) ast.Index {
	s := store.Stmt(idx)
	n := ast.Stmt{
		Header:   freshHeader(s.Header),
		Kind:     s.Kind,
		Items:    CloneItems(store, s.Items),
		Expr:     Clone(store, s.Expr),
		Then:     Clone(store, s.Then),
		Else:     Clone(store, s.Else),
		Body:     Clone(store, s.Body),
		LoopVar:  Clone(store, s.LoopVar),
		Iterable: Clone(store, s.Iterable),
		Label:    Clone(store, s.Label),
	}
	if s.Scope != 0 {
		orig := store.Scope(s.Scope)
		n.Scope = store.NewScope(orig.Kind, 0, orig.DebugName)
	}
	return store.AllocStmt(n)
}

func cloneExpr(store *ast.Store, idx ast.Index) ast.Index {
	e := store.Expr(idx)
	n := ast.Expr{
		Header:      freshHeader(e.Header),
		Kind:        e.Kind,
		NameID:      e.NameID,
		IntValue:    e.IntValue,
		UintValue:   e.UintValue,
		FloatValue:  e.FloatValue,
		BoolValue:   e.BoolValue,
		StringValue: e.StringValue,
		Parts:       CloneItems(store, e.Parts),
		BinOp:       e.BinOp,
		UnOp:        e.UnOp,
		AssignOp:    e.AssignOp,
		LHS:         Clone(store, e.LHS),
		RHS:         Clone(store, e.RHS),
		Operand:     Clone(store, e.Operand),
		Base:        Clone(store, e.Base),
		Subscript:   Clone(store, e.Subscript),
		CastType:    Clone(store, e.CastType),
		Callee:      Clone(store, e.Callee),
		Args:        CloneItems(store, e.Args),
		// ResolvedType is deliberately not carried over: a clone has not
		// been type-checked yet, even if its source had been.
	}
	return store.AllocExpr(n)
}

func cloneType(store *ast.Store, idx ast.Index) ast.Index {
	t := store.Type(idx)
	n := ast.TypeNode{
		Header:     freshHeader(t.Header),
		Kind:       t.Kind,
		NameUse:    Clone(store, t.NameUse),
		Basic:      t.Basic,
		Elem:       Clone(store, t.Elem),
		ArrayLen:   Clone(store, t.ArrayLen),
		Params:     CloneItems(store, t.Params),
		Variadic:   t.Variadic,
		ReturnType: Clone(store, t.ReturnType),
		Decl:       t.Decl,
	}
	return store.AllocType(n)
}

// Reparent overwrites the scope idx itself introduces (if any) so it
// chains up through parent instead of wherever its source lived. Used
// right after Clone when splicing a cloned container (a `#foreach`
// body's struct/func members, or a nested block, say) into a brand-new
// enclosing scope.
func Reparent(store *ast.Store, idx ast.Index, parent ast.ScopeIndex) {
	if d := store.Decl(idx); d != nil {
		if d.Scope != 0 {
			store.Scope(d.Scope).Parent = parent
		}
		return
	}
	if s := store.Stmt(idx); s != nil && s.Scope != 0 {
		store.Scope(s.Scope).Parent = parent
	}
}
