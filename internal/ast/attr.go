package ast

import (
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/source"
)

// AttrEffect is a bit in an AttrInfo's precomputed effect mask,
// letting later passes test "does this declaration carry @extern(...)"
// without rescanning its attribute list (§3).
type AttrEffect uint16

const (
	EffectExternModule AttrEffect = 1 << iota
	EffectExternSyscall
	EffectGeneric // any @attr not recognized as a built-in effect
)

// Attr is one parsed `@name(args...)` or bare `@name` attribute.
type Attr struct {
	Span   source.Span
	NameID intern.ID
	Args   []Index // Expr-kind indices; literal module name or syscall number
	Effect AttrEffect
}

// AttrInfo is the side-structure a declaration's Header.AttrInfo
// points to: the snapshot of effective attributes taken by makeDecl
// (§4.4) plus their combined effect mask.
type AttrInfo struct {
	Attrs      []Attr
	EffectMask AttrEffect
}

func (a *AttrInfo) HasEffect(e AttrEffect) bool { return a.EffectMask&e != 0 }

// ExternModuleName returns the library name carried by an
// `@extern(module, "libname")` attribute, if present.
func (a *AttrInfo) ExternModuleName(store *Store) (intern.ID, bool) {
	for _, attr := range a.Attrs {
		if attr.Effect == EffectExternModule && len(attr.Args) == 1 {
			if e := store.Expr(attr.Args[0]); e != nil && e.Kind == ExprStringLit {
				return e.StringValue, true
			}
		}
	}
	return intern.NoID, false
}

// ExternSyscallNumber returns the numeric id carried by an
// `@extern(syscall, <int>)` attribute, if present.
func (a *AttrInfo) ExternSyscallNumber(store *Store) (int64, bool) {
	for _, attr := range a.Attrs {
		if attr.Effect == EffectExternSyscall && len(attr.Args) == 1 {
			if e := store.Expr(attr.Args[0]); e != nil && e.Kind == ExprIntLit {
				return e.IntValue, true
			}
		}
	}
	return 0, false
}
