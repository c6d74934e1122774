// Package sema implements the type checker of §4.8: bottom-up type
// synthesis over the name-resolved AST, with a contextual parent_type
// hint threaded down for literal defaulting and implicit-coercion
// checks. It registers a single property (PropType) with the same
// lazy, cycle-detecting driver internal/symbols already registers
// name registration and resolution against, so a type query on any
// node transitively drives whatever it depends on through every
// earlier stage first.
//
// Unlike the teacher's own internal/types, there is no separate
// type-interning package here: ast.Expr.ResolvedType and
// ast.TypeNode.Elem/ReturnType/Params are already handles into the
// same Type arena every source-written type lives in, so the checker
// synthesizes and compares ast.TypeNode values directly instead of
// introducing a second type representation to translate to and from.
package sema

import (
	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
)

// Registrar is the subset of *symbols.Registrar the checker needs:
// which scope a node resolves against, and which declaration a
// resolved identifier use denotes. Spelled out as an interface so
// tests can fake it without constructing a full name-resolution pass.
type Registrar interface {
	ParentScope(node ast.Index) ast.ScopeIndex
	Target(node ast.Index) (ast.Index, bool)
}

// Checker implements type_check (§4.8). Alongside what it borrows from
// name resolution it owns side maps of its own, among them hint, the
// parent_type a child expression should synthesize its literal
// default against, and canonCache, a cache of the TypeNode instances the
// checker itself synthesizes (pointer-to-T, slice-of-T, per-function
// signatures) so that repeatedly typing the same shape does not bloat
// the arena with structurally-identical duplicates.
type Checker struct {
	Store    *ast.Store
	Interp   *intern.Table
	Reporter diag.Reporter
	Names    Registrar

	hint       map[ast.Index]ast.Index
	canonCache map[canonKey]ast.Index

	// wantsCallable marks an ExprNameUse whose surrounding context
	// needs the function value itself rather than the paren-free-call
	// rewrite checkNameUse otherwise applies to it: an address-of
	// operand, or an explicit call's own Callee.
	wantsCallable map[ast.Index]bool

	funcSig map[ast.Index]ast.Index // DeclFunc -> cached TypeFuncSig

	lengthID intern.ID
	ptrID    intern.ID
}

// NewChecker wires up a Checker against the same Store/Reporter the
// rest of the pipeline shares, and the Registrar that already
// resolved names in it.
func NewChecker(store *ast.Store, interp *intern.Table, reporter diag.Reporter, names Registrar) *Checker {
	return &Checker{
		Store:    store,
		Interp:   interp,
		Reporter: reporter,
		Names:    names,
		hint:          make(map[ast.Index]ast.Index),
		canonCache:    make(map[canonKey]ast.Index),
		wantsCallable: make(map[ast.Index]bool),
		funcSig:       make(map[ast.Index]ast.Index),
		lengthID: interp.GetOrIntern("length"),
		ptrID:    interp.GetOrIntern("ptr"),
	}
}

// Wire registers type_check with reg.
func (c *Checker) Wire(reg *analysis.Registry) {
	reg.Register(ast.PropType, c.checkNode)
}

// CheckRoot drives every item of a top-level item list through
// type_check, the entry point for the pass analogous to
// (*symbols.Registrar).RegisterRoot — nothing else would otherwise
// ever request PropType on a declaration nothing references by
// value (an unused function, a struct only ever named in a type
// position that itself short-circuits without revisiting the Decl).
func (c *Checker) CheckRoot(d *analysis.Driver, items arena.Span) error {
	for _, item := range c.Store.ItemsOf(items) {
		if item.Kind() != ast.KindDecl {
			continue
		}
		if err := d.Require(item, ast.PropType); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkNode(d *analysis.Driver, node ast.Index) error {
	switch node.Kind() {
	case ast.KindDecl:
		return c.checkDecl(d, node)
	case ast.KindStmt:
		return c.checkStmt(d, node)
	case ast.KindExpr:
		return c.checkExpr(d, node)
	case ast.KindType:
		return c.checkType(d, node)
	default:
		return nil
	}
}

// setHint records the type node's synthesized default should be
// biased toward, first writer wins — mirroring
// (*symbols.Registrar).setParentScope, since a node is only ever
// checked once and only one caller ever sets its hint, whichever
// requires PropType on it first.
func (c *Checker) setHint(node, typ ast.Index) {
	if node == ast.Undefined || typ == ast.Undefined {
		return
	}
	if _, ok := c.hint[node]; !ok {
		c.hint[node] = typ
	}
}

func (c *Checker) requireWithHint(d *analysis.Driver, node, hint ast.Index) error {
	c.setHint(node, hint)
	return d.Require(node, ast.PropType)
}

func (c *Checker) typeOf(node ast.Index) *ast.TypeNode {
	switch node.Kind() {
	case ast.KindExpr:
		return c.Store.Type(c.Store.Expr(node).ResolvedType)
	case ast.KindType:
		return c.Store.Type(node)
	default:
		return nil
	}
}

func (c *Checker) resolvedTypeIndex(node ast.Index) ast.Index {
	switch node.Kind() {
	case ast.KindExpr:
		return c.Store.Expr(node).ResolvedType
	case ast.KindType:
		return node
	default:
		return ast.Undefined
	}
}

// enclosingDecl walks scope's ancestor chain looking for the nearest
// scope whose Owner is a Decl of one of want's kinds — the general
// form of "what struct/function contains this point in the tree"
// that ast.Scope.Owner exists to answer (see DESIGN.md).
func (c *Checker) enclosingDecl(scope ast.ScopeIndex, want ...ast.DeclKind) (ast.Index, bool) {
	for scope != 0 {
		s := c.Store.Scope(scope)
		if s.Owner != ast.Undefined {
			if decl := c.Store.Decl(s.Owner); decl != nil {
				for _, k := range want {
					if decl.Kind == k {
						return s.Owner, true
					}
				}
			}
		}
		scope = s.Parent
	}
	return ast.Undefined, false
}
