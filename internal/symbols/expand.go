package symbols

import (
	"fmt"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
)

// Sweep expands every `#if`/`#version`/`#foreach`/`#assert` node in sp
// to a fixed point, mutating *sp to the fully expanded item list.
// scope is the scope sp's owner registers its children into — plain
// `#if`/`#version` branches and `#assert` are transparent to scoping
// and simply inherit it; `#foreach` is the one case that introduces a
// scope of its own, per iteration, recorded directly against the
// cloned items rather than against scope itself.
//
// §4.6 states the running-size-delta variant of this sweep, recomputing
// an array index against the net change so far rather than rescanning.
// This rescans the whole span from the first remaining static node
// after every single replacement instead: asymptotically worse for
// item lists with many conditionals, but it needs no delta bookkeeping
// and is trivially correct, and the item lists this compiles are small
// enough that the difference is immaterial.
func (r *Registrar) Sweep(d *analysis.Driver, sp *arena.Span, scope ast.ScopeIndex) error {
	for {
		items := r.Store.ItemsOf(*sp)
		pos := -1
		for i, it := range items {
			if isStaticConditional(r.Store, it) {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil
		}
		// Register every earlier, already-expanded sibling before
		// expanding this one: `#foreach`'s iterable (and, in principle,
		// an `#if` condition referring to a named constant) may name a
		// declaration that appears earlier in this very list, and
		// nothing else registers it before recurseItems eventually walks
		// the fully expanded span.
		for _, earlier := range items[:pos] {
			if err := r.recurseOne(d, earlier, scope); err != nil {
				return err
			}
		}
		node := items[pos]
		replacement, err := r.expandOne(d, node, scope)
		if err != nil {
			return err
		}
		*sp = r.Store.ReplaceItems(*sp, uint32(pos), 1, replacement...)
	}
}

func isStaticConditional(store *ast.Store, idx ast.Index) bool {
	decl := store.Decl(idx)
	if decl == nil {
		return false
	}
	switch decl.Kind {
	case ast.DeclStaticIf, ast.DeclStaticVersion, ast.DeclStaticForeach, ast.DeclStaticAssert:
		return true
	default:
		return false
	}
}

func (r *Registrar) expandOne(d *analysis.Driver, node ast.Index, scope ast.ScopeIndex) ([]ast.Index, error) {
	decl := r.Store.MustDecl(node)
	switch decl.Kind {
	case ast.DeclStaticIf:
		// Cond is Undefined for the parser's no_scope `@a { ... }`
		// passthrough (§4.4); it has no condition to evaluate and
		// always selects Then.
		if decl.Cond == ast.Undefined {
			return append([]ast.Index(nil), r.Store.ItemsOf(decl.Then)...), nil
		}
		ok, err := r.evalBool(decl.Cond)
		if err != nil {
			return nil, err
		}
		if ok {
			return append([]ast.Index(nil), r.Store.ItemsOf(decl.Then)...), nil
		}
		return append([]ast.Index(nil), r.Store.ItemsOf(decl.Else)...), nil
	case ast.DeclStaticVersion:
		if decl.VersionID == r.TargetVersion {
			return append([]ast.Index(nil), r.Store.ItemsOf(decl.Then)...), nil
		}
		return append([]ast.Index(nil), r.Store.ItemsOf(decl.Else)...), nil
	case ast.DeclStaticForeach:
		return r.expandForeach(d, decl, scope)
	case ast.DeclStaticAssert:
		ok, err := r.evalBool(decl.Cond)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.reportAssertFailure(decl)
		}
		return nil, nil
	default:
		return nil, nil
	}
}

// evalBool evaluates a static condition expression. §4.5 treats
// general constant-expression evaluation (`eval_static_expr`) as an
// external oracle the type checker owns; `#if`/`#assert` conditions
// only ever need to distinguish true from false before name resolution
// has run, so this is a deliberately narrow evaluator over bool
// literals, `!`/`&&`/`||`, and bare built-in #version identifiers —
// not a general arithmetic/comparison evaluator.
func (r *Registrar) evalBool(idx ast.Index) (bool, error) {
	e := r.Store.Expr(idx)
	if e == nil {
		return false, r.badCond(idx)
	}
	switch e.Kind {
	case ast.ExprBoolLit:
		return e.BoolValue, nil
	case ast.ExprUnary:
		if e.UnOp == ast.UnNot {
			v, err := r.evalBool(e.Operand)
			return !v, err
		}
	case ast.ExprBinary:
		switch e.BinOp {
		case ast.BinLogicalAnd:
			l, err := r.evalBool(e.LHS)
			if err != nil || !l {
				return false, err
			}
			return r.evalBool(e.RHS)
		case ast.BinLogicalOr:
			l, err := r.evalBool(e.LHS)
			if err != nil {
				return false, err
			}
			if l {
				return true, nil
			}
			return r.evalBool(e.RHS)
		}
	case ast.ExprNameUse:
		if intern.IsBuiltinVersion(e.NameID) {
			return e.NameID == r.TargetVersion, nil
		}
	}
	return false, r.badCond(idx)
}

func (r *Registrar) badCond(idx ast.Index) error {
	sp := r.Store.Header(idx).Span
	msg := "static condition is not a compile-time boolean"
	if rb := diag.ReportError(r.Reporter, diag.ExpBadStaticIf, sp, msg); rb != nil {
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}

func (r *Registrar) reportAssertFailure(decl *ast.Decl) {
	msg := "static assertion failed"
	if decl.Message != ast.Undefined {
		if e := r.Store.Expr(decl.Message); e != nil && e.Kind == ast.ExprStringLit {
			if text, ok := r.Interp.Lookup(e.StringValue); ok {
				msg = text
			}
		}
	}
	if rb := diag.ReportError(r.Reporter, diag.AssertFailed, decl.Span, msg); rb != nil {
		rb.Emit()
	}
}

// expandForeach clones decl.ForBody once per element of its iterable,
// binding KeyName/ValueName to the element's index and value in a
// fresh instance scope per iteration. The clones are spliced flatly
// into the caller's item list (§4.6's "replace the #foreach node with
// the concatenation"), so the per-iteration scope cannot be expressed
// structurally as a container node the way a block or struct is —
// instead it is recorded directly against each cloned item (and the
// synthesized key/value declarations) in parentScope, overriding what
// the caller's own registerNested walk would otherwise assign them.
func (r *Registrar) expandForeach(d *analysis.Driver, decl *ast.Decl, scope ast.ScopeIndex) ([]ast.Index, error) {
	r.setParentScope(decl.Iterable, scope)
	if err := d.Require(decl.Iterable, ast.PropNameResolve); err != nil {
		return nil, err
	}
	values, err := r.aliasArrayItems(decl.Iterable)
	if err != nil {
		return nil, err
	}

	var out []ast.Index
	for k, v := range values {
		instScope := r.Store.NewScope(ast.ScopeLocal, scope, "foreach")

		keyDecl := r.Store.AllocDecl(ast.Decl{
			Header: ast.Header{Span: decl.Span}, Kind: ast.DeclEnumMember, Name: decl.KeyName,
			Type: r.Store.AllocType(ast.TypeNode{Header: ast.Header{Span: decl.Span}, Kind: ast.TypeBasic, Basic: ast.BasicU64}),
			Init: r.Store.AllocExpr(ast.Expr{Header: ast.Header{Span: decl.Span}, Kind: ast.ExprUintLit, UintValue: uint64(k)}),
		})
		valDecl := r.Store.AllocDecl(ast.Decl{
			Header: ast.Header{Span: decl.Span}, Kind: ast.DeclAlias, Name: decl.ValueName, Init: v,
		})
		r.parentScope[keyDecl] = instScope
		r.parentScope[valDecl] = instScope
		out = append(out, keyDecl, valDecl)

		for _, item := range r.Store.ItemsOf(decl.ForBody) {
			cloned := Clone(r.Store, item)
			Reparent(r.Store, cloned, instScope)
			r.parentScope[cloned] = instScope
			out = append(out, cloned)
		}
	}
	return out, nil
}

// aliasArrayItems resolves iterable to the element list of an
// alias-array: an alias declaration whose initializer is an array
// literal of compile-time elements (§4.6's "iterable must be an
// alias-array"). Only a single-step lookup through the current scope
// chain is needed, not full resolve(): the iterable has already been
// driven through name_resolve_done by the caller.
func (r *Registrar) aliasArrayItems(iterable ast.Index) ([]ast.Index, error) {
	// name_resolve_done on iterable has already run by the time this is
	// called (expandForeach requires it first): if iterable named an
	// alias whose initializer is an array literal, resolveExpr's
	// transparent-alias-substitution rule has overwritten this same
	// Expr node's content in place to be that array literal.
	arr := r.Store.Expr(iterable)
	if arr == nil || arr.Kind != ast.ExprArrayLit {
		return nil, r.badForeachSource(iterable)
	}
	return r.Store.ItemsOf(arr.Args), nil
}

func (r *Registrar) badForeachSource(idx ast.Index) error {
	sp := r.Store.Header(idx).Span
	msg := "#foreach source is not an alias-array"
	if rb := diag.ReportError(r.Reporter, diag.ExpForeachNotAliases, sp, msg); rb != nil {
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}
