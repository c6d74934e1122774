package symbols

import (
	"fmt"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
)

// basicKindByID maps a built-in scalar type name's interned id to its
// BasicKind, letting a type-position use resolve directly without a
// scope lookup (§4.3: basic type names are recognized by id equality
// against the interner's pre-seeded prefix, not through any decl).
var basicKindByID = map[intern.ID]ast.BasicKind{
	intern.TypeNoreturn: ast.BasicNoreturn,
	intern.TypeVoid:     ast.BasicVoid,
	intern.TypeBool:     ast.BasicBool,
	intern.TypeNull:     ast.BasicNull,
	intern.TypeI8:       ast.BasicI8,
	intern.TypeI16:      ast.BasicI16,
	intern.TypeI32:      ast.BasicI32,
	intern.TypeI64:      ast.BasicI64,
	intern.TypeU8:       ast.BasicU8,
	intern.TypeU16:      ast.BasicU16,
	intern.TypeU32:      ast.BasicU32,
	intern.TypeU64:      ast.BasicU64,
	intern.TypeF32:      ast.BasicF32,
	intern.TypeF64:      ast.BasicF64,
}

func (r *Registrar) resolveName(d *analysis.Driver, node ast.Index) error {
	switch node.Kind() {
	case ast.KindExpr:
		return r.resolveExpr(d, node)
	case ast.KindType:
		return r.resolveType(d, node)
	default:
		return nil
	}
}

// resolveExpr implements resolve(use) for a value-position identifier
// (§4.7). A successful lookup landing in a member scope rewrites the
// bare name into an implicit `this.<member>`; landing on an alias
// forces the alias's own resolution and then splices its initializer's
// content into this node in place (transparent substitution, §4.7) —
// realized here as an in-place struct copy rather than a caller-side
// index replacement, since every other holder of node's Index still
// wants to see the same (now-substituted) content.
func (r *Registrar) resolveExpr(d *analysis.Driver, node ast.Index) error {
	e := r.Store.Expr(node)
	if e.Kind != ast.ExprNameUse {
		return nil
	}
	target, viaMember := r.lookup(r.parentScope[node], e.NameID)
	if target == ast.Undefined {
		if _, ok := basicKindByID[e.NameID]; ok {
			// A bare built-in scalar name in value position: reached when
			// an alias's initializer names a basic type directly (§4.7),
			// where there is no decl for the name to land on. Leave the
			// name-use as is; resolveType's own basicKindByID check turns
			// it into TypeBasic once the splice carries it back up.
			return nil
		}
		return r.undefined(node, e.NameID)
	}
	if viaMember {
		base := r.Store.AllocExpr(ast.Expr{Header: ast.Header{Span: e.Span}, Kind: ast.ExprThis})
		e.Kind = ast.ExprMember
		e.Base = base
		e.Flags |= ast.FlagNeedsDeref
		return nil
	}
	targetDecl := r.Store.Decl(target)
	if targetDecl == nil || targetDecl.Kind != ast.DeclAlias {
		r.target[node] = target
		return nil
	}
	// Resolve the alias's own initializer, not the alias decl node
	// itself: resolveName only rewrites Expr/Type nodes, so requiring
	// the property on target (a Decl) would be a no-op and this would
	// splice in not-yet-resolved content for an alias-of-alias chain.
	if err := d.Require(targetDecl.Init, ast.PropNameResolve); err != nil {
		return err
	}
	init := r.Store.Expr(targetDecl.Init)
	if init == nil {
		return nil
	}
	sp := e.Span
	*e = *init
	e.Span = sp
	// The splice may leave node itself as an ExprNameUse again (the
	// alias's initializer was a plain identifier): node.target must
	// then be the initializer's own resolved target, not the alias
	// decl this node pointed to before substitution.
	if e.Kind == ast.ExprNameUse {
		if t, ok := r.target[targetDecl.Init]; ok {
			r.target[node] = t
		} else {
			delete(r.target, node)
		}
	}
	return nil
}

// resolveType implements the type-position half of §4.7's rewrites:
// a bare TypeNameUse becomes TypeBasic directly for a built-in scalar
// name, or TypeStruct/TypeEnum naming the resolved declaration once
// its embedded name-use has been resolved the same way any other use
// is.
func (r *Registrar) resolveType(d *analysis.Driver, node ast.Index) error {
	t := r.Store.Type(node)
	if t.Kind != ast.TypeNameUse {
		return nil
	}
	nameExpr := r.Store.Expr(t.NameUse)
	if nameExpr == nil || nameExpr.Kind != ast.ExprNameUse {
		return nil
	}
	if basic, ok := basicKindByID[nameExpr.NameID]; ok {
		t.Kind = ast.TypeBasic
		t.Basic = basic
		return nil
	}

	scopeIdx := r.parentScope[node]
	r.setParentScope(t.NameUse, scopeIdx)
	if err := d.Require(t.NameUse, ast.PropNameResolve); err != nil {
		return err
	}
	resolved := r.Store.Expr(t.NameUse)
	if resolved == nil || resolved.Kind != ast.ExprNameUse {
		return r.badTypeTarget(node)
	}
	// An alias chain terminating in a basic type name only reveals that
	// once resolveExpr has flattened it down to node here; the pre-Require
	// check above only catches a direct bare use.
	if basic, ok := basicKindByID[resolved.NameID]; ok {
		t.Kind = ast.TypeBasic
		t.Basic = basic
		return nil
	}
	target, _ := r.lookup(scopeIdx, resolved.NameID)
	if target == ast.Undefined {
		return nil // already reported by the nested resolveExpr call
	}
	targetDecl := r.Store.Decl(target)
	if targetDecl == nil {
		return nil
	}
	switch targetDecl.Kind {
	case ast.DeclStruct:
		t.Kind, t.Decl = ast.TypeStruct, target
	case ast.DeclEnumType:
		t.Kind, t.Decl = ast.TypeEnum, target
	}
	return nil
}

// lookup walks the lexical-scope chain from scopeIdx upward, reporting
// whether the match was found in a member scope (the implicit-`this`
// condition).
func (r *Registrar) lookup(scopeIdx ast.ScopeIndex, id intern.ID) (ast.Index, bool) {
	for scopeIdx != 0 {
		scope := r.Store.Scope(scopeIdx)
		if target, ok := scope.Lookup(id); ok {
			return target, scope.Kind == ast.ScopeMember
		}
		scopeIdx = scope.Parent
	}
	return ast.Undefined, false
}

func (r *Registrar) undefined(node ast.Index, id intern.ID) error {
	sp := r.Store.Header(node).Span
	msg := fmt.Sprintf("undefined identifier %q", r.Interp.MustLookup(id))
	if rb := diag.ReportError(r.Reporter, diag.NameUndefinedIdentifier, sp, msg); rb != nil {
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}

func (r *Registrar) badTypeTarget(node ast.Index) error {
	sp := r.Store.Header(node).Span
	msg := "name does not refer to a type"
	if rb := diag.ReportError(r.Reporter, diag.TypeMismatch, sp, msg); rb != nil {
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}
