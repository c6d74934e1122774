package symbols

import (
	"fmt"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
)

// Registrar implements name_register_self/name_register_nested and the
// static-expansion sweep interleaved between them (§4.6). It is the
// sole owner of parentScope, the side map recording which scope each
// node's `use.parentScope` (§4.7) resolves against — a node's position
// in the arena carries no scope of its own, only the containers that
// introduce one (module/struct/func/enum_type/block) do.
type Registrar struct {
	Store         *ast.Store
	Interp        *intern.Table
	Reporter      diag.Reporter
	TargetVersion intern.ID

	parentScope map[ast.Index]ast.ScopeIndex
	target      map[ast.Index]ast.Index
}

func NewRegistrar(store *ast.Store, interp *intern.Table, reporter diag.Reporter, targetVersion intern.ID) *Registrar {
	return &Registrar{
		Store:         store,
		Interp:        interp,
		Reporter:      reporter,
		TargetVersion: targetVersion,
		parentScope:   make(map[ast.Index]ast.ScopeIndex),
		target:        make(map[ast.Index]ast.Index),
	}
}

// Wire registers the name-registration steps with reg.
func (r *Registrar) Wire(reg *analysis.Registry) {
	reg.Register(ast.PropNameRegisterSelf, r.registerSelf)
	reg.Register(ast.PropNameRegisterNested, r.registerNested)
	reg.Register(ast.PropNameResolve, r.resolveName)
}

// RegisterRoot sweeps a file's top-level item list and drives every
// surviving item through name_register_self/name_register_nested
// against scope, the entry point for driving registration from
// outside any single container node (the root list belongs to no
// Decl, so nothing else would ever recurse into it).
func (r *Registrar) RegisterRoot(d *analysis.Driver, items *arena.Span, scope ast.ScopeIndex) error {
	return r.sweepAndRecurse(d, items, scope)
}

// ParentScope reports the scope node resolves names against, once
// name_register_nested has run on its enclosing container. Used by the
// resolver (§4.7).
func (r *Registrar) ParentScope(node ast.Index) ast.ScopeIndex {
	return r.parentScope[node]
}

// Target reports the declaration a resolved `ExprNameUse` denotes, once
// name_resolve has run on it — the type checker's (§4.8) entry point
// for typing a plain identifier read without re-deriving the lexical
// lookup itself. Unset for nodes that were never a name-use (including
// one later overwritten in place by transparent alias substitution,
// which replaces the node's own Kind along with its content).
func (r *Registrar) Target(node ast.Index) (ast.Index, bool) {
	t, ok := r.target[node]
	return t, ok
}

func (r *Registrar) setParentScope(node ast.Index, scope ast.ScopeIndex) {
	if node == ast.Undefined {
		return
	}
	if _, ok := r.parentScope[node]; !ok {
		r.parentScope[node] = scope
	}
}

func (r *Registrar) fixupOwnScope(node ast.Index, ownScope ast.ScopeIndex) {
	if ownScope != 0 {
		scope := r.Store.Scope(ownScope)
		scope.Parent = r.parentScope[node]
		scope.Owner = node
	}
}

func (r *Registrar) recurseOne(d *analysis.Driver, child ast.Index, scope ast.ScopeIndex) error {
	if child == ast.Undefined {
		return nil
	}
	r.setParentScope(child, scope)
	return d.Require(child, ast.PropNameRegisterNested)
}

func (r *Registrar) recurseItems(d *analysis.Driver, sp arena.Span, scope ast.ScopeIndex) error {
	for _, child := range r.Store.ItemsOf(sp) {
		if err := r.recurseOne(d, child, scope); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registrar) sweepAndRecurse(d *analysis.Driver, sp *arena.Span, scope ast.ScopeIndex) error {
	if err := r.Sweep(d, sp, scope); err != nil {
		return err
	}
	return r.recurseItems(d, *sp, scope)
}

// declTarget reports the name a Decl node registers under, or ok=false
// for kinds that never occupy a scope's identifier map (the four
// static-conditional kinds, an unnamed variadic parameter, ...).
func declTarget(d *ast.Decl) (intern.ID, bool) {
	switch d.Kind {
	case ast.DeclModule, ast.DeclImport, ast.DeclAlias, ast.DeclStruct, ast.DeclEnumType,
		ast.DeclEnumConst, ast.DeclEnumMember, ast.DeclVar, ast.DeclFunc, ast.DeclParam,
		ast.DeclField, ast.DeclTemplateParam:
		if d.Name == intern.NoID {
			return intern.NoID, false
		}
		return d.Name, true
	default:
		return intern.NoID, false
	}
}

func (r *Registrar) registerSelf(_ *analysis.Driver, node ast.Index) error {
	d := r.Store.Decl(node)
	if d == nil {
		return nil
	}
	name, ok := declTarget(d)
	if !ok {
		return nil
	}
	scopeIdx, ok := r.parentScope[node]
	if !ok {
		return nil
	}
	scope := r.Store.Scope(scopeIdx)
	if prior, dup := scope.Declare(name, node); dup {
		return r.reportDuplicate(d, prior)
	}
	return nil
}

func (r *Registrar) reportDuplicate(d *ast.Decl, _ ast.Index) error {
	msg := fmt.Sprintf("%q is already declared in this scope", r.Interp.MustLookup(d.Name))
	if rb := diag.ReportError(r.Reporter, diag.NameDuplicateDecl, d.Span, msg); rb != nil {
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}

func (r *Registrar) registerNested(d *analysis.Driver, node ast.Index) error {
	switch node.Kind() {
	case ast.KindDecl:
		return r.registerNestedDecl(d, node)
	case ast.KindStmt:
		return r.registerNestedStmt(d, node)
	case ast.KindExpr:
		return r.registerNestedExpr(d, node)
	case ast.KindType:
		return r.registerNestedType(d, node)
	default:
		return nil
	}
}

func (r *Registrar) registerNestedDecl(d *analysis.Driver, node ast.Index) error {
	decl := r.Store.MustDecl(node)
	r.fixupOwnScope(node, decl.Scope)
	enclosing := r.parentScope[node]

	switch decl.Kind {
	case ast.DeclStruct:
		return r.sweepAndRecurse(d, &decl.Members, decl.Scope)
	case ast.DeclEnumType:
		if err := r.recurseOne(d, decl.BaseType, enclosing); err != nil {
			return err
		}
		return r.sweepAndRecurse(d, &decl.Members, decl.Scope)
	case ast.DeclFunc:
		if err := r.recurseOne(d, decl.ReturnType, enclosing); err != nil {
			return err
		}
		if err := r.recurseItems(d, decl.TemplateParams, decl.Scope); err != nil {
			return err
		}
		if err := r.recurseItems(d, decl.Params, decl.Scope); err != nil {
			return err
		}
		return r.recurseOne(d, decl.Body, decl.Scope)
	case ast.DeclModule:
		return nil
	case ast.DeclStaticIf, ast.DeclStaticVersion, ast.DeclStaticForeach, ast.DeclStaticAssert:
		// A surviving node of these kinds means a container reached it
		// without first sweeping its own item list — an internal
		// inconsistency, not a condition static expansion itself raises.
		return fmt.Errorf("symbols: unexpanded static-conditional node reached registration")
	default:
		if err := r.recurseOne(d, decl.Type, enclosing); err != nil {
			return err
		}
		return r.recurseOne(d, decl.Init, enclosing)
	}
}

func (r *Registrar) registerNestedStmt(d *analysis.Driver, node ast.Index) error {
	s := r.Store.Stmt(node)
	r.fixupOwnScope(node, s.Scope)
	enclosing := r.parentScope[node]

	switch s.Kind {
	case ast.StmtBlock:
		return r.sweepAndRecurse(d, &s.Items, s.Scope)
	case ast.StmtIf:
		if err := r.recurseOne(d, s.Expr, enclosing); err != nil {
			return err
		}
		if err := r.recurseOne(d, s.Then, enclosing); err != nil {
			return err
		}
		return r.recurseOne(d, s.Else, enclosing)
	case ast.StmtWhile:
		if err := r.recurseOne(d, s.Expr, enclosing); err != nil {
			return err
		}
		return r.recurseOne(d, s.Body, enclosing)
	case ast.StmtForIn:
		if err := r.recurseOne(d, s.Iterable, enclosing); err != nil {
			return err
		}
		loopScope := r.Store.NewScope(ast.ScopeLocal, enclosing, "for")
		r.Store.Scope(loopScope).Owner = node
		if err := r.recurseOne(d, s.LoopVar, loopScope); err != nil {
			return err
		}
		return r.recurseOne(d, s.Body, loopScope)
	default:
		return r.recurseOne(d, s.Expr, enclosing)
	}
}

func (r *Registrar) registerNestedExpr(d *analysis.Driver, node ast.Index) error {
	e := r.Store.Expr(node)
	scope := r.parentScope[node]
	for _, child := range [...]ast.Index{e.LHS, e.RHS, e.Operand, e.Base, e.Subscript, e.CastType, e.Callee} {
		if err := r.recurseOne(d, child, scope); err != nil {
			return err
		}
	}
	if err := r.recurseItems(d, e.Args, scope); err != nil {
		return err
	}
	return r.recurseItems(d, e.Parts, scope)
}

func (r *Registrar) registerNestedType(d *analysis.Driver, node ast.Index) error {
	t := r.Store.Type(node)
	scope := r.parentScope[node]
	if err := r.recurseOne(d, t.NameUse, scope); err != nil {
		return err
	}
	if err := r.recurseOne(d, t.Elem, scope); err != nil {
		return err
	}
	if err := r.recurseOne(d, t.ArrayLen, scope); err != nil {
		return err
	}
	if err := r.recurseOne(d, t.ReturnType, scope); err != nil {
		return err
	}
	return r.recurseItems(d, t.Params, scope)
}
