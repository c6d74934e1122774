package symbols_test

import (
	"testing"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/symbols"
)

// newFixture wires a fresh Store/Registrar/Driver trio with a global
// root scope, the shape every real compilation builds at the top of
// its pipeline (§4.6's "registration begins at the module's own
// scope").
func newFixture(t *testing.T) (*ast.Store, *intern.Table, *diag.Bag, *analysis.Driver, *symbols.Registrar, ast.ScopeIndex) {
	t.Helper()
	store := ast.NewStore()
	interp := intern.New()
	bag := diag.NewBag(32)
	reporter := diag.BagReporter{Bag: bag}

	reg := symbols.NewRegistrar(store, interp, reporter, intern.VersionLinux)
	registry := &analysis.Registry{}
	reg.Wire(registry)
	driver := analysis.NewDriver(store, registry, reporter)

	root := store.NewScope(ast.ScopeGlobal, 0, "root")
	return store, interp, bag, driver, reg, root
}

func nameUse(store *ast.Store, interp *intern.Table, name string) ast.Index {
	return store.AllocExpr(ast.Expr{Kind: ast.ExprNameUse, NameID: interp.GetOrIntern(name)})
}

func boolLit(store *ast.Store, v bool) ast.Index {
	return store.AllocExpr(ast.Expr{Kind: ast.ExprBoolLit, BoolValue: v})
}

func TestRegisterSelfDetectsDuplicateDecl(t *testing.T) {
	store, interp, bag, driver, reg, root := newFixture(t)

	a := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("x")})
	b := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("x")})
	items := store.AppendItems(a, b)

	// The second declaration's registerSelf step fails, and that error
	// bubbles all the way back up through RegisterRoot rather than being
	// swallowed: only the (node, property) pair itself is poisoned
	// against being recomputed, not the caller's error return.
	if err := reg.RegisterRoot(driver, &items, root); err == nil {
		t.Fatalf("expected RegisterRoot to propagate the duplicate-declaration error")
	}
	if !bag.HasErrors() {
		t.Fatalf("expected a duplicate-declaration diagnostic")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.NameDuplicateDecl {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected NameDuplicateDecl, got %+v", bag.Items())
	}
}

func TestStaticIfSelectsTrueBranch(t *testing.T) {
	store, interp, bag, driver, reg, root := newFixture(t)

	kept := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("kept")})
	dropped := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("dropped")})
	ifDecl := store.AllocDecl(ast.Decl{
		Kind: ast.DeclStaticIf,
		Cond: boolLit(store, true),
		Then: store.AppendItems(kept),
		Else: store.AppendItems(dropped),
	})
	items := store.AppendItems(ifDecl)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	got := store.ItemsOf(items)
	if len(got) != 1 || got[0] != kept {
		t.Fatalf("items = %v, want [%v] (the true branch only)", got, kept)
	}
}

func TestStaticVersionSelectsByTarget(t *testing.T) {
	store, _, bag, driver, reg, root := newFixture(t)

	linuxOnly := store.AllocDecl(ast.Decl{Kind: ast.DeclVar})
	windowsOnly := store.AllocDecl(ast.Decl{Kind: ast.DeclVar})
	verDecl := store.AllocDecl(ast.Decl{
		Kind:      ast.DeclStaticVersion,
		VersionID: intern.VersionLinux,
		Then:      store.AppendItems(linuxOnly),
		Else:      store.AppendItems(windowsOnly),
	})
	items := store.AppendItems(verDecl)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	got := store.ItemsOf(items)
	if len(got) != 1 || got[0] != linuxOnly {
		t.Fatalf("items = %v, want [%v]", got, linuxOnly)
	}
}

func TestStaticAssertReportsFailureAndDisappears(t *testing.T) {
	store, _, bag, driver, reg, root := newFixture(t)

	assertDecl := store.AllocDecl(ast.Decl{
		Kind: ast.DeclStaticAssert,
		Cond: boolLit(store, false),
	})
	items := store.AppendItems(assertDecl)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if !bag.HasErrors() {
		t.Fatalf("expected an AssertFailed diagnostic")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.AssertFailed {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AssertFailed, got %+v", bag.Items())
	}
	if got := store.ItemsOf(items); len(got) != 0 {
		t.Fatalf("items = %v, want empty (assert nodes never survive expansion)", got)
	}
}

func TestForeachBindsKeyAndValuePerIteration(t *testing.T) {
	store, interp, bag, driver, reg, root := newFixture(t)

	arrName := interp.GetOrIntern("names")
	elemA := store.AllocExpr(ast.Expr{Kind: ast.ExprStringLit, StringValue: interp.GetOrIntern("a")})
	elemB := store.AllocExpr(ast.Expr{Kind: ast.ExprStringLit, StringValue: interp.GetOrIntern("b")})
	arrLit := store.AllocExpr(ast.Expr{Kind: ast.ExprArrayLit, Args: store.AppendItems(elemA, elemB)})
	aliasDecl := store.AllocDecl(ast.Decl{Kind: ast.DeclAlias, Name: arrName, Init: arrLit})

	bodyField := store.AllocDecl(ast.Decl{Kind: ast.DeclField, Name: interp.GetOrIntern("f")})
	foreachDecl := store.AllocDecl(ast.Decl{
		Kind:      ast.DeclStaticForeach,
		KeyName:   interp.GetOrIntern("i"),
		ValueName: interp.GetOrIntern("v"),
		Iterable:  nameUse(store, interp, "names"),
		ForBody:   store.AppendItems(bodyField),
	})
	items := store.AppendItems(aliasDecl, foreachDecl)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	got := store.ItemsOf(items)
	// aliasDecl, then per element: keyDecl, valDecl, one cloned field -> 1 + 2*3 = 7
	if len(got) != 1+2*3 {
		t.Fatalf("items = %v (len %d), want len %d", got, len(got), 1+2*3)
	}

	firstIterScope := reg.ParentScope(got[1])
	if firstIterScope == 0 {
		t.Fatalf("expected the synthesized key decl to carry a parentScope")
	}
	secondIterScope := reg.ParentScope(got[4])
	if secondIterScope == 0 || secondIterScope == firstIterScope {
		t.Fatalf("expected each iteration to get its own instance scope, got %v and %v", firstIterScope, secondIterScope)
	}

	for _, idx := range got {
		if err := driver.Require(idx, ast.PropNameRegisterNested); err != nil {
			t.Fatalf("Require(%v, PropNameRegisterNested): %v", idx, err)
		}
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics after registering nested clones: %+v", bag.Items())
	}
}

func TestResolveUndefinedIdentifierReportsError(t *testing.T) {
	store, interp, bag, driver, reg, root := newFixture(t)

	use := nameUse(store, interp, "missing")
	holder := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("holder"), Init: use})
	items := store.AppendItems(holder)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}

	if err := driver.Require(use, ast.PropNameResolve); err == nil {
		t.Fatalf("expected an error resolving an undefined identifier")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.NameUndefinedIdentifier {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected NameUndefinedIdentifier, got %+v", bag.Items())
	}
}

// TestResolveRewritesImplicitMemberAccess builds struct S { field f; func
// m() { f; } } by hand and checks that the bare use of `f` inside `m`
// is rewritten to an implicit `this.f`.
func TestResolveRewritesImplicitMemberAccess(t *testing.T) {
	store, interp, bag, driver, reg, root := newFixture(t)

	fieldID := interp.GetOrIntern("f")
	fieldDecl := store.AllocDecl(ast.Decl{Kind: ast.DeclField, Name: fieldID})

	memberScope := store.NewScope(ast.ScopeMember, 0, "S")
	funcScope := store.NewScope(ast.ScopeLocal, 0, "m")
	blockScope := store.NewScope(ast.ScopeLocal, 0, "block")

	use := nameUse(store, interp, "f")
	exprStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: use})
	blockStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(exprStmt), Scope: blockScope})
	methodDecl := store.AllocDecl(ast.Decl{Kind: ast.DeclFunc, Name: interp.GetOrIntern("m"), Scope: funcScope, Body: blockStmt})
	structDecl := store.AllocDecl(ast.Decl{
		Kind: ast.DeclStruct, Name: interp.GetOrIntern("S"), Scope: memberScope,
		Members: store.AppendItems(fieldDecl, methodDecl),
	})
	items := store.AppendItems(structDecl)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	if err := driver.Require(use, ast.PropNameResolve); err != nil {
		t.Fatalf("Require(PropNameResolve): %v", err)
	}

	e := store.Expr(use)
	if e.Kind != ast.ExprMember {
		t.Fatalf("Kind = %v, want ExprMember", e.Kind)
	}
	if e.NameID != fieldID {
		t.Fatalf("member name = %v, want %v", e.NameID, fieldID)
	}
	base := store.Expr(e.Base)
	if base == nil || base.Kind != ast.ExprThis {
		t.Fatalf("Base = %v, want a synthesized ExprThis", base)
	}
	if !e.Flags.Has(ast.FlagNeedsDeref) {
		t.Fatalf("expected FlagNeedsDeref to be set on the rewritten member access")
	}
}

// TestResolveSubstitutesAliasOfAliasChain checks that resolving a use of
// an alias whose own initializer is itself another alias's name fully
// flattens the chain, not just one hop.
func TestResolveSubstitutesAliasOfAliasChain(t *testing.T) {
	store, interp, bag, driver, reg, root := newFixture(t)

	lit := store.AllocExpr(ast.Expr{Kind: ast.ExprIntLit, IntValue: 7})
	inner := store.AllocDecl(ast.Decl{Kind: ast.DeclAlias, Name: interp.GetOrIntern("inner"), Init: lit})
	outer := store.AllocDecl(ast.Decl{Kind: ast.DeclAlias, Name: interp.GetOrIntern("outer"), Init: nameUse(store, interp, "inner")})

	use := nameUse(store, interp, "outer")
	holder := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("holder"), Init: use})
	items := store.AppendItems(inner, outer, holder)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	if err := driver.Require(use, ast.PropNameResolve); err != nil {
		t.Fatalf("Require(PropNameResolve): %v", err)
	}
	e := store.Expr(use)
	if e.Kind != ast.ExprIntLit || e.IntValue != 7 {
		t.Fatalf("use = %+v, want the fully flattened int_lit(7)", e)
	}
}

// TestResolveTypeFlattensAliasChainEndingInBasicType checks that a
// type-position use naming an alias whose chain bottoms out in a bare
// built-in scalar name (alias A = B; alias B = i32;) resolves straight
// through to TypeBasic, with no decl ever backing the basic name itself.
func TestResolveTypeFlattensAliasChainEndingInBasicType(t *testing.T) {
	store, interp, bag, driver, reg, root := newFixture(t)

	b := store.AllocDecl(ast.Decl{Kind: ast.DeclAlias, Name: interp.GetOrIntern("B"), Init: nameUse(store, interp, "i32")})
	a := store.AllocDecl(ast.Decl{Kind: ast.DeclAlias, Name: interp.GetOrIntern("A"), Init: nameUse(store, interp, "B")})

	nameExpr := nameUse(store, interp, "A")
	typeNode := store.AllocType(ast.TypeNode{Kind: ast.TypeNameUse, NameUse: nameExpr})
	holder := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("x"), Type: typeNode})
	items := store.AppendItems(b, a, holder)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	if err := driver.Require(typeNode, ast.PropNameResolve); err != nil {
		t.Fatalf("Require(PropNameResolve): %v", err)
	}
	tn := store.Type(typeNode)
	if tn.Kind != ast.TypeBasic || tn.Basic != ast.BasicI32 {
		t.Fatalf("type = %+v, want TypeBasic(BasicI32)", tn)
	}
}

// TestResolveTypeRecognizesBasicScalarName checks that a type-position
// use of a built-in scalar name short-circuits straight to TypeBasic
// without needing any enclosing declaration.
func TestResolveTypeRecognizesBasicScalarName(t *testing.T) {
	store, interp, bag, driver, _, root := newFixture(t)
	_ = root

	nameExpr := nameUse(store, interp, "i32")
	typeNode := store.AllocType(ast.TypeNode{Kind: ast.TypeNameUse, NameUse: nameExpr})
	// resolveType reads the scope only on the non-basic path, so a bare
	// Require suffices here.
	if err := driver.Require(typeNode, ast.PropNameResolve); err != nil {
		t.Fatalf("Require(PropNameResolve): %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	tn := store.Type(typeNode)
	if tn.Kind != ast.TypeBasic || tn.Basic != ast.BasicI32 {
		t.Fatalf("type = %+v, want TypeBasic(BasicI32)", tn)
	}
}

// TestResolveTypeNamesStructDeclaration checks that a type-position use
// naming a struct is rewritten to TypeStruct pointing at the
// declaration.
func TestResolveTypeNamesStructDeclaration(t *testing.T) {
	store, interp, bag, driver, reg, root := newFixture(t)

	structDecl := store.AllocDecl(ast.Decl{Kind: ast.DeclStruct, Name: interp.GetOrIntern("Point")})
	nameExpr := nameUse(store, interp, "Point")
	typeNode := store.AllocType(ast.TypeNode{Kind: ast.TypeNameUse, NameUse: nameExpr})
	holder := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("p"), Type: typeNode})
	items := store.AppendItems(structDecl, holder)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	if err := driver.Require(typeNode, ast.PropNameResolve); err != nil {
		t.Fatalf("Require(PropNameResolve): %v", err)
	}
	tn := store.Type(typeNode)
	if tn.Kind != ast.TypeStruct || tn.Decl != structDecl {
		t.Fatalf("type = %+v, want TypeStruct(%v)", tn, structDecl)
	}
}

// TestForInGivesTheLoopVariableItsOwnScope checks that a for-in loop's
// bound variable is visible inside the body but does not leak into the
// enclosing scope, and that its scope sits between the enclosing scope
// and the body block's own scope.
func TestForInGivesTheLoopVariableItsOwnScope(t *testing.T) {
	store, interp, bag, driver, reg, root := newFixture(t)

	elemA := store.AllocExpr(ast.Expr{Kind: ast.ExprIntLit, IntValue: 1})
	arrLit := store.AllocExpr(ast.Expr{Kind: ast.ExprArrayLit, Args: store.AppendItems(elemA)})
	iterableAlias := store.AllocDecl(ast.Decl{Kind: ast.DeclAlias, Name: interp.GetOrIntern("xs"), Init: arrLit})

	loopVar := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("x")})
	use := nameUse(store, interp, "x")
	bodyStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: use})
	bodyScope := store.NewScope(ast.ScopeLocal, 0, "body")
	body := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(bodyStmt), Scope: bodyScope})

	forStmt := store.AllocStmt(ast.Stmt{
		Kind: ast.StmtForIn, LoopVar: loopVar,
		Iterable: nameUse(store, interp, "xs"), Body: body,
	})
	items := store.AppendItems(iterableAlias, forStmt)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	if err := driver.Require(use, ast.PropNameResolve); err != nil {
		t.Fatalf("Require(PropNameResolve) on loop body use: %v", err)
	}
	e := store.Expr(use)
	if e.Kind != ast.ExprNameUse {
		t.Fatalf("loop variable use was unexpectedly rewritten: %+v", e)
	}

	loopScope := reg.ParentScope(loopVar)
	if loopScope == 0 {
		t.Fatalf("expected the loop variable to carry a parentScope")
	}
	if store.Scope(loopScope).Parent != root {
		t.Fatalf("loop scope's parent = %v, want root %v", store.Scope(loopScope).Parent, root)
	}
	if store.Scope(bodyScope).Parent != loopScope {
		t.Fatalf("body block's scope parent = %v, want the loop scope %v", store.Scope(bodyScope).Parent, loopScope)
	}
	if _, ok := store.Scope(root).Lookup(interp.GetOrIntern("x")); ok {
		t.Fatalf("loop variable leaked into the enclosing scope")
	}
}
