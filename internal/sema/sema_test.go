package sema_test

import (
	"testing"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/sema"
	"github.com/sdvcn/vox/internal/symbols"
)

// newFixture wires a Store, a real name-resolution Registrar, and a
// Checker sharing one Registry/Driver — the order the real pipeline
// runs them in: RegisterRoot (§4.6/§4.7) completes before anything
// calls CheckRoot (§4.8), since the checker's Registrar dependency
// expects every name already resolved.
func newFixture(t *testing.T) (*ast.Store, *intern.Table, *diag.Bag, *analysis.Driver, *symbols.Registrar, *sema.Checker, ast.ScopeIndex) {
	t.Helper()
	store := ast.NewStore()
	interp := intern.New()
	bag := diag.NewBag(32)
	reporter := diag.BagReporter{Bag: bag}

	reg := symbols.NewRegistrar(store, interp, reporter, intern.VersionLinux)
	checker := sema.NewChecker(store, interp, reporter, reg)

	registry := &analysis.Registry{}
	reg.Wire(registry)
	checker.Wire(registry)
	driver := analysis.NewDriver(store, registry, reporter)

	root := store.NewScope(ast.ScopeGlobal, 0, "root")
	return store, interp, bag, driver, reg, checker, root
}

func nameUse(store *ast.Store, interp *intern.Table, name string) ast.Index {
	return store.AllocExpr(ast.Expr{Kind: ast.ExprNameUse, NameID: interp.GetOrIntern(name)})
}

func intLit(store *ast.Store, v int64) ast.Index {
	return store.AllocExpr(ast.Expr{Kind: ast.ExprIntLit, IntValue: v})
}

func boolLit(store *ast.Store, v bool) ast.Index {
	return store.AllocExpr(ast.Expr{Kind: ast.ExprBoolLit, BoolValue: v})
}

func basicType(store *ast.Store, k ast.BasicKind) ast.Index {
	return store.AllocType(ast.TypeNode{Kind: ast.TypeBasic, Basic: k})
}

func TestVarTypeInferredFromLiteral(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	x := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("x"), Init: intLit(store, 5)})
	items := store.AppendItems(x)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err != nil {
		t.Fatalf("CheckRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	xd := store.MustDecl(x)
	xt := store.Type(xd.Type)
	if xt == nil || xt.Kind != ast.TypeBasic || xt.Basic != ast.BasicI32 {
		t.Fatalf("x.Type = %+v, want basic i32", xt)
	}
}

func TestVarDeclaredTypeBiasesLiteralDefault(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	u8 := basicType(store, ast.BasicU8)
	x := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("x"), Type: u8, Init: intLit(store, 5)})
	items := store.AppendItems(x)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err != nil {
		t.Fatalf("CheckRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	xd := store.MustDecl(x)
	init := store.Expr(xd.Init)
	it := store.Type(init.ResolvedType)
	if it == nil || it.Basic != ast.BasicU8 {
		t.Fatalf("init.ResolvedType = %+v, want basic u8 (biased by x's declared type)", it)
	}
}

func TestVarDeclaredTypeMismatchReportsDiagnostic(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	boolT := basicType(store, ast.BasicBool)
	x := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("x"), Type: boolT, Init: intLit(store, 5)})
	items := store.AppendItems(x)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err == nil {
		t.Fatalf("expected CheckRoot to report a type mismatch")
	}
	if !bag.HasErrors() {
		t.Fatalf("expected a diagnostic")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeMismatch, got %+v", bag.Items())
	}
}

// TestParenFreeCallRewritesBareFunctionUse builds:
//
//	func foo() i32 { return 7; }
//	var x = foo;
//
// and checks that x's initializer, a bare use of foo, is rewritten
// in place into a zero-argument call whose result type is foo's
// declared return type.
func TestParenFreeCallRewritesBareFunctionUse(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	i32 := basicType(store, ast.BasicI32)
	funcScope := store.NewScope(ast.ScopeLocal, 0, "foo")
	bodyScope := store.NewScope(ast.ScopeLocal, 0, "body")

	retStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtReturn, Expr: intLit(store, 7)})
	body := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(retStmt), Scope: bodyScope})
	foo := store.AllocDecl(ast.Decl{
		Kind: ast.DeclFunc, Name: interp.GetOrIntern("foo"), Scope: funcScope,
		ReturnType: i32, Body: body,
	})

	xInit := nameUse(store, interp, "foo")
	x := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("x"), Init: xInit})
	items := store.AppendItems(foo, x)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err != nil {
		t.Fatalf("CheckRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	xd := store.MustDecl(x)
	rewritten := store.Expr(xd.Init)
	if rewritten.Kind != ast.ExprCall {
		t.Fatalf("x.Init.Kind = %v, want ExprCall (paren-free-call rewrite)", rewritten.Kind)
	}
	callee := store.Expr(rewritten.Callee)
	if callee == nil || callee.Kind != ast.ExprNameUse {
		t.Fatalf("rewritten.Callee = %+v, want the original name-use preserved as the callee", callee)
	}
	xt := store.Type(xd.Type)
	if xt == nil || xt.Basic != ast.BasicI32 {
		t.Fatalf("x.Type = %+v, want basic i32 (foo's return type)", xt)
	}
}

// TestAddrOfFunctionSuppressesParenFreeCall checks that `&foo` keeps
// foo as a plain name-use denoting the function, instead of calling
// it and taking the address of the (nonexistent) call result.
func TestAddrOfFunctionSuppressesParenFreeCall(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	i32 := basicType(store, ast.BasicI32)
	funcScope := store.NewScope(ast.ScopeLocal, 0, "foo")
	bodyScope := store.NewScope(ast.ScopeLocal, 0, "body")
	retStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtReturn, Expr: intLit(store, 7)})
	body := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(retStmt), Scope: bodyScope})
	foo := store.AllocDecl(ast.Decl{
		Kind: ast.DeclFunc, Name: interp.GetOrIntern("foo"), Scope: funcScope,
		ReturnType: i32, Body: body,
	})

	operand := nameUse(store, interp, "foo")
	addrOf := store.AllocExpr(ast.Expr{Kind: ast.ExprUnary, UnOp: ast.UnAddrOf, Operand: operand})
	p := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Name: interp.GetOrIntern("p"), Init: addrOf})
	items := store.AppendItems(foo, p)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err != nil {
		t.Fatalf("CheckRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	opExpr := store.Expr(operand)
	if opExpr.Kind != ast.ExprNameUse {
		t.Fatalf("operand.Kind = %v, want ExprNameUse (unrewritten)", opExpr.Kind)
	}
	pd := store.MustDecl(p)
	pt := store.Type(pd.Type)
	if pt == nil || pt.Kind != ast.TypePointer {
		t.Fatalf("p.Type = %+v, want a pointer", pt)
	}
	elem := store.Type(pt.Elem)
	if elem == nil || elem.Kind != ast.TypeFuncSig {
		t.Fatalf("p.Type.Elem = %+v, want foo's func_sig", elem)
	}
}

// TestCallWrongArgCountReportsDiagnostic checks a call supplying too
// many arguments against a fixed, non-variadic parameter list.
func TestCallWrongArgCountReportsDiagnostic(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	i32 := basicType(store, ast.BasicI32)
	funcScope := store.NewScope(ast.ScopeLocal, 0, "foo")
	bodyScope := store.NewScope(ast.ScopeLocal, 0, "body")
	retStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtReturn, Expr: intLit(store, 7)})
	body := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(retStmt), Scope: bodyScope})
	param := store.AllocDecl(ast.Decl{Kind: ast.DeclParam, Name: interp.GetOrIntern("n"), Type: i32})
	foo := store.AllocDecl(ast.Decl{
		Kind: ast.DeclFunc, Name: interp.GetOrIntern("foo"), Scope: funcScope,
		Params: store.AppendItems(param), ReturnType: i32, Body: body,
	})

	callee := nameUse(store, interp, "foo")
	call := store.AllocExpr(ast.Expr{
		Kind: ast.ExprCall, Callee: callee,
		Args: store.AppendItems(intLit(store, 1), intLit(store, 2)),
	})
	callStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: call})
	mainScope := store.NewScope(ast.ScopeLocal, 0, "main")
	mainBodyScope := store.NewScope(ast.ScopeLocal, 0, "mainbody")
	mainBody := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(callStmt), Scope: mainBodyScope})
	mainFn := store.AllocDecl(ast.Decl{Kind: ast.DeclFunc, Name: interp.GetOrIntern("main"), Scope: mainScope, Body: mainBody})

	items := store.AppendItems(foo, mainFn)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err == nil {
		t.Fatalf("expected CheckRoot to report wrong argument count")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeWrongArgCount {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeWrongArgCount, got %+v", bag.Items())
	}
}

// TestReturnTypeMismatchReportsDiagnostic checks a `return true;`
// inside a function declared to return i32.
func TestReturnTypeMismatchReportsDiagnostic(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	i32 := basicType(store, ast.BasicI32)
	funcScope := store.NewScope(ast.ScopeLocal, 0, "foo")
	bodyScope := store.NewScope(ast.ScopeLocal, 0, "body")
	retStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtReturn, Expr: boolLit(store, true)})
	body := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(retStmt), Scope: bodyScope})
	foo := store.AllocDecl(ast.Decl{
		Kind: ast.DeclFunc, Name: interp.GetOrIntern("foo"), Scope: funcScope,
		ReturnType: i32, Body: body,
	})
	items := store.AppendItems(foo)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err == nil {
		t.Fatalf("expected CheckRoot to report a return type mismatch")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeMismatch, got %+v", bag.Items())
	}
}

// TestMemberLengthOnSliceParam checks that `s.length` against a
// []u8-typed parameter types as u64 via the synthesized member access
// of §4.8, not an ordinary struct field lookup.
func TestMemberLengthOnSliceParam(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	u8 := basicType(store, ast.BasicU8)
	sliceT := store.AllocType(ast.TypeNode{Kind: ast.TypeSlice, Elem: u8})
	sParam := store.AllocDecl(ast.Decl{Kind: ast.DeclParam, Name: interp.GetOrIntern("s"), Type: sliceT})

	sUse := nameUse(store, interp, "s")
	lengthAccess := store.AllocExpr(ast.Expr{Kind: ast.ExprMember, Base: sUse, NameID: interp.GetOrIntern("length")})
	retStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtReturn, Expr: lengthAccess})

	funcScope := store.NewScope(ast.ScopeLocal, 0, "foo")
	bodyScope := store.NewScope(ast.ScopeLocal, 0, "body")
	body := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(retStmt), Scope: bodyScope})
	u64 := basicType(store, ast.BasicU64)
	foo := store.AllocDecl(ast.Decl{
		Kind: ast.DeclFunc, Name: interp.GetOrIntern("foo"), Scope: funcScope,
		Params: store.AppendItems(sParam), ReturnType: u64, Body: body,
	})
	items := store.AppendItems(foo)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err != nil {
		t.Fatalf("CheckRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	le := store.Expr(lengthAccess)
	lt := store.Type(le.ResolvedType)
	if lt == nil || lt.Kind != ast.TypeBasic || lt.Basic != ast.BasicU64 {
		t.Fatalf("s.length's ResolvedType = %+v, want basic u64", lt)
	}
}

// TestAssignToNonLvalueReportsDiagnostic checks that assigning into a
// by-value (non-mut) parameter is rejected.
func TestAssignToNonLvalueReportsDiagnostic(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	i32 := basicType(store, ast.BasicI32)
	nParam := store.AllocDecl(ast.Decl{Kind: ast.DeclParam, Name: interp.GetOrIntern("n"), Type: i32})

	lhs := nameUse(store, interp, "n")
	assign := store.AllocExpr(ast.Expr{Kind: ast.ExprAssign, AssignOp: ast.AssignPlain, LHS: lhs, RHS: intLit(store, 1)})
	assignStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: assign})

	funcScope := store.NewScope(ast.ScopeLocal, 0, "foo")
	bodyScope := store.NewScope(ast.ScopeLocal, 0, "body")
	body := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(assignStmt), Scope: bodyScope})
	foo := store.AllocDecl(ast.Decl{
		Kind: ast.DeclFunc, Name: interp.GetOrIntern("foo"), Scope: funcScope,
		Params: store.AppendItems(nParam), Body: body,
	})
	items := store.AppendItems(foo)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err == nil {
		t.Fatalf("expected CheckRoot to reject assigning into a non-mut parameter")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeLvalueRequired {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeLvalueRequired, got %+v", bag.Items())
	}
}

// TestCastIntToPointerAllowed checks the explicit cast pair list's
// integer<->pointer entry, §4.8.
func TestCastIntToPointerAllowed(t *testing.T) {
	store, interp, bag, driver, reg, checker, root := newFixture(t)

	u8 := basicType(store, ast.BasicU8)
	ptrT := store.AllocType(ast.TypeNode{Kind: ast.TypePointer, Elem: u8})
	cast := store.AllocExpr(ast.Expr{Kind: ast.ExprCast, CastType: ptrT, Operand: intLit(store, 0)})
	castStmt := store.AllocStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: cast})

	funcScope := store.NewScope(ast.ScopeLocal, 0, "foo")
	bodyScope := store.NewScope(ast.ScopeLocal, 0, "body")
	body := store.AllocStmt(ast.Stmt{Kind: ast.StmtBlock, Items: store.AppendItems(castStmt), Scope: bodyScope})
	foo := store.AllocDecl(ast.Decl{Kind: ast.DeclFunc, Name: interp.GetOrIntern("foo"), Scope: funcScope, Body: body})
	items := store.AppendItems(foo)

	if err := reg.RegisterRoot(driver, &items, root); err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if err := checker.CheckRoot(driver, items); err != nil {
		t.Fatalf("CheckRoot: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	ce := store.Expr(cast)
	if ce.ResolvedType != ptrT {
		t.Fatalf("cast.ResolvedType = %v, want %v", ce.ResolvedType, ptrT)
	}
}
