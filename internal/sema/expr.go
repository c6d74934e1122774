package sema

import (
	"fmt"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
)

func (c *Checker) checkExpr(d *analysis.Driver, node ast.Index) error {
	e := c.Store.Expr(node)
	switch e.Kind {
	case ast.ExprNameUse:
		return c.checkNameUse(d, node, e)
	case ast.ExprIntLit:
		e.ResolvedType = c.defaultInt(node, e.IntValue)
		return nil
	case ast.ExprUintLit:
		e.ResolvedType = c.defaultUint(node, e.UintValue)
		return nil
	case ast.ExprFloatLit:
		e.ResolvedType = c.defaultFloat(node)
		return nil
	case ast.ExprBoolLit:
		e.ResolvedType = c.basicType(ast.BasicBool)
		return nil
	case ast.ExprNullLit:
		e.ResolvedType = c.defaultNull(node)
		return nil
	case ast.ExprStringLit:
		e.ResolvedType = c.u8SliceType()
		e.Flags |= ast.FlagLValue // a read-only global, still addressable
		return nil
	case ast.ExprFStringLit:
		return c.checkFString(d, e)
	case ast.ExprThis:
		return c.checkThis(d, node, e)
	case ast.ExprBinary:
		return c.checkBinary(d, node, e)
	case ast.ExprUnary:
		return c.checkUnary(d, node, e)
	case ast.ExprAssign:
		return c.checkAssign(d, node, e)
	case ast.ExprCall:
		return c.checkCall(d, node, e)
	case ast.ExprIndex:
		return c.checkIndex(d, node, e)
	case ast.ExprMember:
		return c.checkMember(d, node, e)
	case ast.ExprCast:
		return c.checkCast(d, node, e)
	case ast.ExprArrayLit:
		return c.checkArrayLit(d, node, e)
	default:
		return nil
	}
}

// checkNameUse types a plain identifier that survived name resolution
// unchanged — every member-access and alias-substitution rewrite in
// §4.7 already turned anything else into a different Kind. The
// paren-free-call lowering of §4.8 happens here: a bare use of a
// function is rewritten into a zero-argument call, unless the
// surrounding context asked for the callable value itself via
// markWantsCallable (an address-of operand, an alias's initializer).
func (c *Checker) checkNameUse(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	target, ok := c.Names.Target(node)
	if !ok {
		return fmt.Errorf("sema: name-use %v has no recorded target", node)
	}
	decl := c.Store.MustDecl(target)
	switch decl.Kind {
	case ast.DeclFunc:
		e.ResolvedType = c.funcSigOf(decl, target)
		if c.wantsCallable[node] {
			return nil
		}
		return c.rewriteParenFreeCall(d, node, e, decl)
	case ast.DeclVar, ast.DeclParam, ast.DeclField:
		if err := d.Require(decl.Type, ast.PropType); err != nil {
			return err
		}
		e.ResolvedType = decl.Type
		if decl.Kind != ast.DeclParam || decl.Flags.Has(ast.FlagIsMut) {
			e.Flags |= ast.FlagLValue
		}
		return nil
	case ast.DeclEnumConst, ast.DeclEnumMember:
		if err := d.Require(target, ast.PropType); err != nil {
			return err
		}
		e.ResolvedType = decl.Type
		return nil
	default:
		return fmt.Errorf("sema: name-use resolves to unexpected decl kind %v", decl.Kind)
	}
}

// markWantsCallable records that node, a not-yet-typed ExprNameUse,
// must keep denoting the function itself rather than being rewritten
// into a zero-argument call — set before requiring PropType on it, the
// same ordering setHint depends on.
func (c *Checker) markWantsCallable(node ast.Index) {
	if node.Kind() == ast.KindExpr {
		c.wantsCallable[node] = true
	}
}

// rewriteParenFreeCall converts a bare function name-use into an
// explicit zero-argument ExprCall in place: the original content
// moves to a freshly-allocated sibling node (so anything else still
// holding this same Index sees the rewritten call), mirroring how
// resolveExpr synthesizes an ExprThis base for an implicit member
// access in §4.7. The clone is never itself driven through the
// analysis driver — it carries a target only name resolution would
// normally record, so this sets its fields directly instead.
func (c *Checker) rewriteParenFreeCall(d *analysis.Driver, node ast.Index, e *ast.Expr, decl *ast.Decl) error {
	calleeIdx := c.Store.AllocExpr(*e)
	e.Kind = ast.ExprCall
	e.Callee = calleeIdx
	e.Args = arena.Span{}
	return c.checkArgsAgainstFunc(d, node, e, decl)
}

func (c *Checker) checkThis(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	structDecl, ok := c.enclosingDecl(c.Names.ParentScope(node), ast.DeclStruct)
	if !ok {
		return c.reportSimple(node, diag.TypeMismatch, "`this` used outside of a struct method")
	}
	structType := c.canon(canonKey{kind: ast.TypeStruct, elem: structDecl}, func() ast.TypeNode {
		return ast.TypeNode{Kind: ast.TypeStruct, Decl: structDecl}
	})
	e.ResolvedType = c.pointerTo(structType)
	return nil
}

func (c *Checker) checkFString(d *analysis.Driver, e *ast.Expr) error {
	for _, part := range c.Store.ItemsOf(e.Parts) {
		if err := d.Require(part, ast.PropType); err != nil {
			return err
		}
	}
	e.ResolvedType = c.u8SliceType()
	return nil
}

// checkBinary synthesizes each operand bottom-up, then lets the second
// operand's literal default bias toward the first's resolved type
// before checking the pair is compatible — the common-value-literal
// exception of §4.8 applies equally to either side of an operator.
func (c *Checker) checkBinary(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	if err := d.Require(e.LHS, ast.PropType); err != nil {
		return err
	}
	lhsType := c.resolvedTypeIndex(e.LHS)
	if err := c.requireWithHint(d, e.RHS, lhsType); err != nil {
		return err
	}
	rhsType := c.resolvedTypeIndex(e.RHS)
	lt, rt := c.Store.Type(lhsType), c.Store.Type(rhsType)
	if lt == nil || rt == nil {
		return c.reportSimple(node, diag.TypeMismatch, "invalid operand to binary operator")
	}

	switch e.BinOp {
	case ast.BinLogicalAnd, ast.BinLogicalOr:
		if lt.Basic != ast.BasicBool || rt.Basic != ast.BasicBool || lt.Kind != ast.TypeBasic || rt.Kind != ast.TypeBasic {
			return c.reportSimple(node, diag.TypeMismatch, "logical operator needs bool operands")
		}
		e.ResolvedType = c.basicType(ast.BasicBool)
		return nil
	case ast.BinEq, ast.BinNotEq, ast.BinLt, ast.BinLtEq, ast.BinGt, ast.BinGtEq:
		if !c.assignable(lhsType, rhsType, e.RHS) && !c.assignable(rhsType, lhsType, e.LHS) {
			return c.mismatch(node, lhsType, rhsType)
		}
		e.ResolvedType = c.basicType(ast.BasicBool)
		return nil
	case ast.BinShl, ast.BinShr:
		if lt.Kind != ast.TypeBasic || !lt.Basic.IsInteger() || rt.Kind != ast.TypeBasic || !rt.Basic.IsInteger() {
			return c.reportSimple(node, diag.TypeMismatch, "shift needs integer operands")
		}
		e.ResolvedType = lhsType
		return nil
	case ast.BinBitAnd, ast.BinBitOr, ast.BinBitXor:
		if lt.Kind != ast.TypeBasic || !lt.Basic.IsInteger() || !c.assignable(lhsType, rhsType, e.RHS) {
			return c.reportSimple(node, diag.TypeMismatch, "bitwise operator needs matching integer operands")
		}
		e.ResolvedType = lhsType
		return nil
	default: // Add, Sub, Mul, Div, Mod
		if lt.Kind != ast.TypeBasic || (!lt.Basic.IsInteger() && !lt.Basic.IsFloat()) {
			return c.reportSimple(node, diag.TypeMismatch, "arithmetic operator needs a numeric operand")
		}
		if !c.assignable(lhsType, rhsType, e.RHS) && !c.assignable(rhsType, lhsType, e.LHS) {
			return c.mismatch(node, lhsType, rhsType)
		}
		e.ResolvedType = lhsType
		return nil
	}
}

func (c *Checker) checkUnary(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	if e.UnOp == ast.UnAddrOf {
		c.markWantsCallable(e.Operand)
	}
	if err := d.Require(e.Operand, ast.PropType); err != nil {
		return err
	}
	opType := c.resolvedTypeIndex(e.Operand)
	ot := c.Store.Type(opType)
	if ot == nil {
		return c.reportSimple(node, diag.TypeMismatch, "invalid operand to unary operator")
	}
	switch e.UnOp {
	case ast.UnNeg:
		if ot.Kind != ast.TypeBasic || (!ot.Basic.IsInteger() && !ot.Basic.IsFloat()) {
			return c.reportSimple(node, diag.TypeMismatch, "unary - needs a numeric operand")
		}
		e.ResolvedType = opType
		return nil
	case ast.UnNot:
		if ot.Kind != ast.TypeBasic || ot.Basic != ast.BasicBool {
			return c.reportSimple(node, diag.TypeMismatch, "unary ! needs a bool operand")
		}
		e.ResolvedType = opType
		return nil
	case ast.UnBitNot:
		if ot.Kind != ast.TypeBasic || !ot.Basic.IsInteger() {
			return c.reportSimple(node, diag.TypeMismatch, "unary ~ needs an integer operand")
		}
		e.ResolvedType = opType
		return nil
	case ast.UnAddrOf:
		opExpr := c.Store.Expr(e.Operand)
		// A bare function name is inherently reference-like (its
		// paren-free-call rewrite was already suppressed above for
		// exactly this operand): `&foo` takes its address without
		// foo itself needing to be an addressable storage location.
		if ot.Kind != ast.TypeFuncSig && (opExpr == nil || !opExpr.Flags.Has(ast.FlagLValue)) {
			return c.addrOfRvalue(node)
		}
		e.ResolvedType = c.pointerTo(opType)
		return nil
	case ast.UnDeref:
		if ot.Kind != ast.TypePointer {
			return c.reportSimple(node, diag.TypeMismatch, "unary * needs a pointer operand")
		}
		e.ResolvedType = ot.Elem
		e.Flags |= ast.FlagLValue
		return nil
	default:
		return c.reportSimple(node, diag.TypeMismatch, "unknown unary operator")
	}
}

func (c *Checker) checkAssign(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	if err := d.Require(e.LHS, ast.PropType); err != nil {
		return err
	}
	lhsExpr := c.Store.Expr(e.LHS)
	if lhsExpr == nil || !lhsExpr.Flags.Has(ast.FlagLValue) {
		return c.reportSimple(node, diag.TypeLvalueRequired, "assignment target must be an lvalue")
	}
	lhsType := c.resolvedTypeIndex(e.LHS)
	if err := c.requireWithHint(d, e.RHS, lhsType); err != nil {
		return err
	}
	if e.AssignOp != ast.AssignPlain {
		lt := c.Store.Type(lhsType)
		if lt == nil || lt.Kind != ast.TypeBasic || (!lt.Basic.IsInteger() && !lt.Basic.IsFloat()) {
			return c.reportSimple(node, diag.TypeMismatch, "compound assignment needs a numeric target")
		}
	}
	if !c.assignable(lhsType, c.resolvedTypeIndex(e.RHS), e.RHS) {
		return c.mismatch(e.RHS, lhsType, c.resolvedTypeIndex(e.RHS))
	}
	e.ResolvedType = lhsType
	return nil
}

// checkCall handles an explicit source-level call, e.g. `f(1, 2)`.
// Its Callee may be a bare function name-use (the common case,
// resolved via Target straight to the declaration so default
// arguments can be filled in) or any other FuncSig-typed expression
// (a value held in a variable, an indexed table of functions) — the
// latter has no declaration to consult for defaults, so a call
// through it must supply every parameter explicitly.
func (c *Checker) checkCall(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	c.markWantsCallable(e.Callee)
	if err := d.Require(e.Callee, ast.PropType); err != nil {
		return err
	}
	if decl, ok := c.calleeDecl(e.Callee); ok {
		return c.checkArgsAgainstFunc(d, node, e, decl)
	}
	calleeType := c.Store.Type(c.resolvedTypeIndex(e.Callee))
	if calleeType == nil || calleeType.Kind != ast.TypeFuncSig {
		return c.reportSimple(node, diag.TypeNotCallable, "value is not callable")
	}
	params := c.Store.ItemsOf(calleeType.Params)
	args := c.Store.ItemsOf(e.Args)
	if len(args) != len(params) && !(calleeType.Variadic && len(args) >= len(params)-1) {
		return c.reportSimple(node, diag.TypeWrongArgCount, "wrong number of arguments")
	}
	for i, arg := range args {
		paramType := params[len(params)-1]
		if i < len(params) {
			paramType = params[i]
		}
		if err := c.requireWithHint(d, arg, paramType); err != nil {
			return err
		}
		if !c.assignable(paramType, c.resolvedTypeIndex(arg), arg) {
			return c.mismatch(arg, paramType, c.resolvedTypeIndex(arg))
		}
	}
	e.ResolvedType = calleeType.ReturnType
	return nil
}

// calleeDecl recovers the DeclFunc a call's Callee denotes, covering
// both an ordinary name-use (registered by name resolution) and the
// sibling node rewriteParenFreeCall split off — which carries its own
// Target entry under its original index, since it is a straight copy
// of the node that had one.
func (c *Checker) calleeDecl(callee ast.Index) (*ast.Decl, bool) {
	e := c.Store.Expr(callee)
	if e == nil || e.Kind != ast.ExprNameUse {
		return nil, false
	}
	target, ok := c.Names.Target(callee)
	if !ok {
		return nil, false
	}
	decl := c.Store.Decl(target)
	if decl == nil || decl.Kind != ast.DeclFunc {
		return nil, false
	}
	return decl, true
}

// checkArgsAgainstFunc validates e.Args against decl's parameter list,
// filling missing trailing arguments from their declared defaults
// (already validated by checkFunc to be trailing-only) and reporting
// TypeWrongArgCount / TypeMissingDefaultArg otherwise.
func (c *Checker) checkArgsAgainstFunc(d *analysis.Driver, node ast.Index, e *ast.Expr, decl *ast.Decl) error {
	params := c.Store.ItemsOf(decl.Params)
	args := c.Store.ItemsOf(e.Args)
	variadic := len(params) > 0 && c.Store.MustDecl(params[len(params)-1]).Flags.Has(ast.FlagVariadicParam)

	minRequired := 0
	for _, p := range params {
		pd := c.Store.MustDecl(p)
		if pd.Init != ast.Undefined || pd.Flags.Has(ast.FlagVariadicParam) {
			break
		}
		minRequired++
	}
	if len(args) < minRequired {
		return c.missingArg(node, params[len(args)])
	}
	if len(args) > len(params) && !variadic {
		return c.reportSimple(node, diag.TypeWrongArgCount, "too many arguments")
	}

	for i, arg := range args {
		paramIdx := i
		if paramIdx >= len(params) {
			paramIdx = len(params) - 1
		}
		pd := c.Store.MustDecl(params[paramIdx])
		if err := d.Require(params[paramIdx], ast.PropType); err != nil {
			return err
		}
		if err := c.requireWithHint(d, arg, pd.Type); err != nil {
			return err
		}
		if !c.assignable(pd.Type, c.resolvedTypeIndex(arg), arg) {
			return c.mismatch(arg, pd.Type, c.resolvedTypeIndex(arg))
		}
	}
	e.ResolvedType = decl.ReturnType
	return nil
}

func (c *Checker) checkIndex(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	if err := d.Require(e.Base, ast.PropType); err != nil {
		return err
	}
	baseType := c.typeOf(e.Base)
	if baseType == nil {
		return c.reportSimple(node, diag.TypeMismatch, "cannot index this value")
	}
	elem, ok := elemTypeOf(baseType)
	if !ok {
		return c.reportSimple(node, diag.TypeMismatch, "cannot index this value")
	}
	if err := c.requireWithHint(d, e.Subscript, c.basicType(ast.BasicU64)); err != nil {
		return err
	}
	st := c.typeOf(e.Subscript)
	if st == nil || st.Kind != ast.TypeBasic || !st.Basic.IsInteger() {
		return c.reportSimple(node, diag.TypeMismatch, "index must be an integer")
	}
	e.ResolvedType = elem
	e.Flags |= ast.FlagLValue
	return nil
}

// checkMember types a `base.name` access. A Base typed as a pointer
// is auto-dereferenced (covering both the resolver's synthesized
// `this.<member>` and an ordinary `p.field` on a pointer-to-struct).
// Against a slice/static-array/pointer receiver, `length`/`ptr` are
// synthesized member names rather than real struct fields (§4.8):
// this assigns them their type without restructuring the node, since
// IR generation is what eventually recognizes the shape and lowers it
// directly — there is nothing further to typecheck once it is typed.
func (c *Checker) checkMember(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	if err := d.Require(e.Base, ast.PropType); err != nil {
		return err
	}
	baseType := c.typeOf(e.Base)
	if baseType == nil {
		return c.noSuchMember(node, e.NameID)
	}
	effective := baseType
	if baseType.Kind == ast.TypePointer {
		e.Flags |= ast.FlagNeedsDeref
		effective = c.Store.Type(baseType.Elem)
		if effective == nil {
			return c.noSuchMember(node, e.NameID)
		}
	}
	switch effective.Kind {
	case ast.TypeStruct:
		field := c.findField(effective.Decl, e.NameID)
		if field == nil {
			return c.noSuchMember(node, e.NameID)
		}
		if err := d.Require(field.Type, ast.PropType); err != nil {
			return err
		}
		e.ResolvedType = field.Type
		e.Flags |= ast.FlagLValue
		return nil
	case ast.TypeSlice, ast.TypeStaticArray, ast.TypePointer:
		switch e.NameID {
		case c.lengthID:
			e.ResolvedType = c.basicType(ast.BasicU64)
			return nil
		case c.ptrID:
			elem, _ := elemTypeOf(effective)
			e.ResolvedType = c.pointerTo(elem)
			return nil
		default:
			return c.noSuchMember(node, e.NameID)
		}
	default:
		return c.noSuchMember(node, e.NameID)
	}
}

func (c *Checker) findField(structDecl ast.Index, name intern.ID) *ast.Decl {
	for _, m := range c.Store.ItemsOf(c.Store.MustDecl(structDecl).Members) {
		fd := c.Store.Decl(m)
		if fd != nil && fd.Kind == ast.DeclField && fd.Name == name {
			return fd
		}
	}
	return nil
}

// checkCast resolves `cast(T) e` per §4.8's allowed-pair list.
func (c *Checker) checkCast(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	if err := d.Require(e.CastType, ast.PropType); err != nil {
		return err
	}
	c.setHint(e.Operand, e.CastType)
	if err := d.Require(e.Operand, ast.PropType); err != nil {
		return err
	}
	if !c.castAllowed(e.CastType, c.resolvedTypeIndex(e.Operand)) {
		return c.invalidCast(node)
	}
	e.ResolvedType = e.CastType
	return nil
}

// checkArrayLit types a literal array by its first element, then
// requires the rest to agree with it; parent_type (if the surrounding
// context supplied one, e.g. a var's declared slice/array type) biases
// every element's own defaulting the same way a binary operand does.
func (c *Checker) checkArrayLit(d *analysis.Driver, node ast.Index, e *ast.Expr) error {
	args := c.Store.ItemsOf(e.Args)
	if len(args) == 0 {
		return c.reportSimple(node, diag.TypeMismatch, "array literal needs at least one element")
	}
	elemHint := ast.Undefined
	if hint, ok := c.hint[node]; ok {
		if ht := c.Store.Type(hint); ht != nil {
			if et, ok := elemTypeOf(ht); ok {
				elemHint = et
			}
		}
	}
	if err := c.requireWithHint(d, args[0], elemHint); err != nil {
		return err
	}
	elemType := c.resolvedTypeIndex(args[0])
	for _, a := range args[1:] {
		if err := c.requireWithHint(d, a, elemType); err != nil {
			return err
		}
		if !c.assignable(elemType, c.resolvedTypeIndex(a), a) {
			return c.mismatch(a, elemType, c.resolvedTypeIndex(a))
		}
	}
	lenExpr := c.Store.AllocExpr(ast.Expr{
		Header:       ast.Header{Span: c.Store.Header(node).Span},
		Kind:         ast.ExprUintLit,
		UintValue:    uint64(len(args)),
		ResolvedType: c.basicType(ast.BasicU64),
	})
	e.ResolvedType = c.Store.AllocType(ast.TypeNode{Kind: ast.TypeStaticArray, Elem: elemType, ArrayLen: lenExpr})
	return nil
}

func (c *Checker) defaultInt(node ast.Index, value int64) ast.Index {
	if hint, ok := c.hint[node]; ok {
		if t := c.Store.Type(hint); t != nil && t.Kind == ast.TypeBasic && t.Basic.IsInteger() && fitsLiteral(t.Basic, value) {
			return hint
		}
	}
	return c.basicType(ast.BasicI32)
}

func (c *Checker) defaultUint(node ast.Index, value uint64) ast.Index {
	if hint, ok := c.hint[node]; ok {
		if t := c.Store.Type(hint); t != nil && t.Kind == ast.TypeBasic && t.Basic.IsInteger() && fitsUnsignedLiteral(t.Basic, value) {
			return hint
		}
	}
	return c.basicType(ast.BasicU32)
}

func (c *Checker) defaultFloat(node ast.Index) ast.Index {
	if hint, ok := c.hint[node]; ok {
		if t := c.Store.Type(hint); t != nil && t.Kind == ast.TypeBasic && t.Basic.IsFloat() {
			return hint
		}
	}
	return c.basicType(ast.BasicF64)
}

func (c *Checker) defaultNull(node ast.Index) ast.Index {
	if hint, ok := c.hint[node]; ok {
		if t := c.Store.Type(hint); t != nil && t.Kind == ast.TypePointer {
			return hint
		}
	}
	return c.basicType(ast.BasicNull)
}

func (c *Checker) noSuchMember(node ast.Index, name intern.ID) error {
	msg := fmt.Sprintf("no such member %q", c.Interp.MustLookup(name))
	return c.reportSimple(node, diag.TypeNoSuchMember, msg)
}

func (c *Checker) invalidCast(node ast.Index) error {
	return c.reportSimple(node, diag.TypeInvalidCast, "this cast is not permitted between these types")
}

func (c *Checker) addrOfRvalue(node ast.Index) error {
	return c.reportSimple(node, diag.TypeAddressOfRvalue, "cannot take the address of a non-lvalue")
}

func (c *Checker) missingArg(node, missingParam ast.Index) error {
	msg := "call is missing a required argument"
	rb := diag.ReportError(c.Reporter, diag.TypeWrongArgCount, c.Store.Header(node).Span, msg)
	if rb != nil {
		if h := c.Store.Header(missingParam); h != nil {
			rb = rb.WithNote(h.Span, "this parameter has no default")
		}
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}
