package irgen

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/ir"
)

// genExpr lowers idx and returns an already-usable rvalue operand
// together with the block control resumes in (control-flow-bearing
// expressions — short-circuit &&/||, a call with argument side
// effects — may move it forward from the block passed in).
func (fg *funcGen) genExpr(block ir.Index, idx ast.Index) (ir.Index, ir.Index) {
	e := fg.g.Store.Expr(idx)
	switch e.Kind {
	case ast.ExprNameUse:
		return fg.genNameUse(block, idx, e)
	case ast.ExprIntLit:
		return fg.g.Mod.AllocConst(ir.Const{Kind: ir.ConstInt, IntValue: e.IntValue, Type: e.ResolvedType}), block
	case ast.ExprUintLit:
		return fg.g.Mod.AllocConst(ir.Const{Kind: ir.ConstUint, UintValue: e.UintValue, Type: e.ResolvedType}), block
	case ast.ExprFloatLit:
		return fg.g.Mod.AllocConst(ir.Const{Kind: ir.ConstFloat, FloatValue: e.FloatValue, Type: e.ResolvedType}), block
	case ast.ExprBoolLit:
		return fg.g.Mod.AllocConst(ir.Const{Kind: ir.ConstBool, BoolValue: e.BoolValue, Type: e.ResolvedType}), block
	case ast.ExprNullLit:
		return fg.g.Mod.AllocConst(ir.Const{Kind: ir.ConstZero, Type: e.ResolvedType}), block
	case ast.ExprStringLit:
		return fg.g.stringConstBytes(fg.g.Interp.MustLookup(e.StringValue)), block
	case ast.ExprThis:
		if fg.thisVar == ast.Undefined {
			// No enclosing struct scope recorded this function as a
			// method of (see enclosingStruct) — `this` has no backing
			// value to read. Produce a null pointer rather than
			// panicking; package sema already rejects this source shape
			// with TypeMismatch before irgen would ever reach it live.
			return fg.g.Mod.AllocConst(ir.Const{Kind: ir.ConstZero, Type: e.ResolvedType}), block
		}
		return fg.b.ReadVariable(block, fg.thisVar, e.ResolvedType), block
	case ast.ExprBinary:
		return fg.genBinary(block, idx, e)
	case ast.ExprUnary:
		return fg.genUnary(block, idx, e)
	case ast.ExprAssign:
		return fg.genAssign(block, idx, e)
	case ast.ExprCall:
		return fg.genCall(block, idx, e)
	case ast.ExprIndex, ast.ExprMember:
		addr, block := fg.genAddr(block, idx)
		return fg.g.emitLoad(fg.b, block, addr, e.ResolvedType), block
	case ast.ExprCast:
		operand, block := fg.genExpr(block, e.Operand)
		return fg.g.emitCast(fg.b, block, operand, e.ResolvedType), block
	case ast.ExprArrayLit:
		return fg.genArrayLit(block, idx, e)
	case ast.ExprFStringLit:
		return fg.genFString(block, e)
	default:
		return ir.Undefined, block
	}
}

// genNameUse looks up the declaration a resolved identifier denotes.
// Local variables and parameters never need an address: they are
// tracked purely through the builder's SSA variable primitives unless
// [addrTakenLocals] flagged them, in which case they already have a
// real stack slot reads/writes must go through instead.
func (fg *funcGen) genNameUse(block ir.Index, idx ast.Index, e *ast.Expr) (ir.Index, ir.Index) {
	target, ok := fg.g.Names.Target(idx)
	if !ok {
		return ir.Undefined, block
	}
	decl := fg.g.Store.MustDecl(target)
	switch decl.Kind {
	case ast.DeclFunc:
		return fg.g.funcAddr(target), block
	case ast.DeclEnumConst, ast.DeclEnumMember:
		// A compile-time constant's value is itself an already-checked
		// expression (an int/uint literal, ordinarily); recurse rather
		// than re-deriving its value through a separate const-folder.
		return fg.genExpr(block, decl.Init)
	default: // DeclVar, DeclParam, DeclField
		if slot, ok := fg.allocas[target]; ok {
			return fg.g.emitLoad(fg.b, block, slot, decl.Type), block
		}
		return fg.b.ReadVariable(block, target, decl.Type), block
	}
}

// genAddr computes idx's address. Only the lvalue-producing shapes —
// a name-use of an address-taken local, `base.field`, `base[i]`, and
// `*ptr` — are valid callers; genExpr never calls this for anything
// else.
func (fg *funcGen) genAddr(block ir.Index, idx ast.Index) (ir.Index, ir.Index) {
	e := fg.g.Store.Expr(idx)
	switch e.Kind {
	case ast.ExprNameUse:
		target, _ := fg.g.Names.Target(idx)
		if slot, ok := fg.allocas[target]; ok {
			return slot, block
		}
		// Address-of a local that escape analysis missed (a decl-before-
		// use ordering gap, or a global): materialize a slot on demand so
		// construction still produces a valid pointer.
		decl := fg.g.Store.MustDecl(target)
		slot := fg.g.emitAlloca(fg.b, block, decl.Type)
		fg.g.emitStore(fg.b, block, slot, fg.b.ReadVariable(block, target, decl.Type))
		fg.allocas[target] = slot
		return slot, block
	case ast.ExprUnary: // *ptr
		return fg.genExpr(block, e.Operand)
	case ast.ExprIndex:
		base, block := fg.genExpr(block, e.Base)
		sub, block := fg.genExpr(block, e.Subscript)
		return fg.g.emitIndexAddr(fg.b, block, base, sub, e.ResolvedType), block
	case ast.ExprMember:
		return fg.genMemberAddr(block, e)
	default:
		v, block := fg.genExpr(block, idx)
		return v, block
	}
}

// genMemberAddr addresses `base.field`. When base's static type is
// already a pointer (checkMember's auto-deref case), base's own
// rvalue IS the address member access starts from; no further load is
// needed.
func (fg *funcGen) genMemberAddr(block ir.Index, e *ast.Expr) (ir.Index, ir.Index) {
	base, block := fg.genExpr(block, e.Base)
	baseType := fg.g.Store.Type(fg.exprType(e.Base))
	effective := baseType
	if baseType != nil && baseType.Kind == ast.TypePointer {
		effective = fg.g.Store.Type(baseType.Elem)
	}
	switch {
	case effective != nil && effective.Kind == ast.TypeStruct:
		field := fg.findField(effective.Decl, e.NameID)
		return fg.g.emitFieldAddr(fg.b, block, base, uint64(field.index), field.decl.Type), block
	case e.NameID == fg.g.lengthID:
		return fg.g.emitFieldAddr(fg.b, block, base, 0, fg.g.basicType(ast.BasicU64)), block
	case e.NameID == fg.g.ptrID:
		elem, _ := elemTypeOf(effective)
		return fg.g.emitFieldAddr(fg.b, block, base, 1, fg.g.pointerTo(elem)), block
	default:
		return ir.Undefined, block
	}
}

// exprType reads back an already-checked expression's resolved type
// without re-running the checker.
func (fg *funcGen) exprType(idx ast.Index) ast.Index {
	return fg.g.Store.Expr(idx).ResolvedType
}

type fieldRef struct {
	decl  *ast.Decl
	index int
}

func (fg *funcGen) findField(structDecl ast.Index, name intern.ID) fieldRef {
	for i, m := range fg.g.Store.ItemsOf(fg.g.Store.MustDecl(structDecl).Members) {
		fd := fg.g.Store.Decl(m)
		if fd != nil && fd.Kind == ast.DeclField && fd.Name == name {
			return fieldRef{decl: fd, index: i}
		}
	}
	return fieldRef{}
}

// elemTypeOf mirrors package sema's own helper of the same name:
// pointer, slice and static-array types all project an element type
// the same way for indexing/`.ptr` purposes.
func elemTypeOf(t *ast.TypeNode) (ast.Index, bool) {
	if t == nil {
		return ast.Undefined, false
	}
	switch t.Kind {
	case ast.TypePointer, ast.TypeSlice, ast.TypeStaticArray:
		return t.Elem, true
	default:
		return ast.Undefined, false
	}
}

func (fg *funcGen) genBinary(block ir.Index, idx ast.Index, e *ast.Expr) (ir.Index, ir.Index) {
	if e.BinOp == ast.BinLogicalAnd || e.BinOp == ast.BinLogicalOr {
		return fg.genShortCircuit(block, idx, e)
	}
	lhs, block := fg.genExpr(block, e.LHS)
	rhs, block := fg.genExpr(block, e.RHS)
	op, cond := binOpcode(e.BinOp)
	if cond != ir.CondNone {
		return fg.g.emitCmp(fg.b, block, cond, lhs, rhs, e.ResolvedType), block
	}
	return fg.g.emitBinOp(fg.b, block, op, lhs, rhs, e.ResolvedType), block
}

// genShortCircuit lowers `&&`/`||` into real control flow, merging
// the result through the very ast.Index of the binary expression node
// itself, used as the SSA variable key — any ast.Index the builder
// has never seen before works as a block_var_def key, and a binary
// expression node's own handle is a convenient one nothing else will
// ever also key on.
func (fg *funcGen) genShortCircuit(block ir.Index, idx ast.Index, e *ast.Expr) (ir.Index, ir.Index) {
	lhs, block := fg.genExpr(block, e.LHS)
	onTrue, onFalse := fg.b.AddUnaryBranch(block, lhs)

	var rhsStart, shortBlock ir.Index
	var shortVal ir.Index
	if e.BinOp == ast.BinLogicalAnd {
		rhsStart, shortBlock = onTrue.Block(), onFalse.Block()
		shortVal = fg.g.boolConst(false)
	} else {
		rhsStart, shortBlock = onFalse.Block(), onTrue.Block()
		shortVal = fg.g.boolConst(true)
	}
	fg.b.WriteVariable(shortBlock, idx, shortVal)

	rhsVal, rhsEnd := fg.genExpr(rhsStart, e.RHS)
	fg.b.WriteVariable(rhsEnd, idx, rhsVal)

	join := fg.b.F.NewBlock()
	fg.b.AddJump(shortBlock, join)
	fg.b.AddJump(rhsEnd, join)
	fg.b.SealBlock(join)
	return fg.b.ReadVariable(join, idx, e.ResolvedType), join
}

func (fg *funcGen) genUnary(block ir.Index, idx ast.Index, e *ast.Expr) (ir.Index, ir.Index) {
	switch e.UnOp {
	case ast.UnAddrOf:
		return fg.genAddr(block, e.Operand)
	case ast.UnDeref:
		ptr, block := fg.genExpr(block, e.Operand)
		return fg.g.emitLoad(fg.b, block, ptr, e.ResolvedType), block
	default:
		v, block := fg.genExpr(block, e.Operand)
		return fg.g.emitUnaryOp(fg.b, block, unOpcode(e.UnOp), v, e.ResolvedType), block
	}
}

func (fg *funcGen) genAssign(block ir.Index, idx ast.Index, e *ast.Expr) (ir.Index, ir.Index) {
	rhs, block := fg.genExpr(block, e.RHS)
	if e.AssignOp != ast.AssignPlain {
		cur, nb := fg.genExpr(block, e.LHS)
		block = nb
		rhs = fg.g.emitBinOp(fg.b, block, compoundOpcode(e.AssignOp), cur, rhs, e.ResolvedType)
	}

	lhsExpr := fg.g.Store.Expr(e.LHS)
	if lhsExpr.Kind == ast.ExprNameUse {
		target, _ := fg.g.Names.Target(e.LHS)
		if slot, ok := fg.allocas[target]; ok {
			fg.g.emitStore(fg.b, block, slot, rhs)
		} else {
			fg.b.WriteVariable(block, target, rhs)
		}
		return rhs, block
	}

	addr, block := fg.genAddr(block, e.LHS)
	fg.g.emitStore(fg.b, block, addr, rhs)
	return rhs, block
}

func (fg *funcGen) genCall(block ir.Index, idx ast.Index, e *ast.Expr) (ir.Index, ir.Index) {
	if n, ok := fg.g.externSyscallNumber(e.Callee); ok {
		return fg.genSyscall(block, e, n)
	}

	calleeExpr := fg.g.Store.Expr(e.Callee)
	var callee ir.Index
	if calleeExpr.Kind == ast.ExprNameUse {
		if target, ok := fg.g.Names.Target(e.Callee); ok {
			if d := fg.g.Store.Decl(target); d != nil && d.Kind == ast.DeclFunc {
				callee = fg.g.funcAddr(target)
			}
		}
	}
	if callee == ir.Undefined {
		callee, block = fg.genExpr(block, e.Callee)
	}

	args := fg.g.Store.ItemsOf(e.Args)
	hasResult := !isVoidType(fg.g.Store, e.ResolvedType)

	operands := make([]ir.Index, 0, len(args)+2)
	var result ir.Index
	if hasResult {
		result = fg.b.F.NewVReg(e.ResolvedType)
		operands = append(operands, result)
	}
	operands = append(operands, callee)
	for _, a := range args {
		argExpr := fg.g.Store.Expr(a)
		var v ir.Index
		if isPassByPtr(fg.g.Store.Type(argExpr.ResolvedType)) {
			v, block = fg.genAddr(block, a)
		} else {
			v, block = fg.genExpr(block, a)
		}
		operands = append(operands, v)
	}

	flags := ir.InstFlags(0)
	if hasResult {
		flags |= ir.InstHasResult
	}
	payload := fg.b.F.Payload.Append(operands...)
	fg.b.Emit(block, ir.InstHeader{Op: ir.OpCall, Flags: flags, NumVariadic: uint16(len(args)), Payload: payload})
	return result, block
}

// genSyscall lowers a call to an @extern(syscall, N) declaration to a
// direct OpSyscall instruction: no callee address, just the immediate
// syscall number ahead of the call's own arguments. It never touches
// funcAddr, so no ConstFunc or Func entry is ever created for the
// declaration being called — §8 scenario 1's "no external module
// reference" for this form.
func (fg *funcGen) genSyscall(block ir.Index, e *ast.Expr, number int64) (ir.Index, ir.Index) {
	immediate := fg.g.Mod.AllocConst(ir.Const{Kind: ir.ConstInt, IntValue: number, Type: fg.g.basicType(ast.BasicI64)})

	args := fg.g.Store.ItemsOf(e.Args)
	hasResult := !isVoidType(fg.g.Store, e.ResolvedType)

	operands := make([]ir.Index, 0, len(args)+2)
	var result ir.Index
	if hasResult {
		result = fg.b.F.NewVReg(e.ResolvedType)
		operands = append(operands, result)
	}
	operands = append(operands, immediate)
	for _, a := range args {
		argExpr := fg.g.Store.Expr(a)
		var v ir.Index
		if isPassByPtr(fg.g.Store.Type(argExpr.ResolvedType)) {
			v, block = fg.genAddr(block, a)
		} else {
			v, block = fg.genExpr(block, a)
		}
		operands = append(operands, v)
	}

	flags := ir.InstFlags(0)
	if hasResult {
		flags |= ir.InstHasResult
	}
	payload := fg.b.F.Payload.Append(operands...)
	fg.b.Emit(block, ir.InstHeader{Op: ir.OpSyscall, Flags: flags, NumVariadic: uint16(len(args)), Payload: payload})
	return result, block
}

// genArrayLit materializes an array literal into a freshly allocated
// stack slot and returns its address — an array value decays to a
// pointer at every point of use in this IR, matching isPassByPtr's
// by-pointer treatment of aggregates at call boundaries.
func (fg *funcGen) genArrayLit(block ir.Index, idx ast.Index, e *ast.Expr) (ir.Index, ir.Index) {
	arrType := fg.g.Store.Type(e.ResolvedType)
	elemType := arrType.Elem
	slot := fg.g.emitAlloca(fg.b, block, e.ResolvedType)
	for i, a := range fg.g.Store.ItemsOf(e.Args) {
		v, nb := fg.genExpr(block, a)
		block = nb
		addr := fg.g.emitIndexAddr(fg.b, block, slot, fg.g.smallConst(ast.BasicU64, uint64(i)), elemType)
		fg.g.emitStore(fg.b, block, addr, v)
	}
	return slot, block
}

// genFString evaluates each interpolated part for its side effects
// and type-checked validity, then yields an empty-string placeholder:
// turning the parts into actual formatted text needs a runtime
// formatting routine this repository's IR has nowhere to call into
// yet (no runtime/stdlib package exists here), so the textual result
// itself is out of scope rather than silently wrong.
func (fg *funcGen) genFString(block ir.Index, e *ast.Expr) (ir.Index, ir.Index) {
	for _, p := range fg.g.Store.ItemsOf(e.Parts) {
		_, block = fg.genExpr(block, p)
	}
	return fg.g.emptyStringConst(), block
}
