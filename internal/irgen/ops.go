package irgen

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/ir"
	"github.com/sdvcn/vox/internal/irbuild"
)

// basicType mints a fresh TypeNode for kind. Unlike package sema's
// canon cache, irgen never needs to compare two of these for
// structural equality — a synthesized type is consumed immediately by
// the single instruction it was minted for — so a cache would only
// spend arena slots saving a lookup nothing ever performs.
func (g *Generator) basicType(kind ast.BasicKind) ast.Index {
	return g.Store.AllocType(ast.TypeNode{Kind: ast.TypeBasic, Basic: kind})
}

func (g *Generator) pointerTo(elem ast.Index) ast.Index {
	return g.Store.AllocType(ast.TypeNode{Kind: ast.TypePointer, Elem: elem})
}

func (g *Generator) smallConst(kind ast.BasicKind, value uint64) ir.Index {
	return g.Mod.AllocConst(ir.Const{Kind: ir.ConstUint, UintValue: value, Type: g.basicType(kind)})
}

func (g *Generator) boolConst(v bool) ir.Index {
	return g.Mod.AllocConst(ir.Const{Kind: ir.ConstBool, BoolValue: v, Type: g.basicType(ast.BasicBool)})
}

func (g *Generator) emptyStringConst() ir.Index {
	return g.stringConstBytes("")
}

func (g *Generator) emitLoad(b *irbuild.Builder, block, addr ir.Index, elemType ast.Index) ir.Index {
	result := b.F.NewVReg(elemType)
	payload := b.F.Payload.Append(result, addr)
	b.Emit(block, ir.InstHeader{Op: ir.OpLoad, Flags: ir.InstHasResult, Payload: payload})
	return result
}

func (g *Generator) emitStore(b *irbuild.Builder, block, addr, value ir.Index) {
	payload := b.F.Payload.Append(addr, value)
	b.Emit(block, ir.InstHeader{Op: ir.OpStore, Payload: payload})
}

func (g *Generator) emitAlloca(b *irbuild.Builder, block ir.Index, elemType ast.Index) ir.Index {
	result := b.F.NewVReg(g.pointerTo(elemType))
	payload := b.F.Payload.Append(result)
	b.Emit(block, ir.InstHeader{Op: ir.OpAlloca, Flags: ir.InstHasResult, Payload: payload})
	return result
}

func (g *Generator) emitIndexAddr(b *irbuild.Builder, block, base, idx ir.Index, elemType ast.Index) ir.Index {
	result := b.F.NewVReg(g.pointerTo(elemType))
	payload := b.F.Payload.Append(result, base, idx)
	b.Emit(block, ir.InstHeader{Op: ir.OpIndexAddr, Flags: ir.InstHasResult, Payload: payload})
	return result
}

// emitFieldAddr addresses the fieldIndex-th word of base. Slices and
// strings are modeled uniformly as a two-word {length u64, ptr T*}
// aggregate per §6's description of a string literal's lowering —
// field 0 is always the length, field 1 always the data pointer —
// since no sizing/layout pass exists yet to give them a real struct
// shape to address through instead.
func (g *Generator) emitFieldAddr(b *irbuild.Builder, block, base ir.Index, fieldIndex uint64, fieldType ast.Index) ir.Index {
	result := b.F.NewVReg(g.pointerTo(fieldType))
	fc := g.smallConst(ast.BasicU64, fieldIndex)
	payload := b.F.Payload.Append(result, base, fc)
	b.Emit(block, ir.InstHeader{Op: ir.OpFieldAddr, Flags: ir.InstHasResult, Payload: payload})
	return result
}

func (g *Generator) emitBinOp(b *irbuild.Builder, block ir.Index, op ir.Opcode, lhs, rhs ir.Index, resultType ast.Index) ir.Index {
	result := b.F.NewVReg(resultType)
	payload := b.F.Payload.Append(result, lhs, rhs)
	b.Emit(block, ir.InstHeader{Op: op, Flags: ir.InstHasResult, Payload: payload})
	return result
}

func (g *Generator) emitUnaryOp(b *irbuild.Builder, block ir.Index, op ir.Opcode, operand ir.Index, resultType ast.Index) ir.Index {
	result := b.F.NewVReg(resultType)
	payload := b.F.Payload.Append(result, operand)
	b.Emit(block, ir.InstHeader{Op: op, Flags: ir.InstHasResult, Payload: payload})
	return result
}

func (g *Generator) emitCmp(b *irbuild.Builder, block ir.Index, cond ir.Cond, lhs, rhs ir.Index, resultType ast.Index) ir.Index {
	result := b.F.NewVReg(resultType)
	payload := b.F.Payload.Append(result, lhs, rhs)
	b.Emit(block, ir.InstHeader{Op: ir.OpCmp, Cond: cond, Flags: ir.InstHasResult, Payload: payload})
	return result
}

func (g *Generator) emitCast(b *irbuild.Builder, block, operand ir.Index, resultType ast.Index) ir.Index {
	result := b.F.NewVReg(resultType)
	payload := b.F.Payload.Append(result, operand)
	b.Emit(block, ir.InstHeader{Op: ir.OpCast, Flags: ir.InstHasResult, Payload: payload})
	return result
}

// funcAddr materializes the address of a DeclFunc as an operand,
// deduplicated per function declaration so repeated name-uses (a
// recursive call, a function passed to several call sites) share one
// Const entry rather than bloating the module's const arena.
func (g *Generator) funcAddr(declIdx ast.Index) ir.Index {
	if c, ok := g.funcConsts[declIdx]; ok {
		return c
	}
	fn, ok := g.funcs[declIdx]
	if !ok {
		d := g.Store.MustDecl(declIdx)
		if d.Body == ast.Undefined {
			// A body-less @extern(module, ...) declaration never reaches
			// genFunc (irGenStep skips it: there's no tree to walk), so
			// this is the only place that ever materializes its Func.
			fn = g.externFunc(declIdx, d)
		} else {
			// Forward reference to a function GenModule hasn't reached
			// yet: reserve its Func slot now so the Const can point at
			// something stable; genFunc fills the slot's real body in
			// when it gets there.
			fn = g.Mod.AllocFunc(ir.Func{})
		}
		g.funcs[declIdx] = fn
	}
	d := g.Store.MustDecl(declIdx)
	c := g.Mod.AllocConst(ir.Const{Kind: ir.ConstFunc, Func: fn, Type: g.funcSigType(d)})
	g.funcConsts[declIdx] = c
	return c
}

// externFunc materializes the IR Func for a body-less function decl,
// carrying the @extern(module, "libname") attribute's library name
// when present so the call site that addresses it is the external
// reference §8 scenario 1 expects — one ConstFunc naming this Func,
// with no instructions ever appended to it.
func (g *Generator) externFunc(declIdx ast.Index, d *ast.Decl) ir.Index {
	f := ir.NewFunc(d.Name, declIdx, g.funcSigType(d))
	f.NumParams = len(g.Store.ItemsOf(d.Params))
	if info := g.Store.AttrInfo(d.AttrInfo); info != nil {
		if mod, ok := info.ExternModuleName(g.Store); ok {
			f.Extern = true
			f.ExternModule = mod
		}
	}
	return g.Mod.AllocFunc(*f)
}

// externSyscallNumber reports the numeric id carried by callee's own
// @extern(syscall, N) attribute, if callee resolves to such a
// declaration — the condition genCall checks before choosing
// OpSyscall over the ordinary OpCall protocol.
func (g *Generator) externSyscallNumber(callee ast.Index) (int64, bool) {
	target, ok := g.Names.Target(callee)
	if !ok {
		return 0, false
	}
	d := g.Store.Decl(target)
	if d == nil || d.Kind != ast.DeclFunc {
		return 0, false
	}
	info := g.Store.AttrInfo(d.AttrInfo)
	if info == nil {
		return 0, false
	}
	return info.ExternSyscallNumber(g.Store)
}

func (g *Generator) funcSigType(d *ast.Decl) ast.Index {
	params := make([]ast.Index, 0, len(g.Store.ItemsOf(d.Params)))
	variadic := false
	for _, p := range g.Store.ItemsOf(d.Params) {
		pd := g.Store.MustDecl(p)
		if pd.Flags.Has(ast.FlagVariadicParam) {
			variadic = true
			continue
		}
		params = append(params, pd.Type)
	}
	return g.Store.AllocType(ast.TypeNode{
		Kind:       ast.TypeFuncSig,
		Params:     g.Store.AppendItems(params...),
		Variadic:   variadic,
		ReturnType: d.ReturnType,
	})
}

// stringConstBytes interns s's bytes as a {length, ptr} aggregate
// global, deduplicated by content so two identical literals share one
// backing global, and returns its address as a usable pointer operand
// — the const-pointer-to-global variant of §4.11's "gvalue".
func (g *Generator) stringConstBytes(s string) ir.Index {
	if c, ok := g.stringGlobals[s]; ok {
		return c
	}
	u8 := g.basicType(ast.BasicU8)
	data := g.Mod.AllocGlobal(ir.Global{
		Name: g.Interp.GetOrIntern(s),
		Type: g.Store.AllocType(ast.TypeNode{Kind: ast.TypeStaticArray, Elem: u8}),
		Init: ir.Const{Kind: ir.ConstString, String: s, Type: u8},
	})
	agg := g.Mod.AllocConst(ir.Const{
		Kind:  ir.ConstAggregate,
		Type:  g.u8SliceType(),
		Elems: g.Mod.Items.Append(g.smallConst(ast.BasicU64, uint64(len(s))), g.gaddr(data)),
	})
	g.stringGlobals[s] = agg
	return agg
}

func (g *Generator) u8SliceType() ast.Index {
	return g.Store.AllocType(ast.TypeNode{Kind: ast.TypeSlice, Elem: g.basicType(ast.BasicU8)})
}

// gaddr materializes a Global's address as a usable constant operand
// — the IR-level counterpart to ast's FlagIsGlobal lvalues.
func (g *Generator) gaddr(global ir.Index) ir.Index {
	return g.Mod.AllocConst(ir.Const{Kind: ir.ConstGlobalAddr, Global: global, Type: g.pointerTo(ast.Undefined)})
}

// isPassByPtr implements §4.11's isPassByPtr rule. Without a sizing/
// layout pass yet built, the precise "exceeds 8 bytes" threshold can't
// be computed, so this conservatively treats every aggregate (struct,
// fixed-size array) as pass-by-pointer and every scalar as pass-by-
// value — the two cases the threshold would agree on regardless of a
// particular struct's exact size.
func isPassByPtr(t *ast.TypeNode) bool {
	return t != nil && (t.Kind == ast.TypeStruct || t.Kind == ast.TypeStaticArray)
}

func isVoidType(store *ast.Store, idx ast.Index) bool {
	t := store.Type(idx)
	return t == nil || (t.Kind == ast.TypeBasic && t.Basic.IsNoreturnOrVoid())
}

func binOpcode(op ast.BinaryOp) (ir.Opcode, ir.Cond) {
	switch op {
	case ast.BinAdd:
		return ir.OpAdd, ir.CondNone
	case ast.BinSub:
		return ir.OpSub, ir.CondNone
	case ast.BinMul:
		return ir.OpMul, ir.CondNone
	case ast.BinDiv:
		return ir.OpDiv, ir.CondNone
	case ast.BinMod:
		return ir.OpMod, ir.CondNone
	case ast.BinShl:
		return ir.OpShl, ir.CondNone
	case ast.BinShr:
		return ir.OpShr, ir.CondNone
	case ast.BinBitAnd:
		return ir.OpAnd, ir.CondNone
	case ast.BinBitOr:
		return ir.OpOr, ir.CondNone
	case ast.BinBitXor:
		return ir.OpXor, ir.CondNone
	case ast.BinEq:
		return ir.OpCmp, ir.CondEq
	case ast.BinNotEq:
		return ir.OpCmp, ir.CondNe
	case ast.BinLt:
		return ir.OpCmp, ir.CondLt
	case ast.BinLtEq:
		return ir.OpCmp, ir.CondLe
	case ast.BinGt:
		return ir.OpCmp, ir.CondGt
	case ast.BinGtEq:
		return ir.OpCmp, ir.CondGe
	default:
		return ir.OpNop, ir.CondNone
	}
}

func unOpcode(op ast.UnaryOp) ir.Opcode {
	switch op {
	case ast.UnNeg:
		return ir.OpNeg
	case ast.UnNot:
		return ir.OpNot
	case ast.UnBitNot:
		return ir.OpBitNot
	default:
		return ir.OpNop
	}
}

func compoundOpcode(op ast.AssignOp) ir.Opcode {
	switch op {
	case ast.AssignAdd:
		return ir.OpAdd
	case ast.AssignSub:
		return ir.OpSub
	case ast.AssignMul:
		return ir.OpMul
	case ast.AssignDiv:
		return ir.OpDiv
	case ast.AssignMod:
		return ir.OpMod
	case ast.AssignBitAnd:
		return ir.OpAnd
	case ast.AssignBitOr:
		return ir.OpOr
	case ast.AssignBitXor:
		return ir.OpXor
	case ast.AssignShl:
		return ir.OpShl
	case ast.AssignShr:
		return ir.OpShr
	default:
		return ir.OpNop
	}
}
