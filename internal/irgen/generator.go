// Package irgen implements IR generation (§4.11): a tree walk over
// the type-checked AST that emits SSA-form IR through package
// irbuild's Braun/Buchwald construction API. Every expression
// lowering in here returns an rvalue operand already usable as an
// instruction argument; the handful of expression shapes that need an
// address instead (an assignment target, `&expr`, the implicit load
// behind a member or index access) go through a dedicated genAddr
// path. Control-flow statements thread basic blocks and
// [irbuild.Label] joins exactly as package irbuild's own doc comments
// describe, rather than building a non-SSA CFG first and converting it
// afterward.
package irgen

import (
	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/ir"
	"github.com/sdvcn/vox/internal/irbuild"
	"github.com/sdvcn/vox/internal/trace"
)

// Registrar is the subset of *symbols.Registrar irgen needs: which
// declaration a resolved name-use denotes. Spelled out as a local
// interface, the same way package sema's own Registrar is, so a test
// can fake name resolution without constructing the real pass.
type Registrar interface {
	Target(node ast.Index) (ast.Index, bool)
	ParentScope(node ast.Index) ast.ScopeIndex
}

// Generator drives one module's worth of checked declarations through
// IR generation, owning the module-level dedup tables (function
// addresses, string-literal globals) that must stay consistent across
// every function it lowers.
type Generator struct {
	Store  *ast.Store
	Interp *intern.Table
	Names  Registrar
	Mod    *ir.Module

	// Tracer receives a span around every function's finalize_ir step
	// (irbuild.Builder.Finalize). Nil costs nothing.
	Tracer trace.Tracer

	lengthID, ptrID intern.ID

	funcs         map[ast.Index]ir.Index // DeclFunc -> Func slot
	funcConsts    map[ast.Index]ir.Index // DeclFunc -> materialized ConstFunc
	stringGlobals map[string]ir.Index     // literal text -> materialized {length,ptr} aggregate
}

func NewGenerator(store *ast.Store, interp *intern.Table, names Registrar) *Generator {
	return &Generator{
		Store:         store,
		Interp:        interp,
		Names:         names,
		Mod:           ir.NewModule(),
		lengthID:      interp.GetOrIntern("length"),
		ptrID:         interp.GetOrIntern("ptr"),
		funcs:         make(map[ast.Index]ir.Index),
		funcConsts:    make(map[ast.Index]ir.Index),
		stringGlobals: make(map[string]ir.Index),
	}
}

// GenModule lowers every DeclFunc with a body among items, outside the
// lazy analysis driver — useful for tests that exercise irgen in
// isolation against an already-checked Store. GenRoot is the entry
// point the real pipeline uses instead, since it drives PropType (and
// everything before it) for each item on demand the same way every
// other pass does.
func (g *Generator) GenModule(items []ast.Index) {
	for _, item := range items {
		if item.Kind() != ast.KindDecl {
			continue
		}
		d := g.Store.MustDecl(item)
		if d.Kind == ast.DeclFunc && d.Body != ast.Undefined {
			g.genFunc(item, d)
		}
	}
}

// Wire registers ir_gen with reg, the same way (*symbols.Registrar)
// and (*sema.Checker) register their own properties.
func (g *Generator) Wire(reg *analysis.Registry) {
	reg.Register(ast.PropIRGen, g.irGenStep)
}

// GenRoot drives every item of a top-level item list through ir_gen —
// the entry point analogous to (*sema.Checker).CheckRoot, needed
// because nothing else would otherwise ever request PropIRGen on a
// function nothing calls.
func (g *Generator) GenRoot(d *analysis.Driver, items arena.Span) error {
	for _, item := range g.Store.ItemsOf(items) {
		if item.Kind() != ast.KindDecl {
			continue
		}
		if err := d.Require(item, ast.PropIRGen); err != nil {
			return err
		}
	}
	return nil
}

// irGenStep is the PropIRGen step: only a DeclFunc with a real body
// has anything for ir_gen to produce. Everything else (a struct, an
// enum, an extern/body-less function declaration, any non-Decl node
// the driver's RequireState walk happens to pass through) is a no-op
// — its static presence was already fully accounted for by type
// checking, and no instruction stream needs to exist for it.
func (g *Generator) irGenStep(d *analysis.Driver, node ast.Index) error {
	if node.Kind() != ast.KindDecl {
		return nil
	}
	decl := g.Store.MustDecl(node)
	if decl.Kind != ast.DeclFunc || decl.Body == ast.Undefined {
		return nil
	}
	g.genFunc(node, decl)
	return nil
}

// funcGen holds the per-function state a single [Generator.genFunc]
// call threads through statement and expression lowering: the
// builder driving this one ir.Func, the synthetic return-value
// variable [irbuild.Begin] minted, and the address-taken-local/alloca
// bookkeeping that keeps a mutable local whose address escapes off
// the pure-SSA read_variable/write_variable path.
type funcGen struct {
	g       *Generator
	b       *irbuild.Builder
	retVar  ast.Index
	retType ast.Index

	thisVar ast.Index // set only when genFunc is lowering a struct-scoped function

	addrTaken map[ast.Index]bool
	allocas   map[ast.Index]ir.Index // DeclVar/DeclParam -> its alloca'd slot, once materialized
}

func (g *Generator) genFunc(declIdx ast.Index, decl *ast.Decl) ir.Index {
	kind := irbuild.ReturnTyped
	switch rt := g.Store.Type(decl.ReturnType); {
	case decl.ReturnType == ast.Undefined:
		kind = irbuild.ReturnVoid
	case rt != nil && rt.Kind == ast.TypeBasic && rt.Basic == ast.BasicNoreturn:
		kind = irbuild.ReturnNoreturn
	case rt != nil && rt.Kind == ast.TypeBasic && rt.Basic == ast.BasicVoid:
		kind = irbuild.ReturnVoid
	}

	f := ir.NewFunc(decl.Name, declIdx, g.funcSigType(decl))
	f.NumParams = len(g.Store.ItemsOf(decl.Params))

	b, retVar := irbuild.Begin(g.Store, f, kind, decl.ReturnType)
	fg := &funcGen{
		g:         g,
		b:         b,
		retVar:    retVar,
		retType:   decl.ReturnType,
		addrTaken: addrTakenLocals(g.Store, g.Names, decl.Body),
		allocas:   make(map[ast.Index]ir.Index),
	}

	if structDecl, ok := fg.enclosingStruct(declIdx); ok {
		structType := g.Store.AllocType(ast.TypeNode{Kind: ast.TypeStruct, Decl: structDecl})
		fg.thisVar = g.Store.AllocDecl(ast.Decl{Kind: ast.DeclParam, Type: g.pointerTo(structType)})
		b.WriteVariable(f.Entry(), fg.thisVar, f.NewVReg(g.pointerTo(structType)))
	}

	entry := f.Entry()
	for _, p := range g.Store.ItemsOf(decl.Params) {
		pd := g.Store.MustDecl(p)
		reg := f.NewVReg(pd.Type)
		if fg.addrTaken[p] {
			slot := g.emitAlloca(b, entry, pd.Type)
			g.emitStore(b, entry, slot, reg)
			fg.allocas[p] = slot
		} else {
			b.WriteVariable(entry, p, reg)
		}
	}

	end := fg.genStmt(entry, decl.Body, nil, ir.Undefined)
	if !f.Block(end).Finished() {
		b.AddJump(end, f.Exit())
	}
	span := trace.Begin(g.Tracer, trace.ScopePass, "finalize_ir", 0)
	b.Finalize()
	span.End("")

	// A prior funcAddr call (an earlier function calling this one before
	// GenModule reached it) may already have reserved this function's
	// Func slot; fill it in in place rather than allocating a second one.
	if slot, ok := g.funcs[declIdx]; ok {
		*g.Mod.Func(slot) = *f
		return slot
	}
	slot := g.Mod.AllocFunc(*f)
	g.funcs[declIdx] = slot
	return slot
}

// enclosingStruct reports the DeclStruct declIdx is lexically nested
// in, if any — the same lookup checkThis (package sema) performs to
// type `this`, needed again here because irgen, unlike sema, must
// also decide the *value* `this` carries: this grammar's structs hold
// only DeclField members (see ast.Decl.Members), so there is no
// established call-site ABI that passes a receiver pointer anywhere.
// irgen resolves that gap by giving every struct-scoped function an
// implicit leading receiver parameter of its own, bound once here and
// read back through thisVar wherever `this` appears in the body.
func (fg *funcGen) enclosingStruct(declIdx ast.Index) (ast.Index, bool) {
	scope := fg.g.Names.ParentScope(declIdx)
	for scope != 0 {
		s := fg.g.Store.Scope(scope)
		if s.Owner != ast.Undefined {
			if d := fg.g.Store.Decl(s.Owner); d != nil && d.Kind == ast.DeclStruct {
				return s.Owner, true
			}
		}
		scope = s.Parent
	}
	return ast.Undefined, false
}

func (fg *funcGen) deadBlock() ir.Index {
	d := fg.b.F.NewBlock()
	fg.b.SealBlock(d)
	fg.b.AddUnreachable(d)
	return d
}

// genStmt lowers idx starting in block and returns the block control
// resumes in afterward. If idx unconditionally diverges (a return,
// break, continue, or a fully-diverging if/else), the returned block
// is already [ir.Block.Finished] — callers check that before trying
// to append anything else to it.
func (fg *funcGen) genStmt(block ir.Index, idx ast.Index, brk *irbuild.Label, cont ir.Index) ir.Index {
	if idx == ast.Undefined {
		return block
	}
	s := fg.g.Store.Stmt(idx)
	switch s.Kind {
	case ast.StmtBlock:
		for _, item := range fg.g.Store.ItemsOf(s.Items) {
			if fg.b.F.Block(block).Finished() {
				break
			}
			switch item.Kind() {
			case ast.KindDecl:
				block = fg.genLocalDecl(block, item)
			default:
				block = fg.genStmt(block, item, brk, cont)
			}
		}
		return block
	case ast.StmtExpr:
		_, block = fg.genExpr(block, s.Expr)
		return block
	case ast.StmtIf:
		return fg.genIf(block, s, brk, cont)
	case ast.StmtWhile:
		return fg.genWhile(block, s)
	case ast.StmtForIn:
		return fg.genForIn(block, s)
	case ast.StmtBreak:
		if brk != nil {
			fg.b.AddJumpToLabel(block, brk)
		}
		return fg.deadBlock()
	case ast.StmtContinue:
		if cont != ir.Undefined {
			fg.b.AddJump(block, cont)
		}
		return fg.deadBlock()
	case ast.StmtReturn:
		if s.Expr != ast.Undefined {
			val, nb := fg.genExpr(block, s.Expr)
			block = nb
			fg.b.WriteVariable(block, fg.retVar, val)
		}
		fg.b.AddJump(block, fg.b.F.Exit())
		return fg.deadBlock()
	default:
		return block
	}
}

// genLocalDecl lowers a `var x = init;` item embedded directly in a
// block's item list (§4.6's local declarations never become a
// dedicated Stmt kind).
func (fg *funcGen) genLocalDecl(block ir.Index, declIdx ast.Index) ir.Index {
	d := fg.g.Store.MustDecl(declIdx)
	if d.Kind != ast.DeclVar {
		return block
	}
	var val ir.Index
	if d.Init != ast.Undefined {
		val, block = fg.genExpr(block, d.Init)
	} else {
		val = fg.g.Mod.AllocConst(ir.Const{Kind: ir.ConstZero, Type: d.Type})
	}
	if fg.addrTaken[declIdx] {
		slot := fg.g.emitAlloca(fg.b, block, d.Type)
		fg.g.emitStore(fg.b, block, slot, val)
		fg.allocas[declIdx] = slot
	} else {
		fg.b.WriteVariable(block, declIdx, val)
	}
	return block
}

func (fg *funcGen) genIf(block ir.Index, s *ast.Stmt, brk *irbuild.Label, cont ir.Index) ir.Index {
	cond, block := fg.genExpr(block, s.Expr)
	onTrue, onFalse := fg.b.AddUnaryBranch(block, cond)

	thenEnd := fg.genStmt(onTrue.Block(), s.Then, brk, cont)
	if s.Else == ast.Undefined {
		if !fg.b.F.Block(thenEnd).Finished() {
			fg.b.AddJump(thenEnd, onFalse.Block())
		}
		return onFalse.Block()
	}

	elseEnd := fg.genStmt(onFalse.Block(), s.Else, brk, cont)
	thenDone := fg.b.F.Block(thenEnd).Finished()
	elseDone := fg.b.F.Block(elseEnd).Finished()
	if thenDone && elseDone {
		return fg.deadBlock()
	}

	join := fg.b.F.NewBlock()
	if !thenDone {
		fg.b.AddJump(thenEnd, join)
	}
	if !elseDone {
		fg.b.AddJump(elseEnd, join)
	}
	fg.b.SealBlock(join)
	return join
}

func (fg *funcGen) genWhile(block ir.Index, s *ast.Stmt) ir.Index {
	header := fg.b.F.NewBlock()
	fg.b.AddJump(block, header)

	cond, condEnd := fg.genExpr(header, s.Expr)
	onTrue, onFalse := fg.b.AddUnaryBranch(condEnd, cond)

	breakLabel := irbuild.NewLabel()
	fg.b.AddJumpToLabel(onFalse.Block(), breakLabel)

	bodyEnd := fg.genStmt(onTrue.Block(), s.Body, breakLabel, header)
	if !fg.b.F.Block(bodyEnd).Finished() {
		fg.b.AddJump(bodyEnd, header)
	}
	fg.b.SealBlock(header)
	fg.b.SealBlock(breakLabel.Block())
	return breakLabel.Block()
}

// genForIn lowers `for v in iterable { body }` as counter-based
// iteration over iterable's length/indexing (the only protocol this
// language's slices, static arrays and pointers support, per
// checkIndex/checkMember in package sema) — there is no separate
// iterator-object kind to special-case.
func (fg *funcGen) genForIn(block ir.Index, s *ast.Stmt) ir.Index {
	iterable, block := fg.genExpr(block, s.Iterable)
	loopVarDecl := fg.g.Store.MustDecl(s.LoopVar)
	elemType := loopVarDecl.Type
	u64 := fg.g.basicType(ast.BasicU64)

	counterVar := fg.g.Store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Type: u64})
	fg.b.WriteVariable(block, counterVar, fg.g.smallConst(ast.BasicU64, 0))

	header := fg.b.F.NewBlock()
	fg.b.AddJump(block, header)

	length := fg.g.emitFieldAddr(fg.b, header, iterable, 0, u64)
	length = fg.g.emitLoad(fg.b, header, length, u64)
	idx := fg.b.ReadVariable(header, counterVar, u64)
	onTrue, onFalse := fg.b.AddBinBranch(header, ir.CondLt, idx, length)

	breakLabel := irbuild.NewLabel()
	fg.b.AddJumpToLabel(onFalse.Block(), breakLabel)

	bodyStart := onTrue.Block()
	ptr := fg.g.emitFieldAddr(fg.b, bodyStart, iterable, 1, fg.g.pointerTo(elemType))
	ptr = fg.g.emitLoad(fg.b, bodyStart, ptr, fg.g.pointerTo(elemType))
	elemAddr := fg.g.emitIndexAddr(fg.b, bodyStart, ptr, idx, elemType)
	elemVal := fg.g.emitLoad(fg.b, bodyStart, elemAddr, elemType)
	if fg.addrTaken[s.LoopVar] {
		slot := fg.g.emitAlloca(fg.b, bodyStart, elemType)
		fg.g.emitStore(fg.b, bodyStart, slot, elemVal)
		fg.allocas[s.LoopVar] = slot
	} else {
		fg.b.WriteVariable(bodyStart, s.LoopVar, elemVal)
	}

	bodyEnd := fg.genStmt(bodyStart, s.Body, breakLabel, header)
	if !fg.b.F.Block(bodyEnd).Finished() {
		cur := fg.b.ReadVariable(bodyEnd, counterVar, u64)
		next := fg.g.emitBinOp(fg.b, bodyEnd, ir.OpAdd, cur, fg.g.smallConst(ast.BasicU64, 1), u64)
		fg.b.WriteVariable(bodyEnd, counterVar, next)
		fg.b.AddJump(bodyEnd, header)
	}
	fg.b.SealBlock(header)
	fg.b.SealBlock(breakLabel.Block())
	return breakLabel.Block()
}
