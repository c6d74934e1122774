// Package irbuild implements Braun, Buchwald et al.'s direct-to-SSA
// construction algorithm (§4.10): read_variable/write_variable insert
// phis lazily, on demand, as a tree walk over already-checked source
// discovers variable reads and writes, rather than via a dominance-
// frontier pre-pass over an already-built non-SSA CFG. Package irgen
// is the only intended caller; Builder itself never looks at the AST
// beyond the type and declaration handles it's handed.
package irbuild

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/ir"
)

// defKey is block_var_def's key: a variable's current definition is
// scoped per basic block, not per function.
type defKey struct {
	Block ir.Index
	Var   ast.Index
}

// Builder drives one [ir.Func] through construction. It holds no
// reference to the checker or the AST store beyond what [Begin] needs
// to mint the synthetic return-value variable; every other variable
// key a caller passes in is simply the DeclVar/DeclParam/DeclField
// handle sema already resolved.
type Builder struct {
	F *ir.Func

	defs    map[defKey]ir.Index
	pending map[ir.Index][]ir.Index // block -> incomplete phis awaiting SealBlock
}

// ReturnKind classifies a function's return type for [Begin]'s three-
// way exit-block setup.
type ReturnKind uint8

const (
	ReturnVoid ReturnKind = iota
	ReturnNoreturn
	ReturnTyped
)

// Begin allocates entry and exit blocks (already done by
// [ir.NewFunc]) and finishes the exit block immediately, per §4.10:
// a `noreturn` function gets `unreachable`, a `void` function gets a
// bare `ret`, and a typed function gets a fresh synthetic return
// variable whose value is read back from the (as yet unsealed, so
// not yet complete) merge at the end of exit and handed to `ret_val`.
// That read is always a phi at this point — exit has no predecessors
// yet — so nothing else needs to patch the `ret_val` operand later:
// every `return expr;` statement package irgen lowers writes into the
// same variable and jumps to exit, and [Builder.Finalize] sealing exit
// is what completes the phi's operands once every such jump exists.
//
// The returned ast.Index is Undefined for a void or noreturn
// function; otherwise it is the key every `return expr;` site must
// write_variable into.
func Begin(store *ast.Store, f *ir.Func, kind ReturnKind, retType ast.Index) (*Builder, ast.Index) {
	b := &Builder{F: f, defs: make(map[defKey]ir.Index), pending: make(map[ir.Index][]ir.Index)}
	exit := f.Exit()
	switch kind {
	case ReturnNoreturn:
		b.AddUnreachable(exit)
		return b, ast.Undefined
	case ReturnVoid:
		b.AddReturn(exit, ir.Undefined)
		return b, ast.Undefined
	default:
		retVar := store.AllocDecl(ast.Decl{Kind: ast.DeclVar, Type: retType})
		val := b.ReadVariable(exit, retVar, retType)
		b.AddReturn(exit, val)
		return b, retVar
	}
}

// Finalize seals the exit block — completing the return-value phi
// [Begin] may have left incomplete — then runs [ir.Func.Compact] to
// sweep out every vreg [Builder.tryRemoveTrivialPhi] marked removed
// during construction. Call it exactly once, after every statement in
// the function body has been lowered.
func (b *Builder) Finalize() {
	b.SealBlock(b.F.Exit())
	b.F.Compact()
}

// Emit appends an ordinary (non-terminator) instruction to block.
// Terminators go through [Builder.AddJump]/[Builder.AddUnaryBranch]/
// [Builder.AddBinBranch]/[Builder.AddReturn]/[Builder.AddUnreachable]
// instead, which also update the block graph.
func (b *Builder) Emit(block ir.Index, header ir.InstHeader) ir.Index {
	if b.F.Block(block).Finished() {
		panic("irbuild: cannot append an instruction after a block's terminator")
	}
	return b.F.AppendInst(block, header)
}

// WriteVariable records var's current value in block.
func (b *Builder) WriteVariable(block ir.Index, v ast.Index, value ir.Index) {
	b.defs[defKey{block, v}] = value
}

// ReadVariable resolves var's current value reaching block, inserting
// phis as needed. typ is the type a freshly-created phi's result
// register needs; it is never consulted when block already has a
// recorded definition.
func (b *Builder) ReadVariable(block ir.Index, v ast.Index, typ ast.Index) ir.Index {
	if val, ok := b.defs[defKey{block, v}]; ok {
		return val
	}
	return b.readVariableRecursive(block, v, typ)
}

func (b *Builder) readVariableRecursive(block ir.Index, v ast.Index, typ ast.Index) ir.Index {
	blk := b.F.Block(block)
	var val ir.Index
	switch {
	case !blk.Sealed():
		result := b.F.NewVReg(typ)
		phi := b.F.NewPhi(block, v, result)
		b.pending[block] = append(b.pending[block], phi)
		val = result
	case len(b.F.Preds(block)) == 1:
		val = b.ReadVariable(b.F.Preds(block)[0], v, typ)
	default:
		result := b.F.NewVReg(typ)
		phi := b.F.NewPhi(block, v, result)
		// Record the phi as the current definition before filling its
		// operands: a predecessor's read_variable may loop back to
		// block (a loop header reading its own induction variable), and
		// that recursive read must see this phi rather than recursing
		// forever.
		b.WriteVariable(block, v, result)
		b.addPhiOperands(block, v, phi, typ)
		val = b.tryRemoveTrivialPhi(phi)
	}
	b.WriteVariable(block, v, val)
	return val
}

func (b *Builder) addPhiOperands(block ir.Index, v ast.Index, phi ir.Index, typ ast.Index) {
	preds := b.F.Preds(block)
	args := make([]ir.Index, len(preds))
	for i, p := range preds {
		args[i] = b.ReadVariable(p, v, typ)
	}
	p := b.F.Phi(phi)
	p.Args = b.F.Items.ReplaceAt(p.Args, p.Args.Len, 0, args)
	for _, a := range args {
		if a.Kind() == ir.KindVReg {
			b.F.AddUser(a, phi)
		}
	}
}

// tryRemoveTrivialPhi implements §4.10's trivial-phi elimination: a
// phi whose operands are all either its own result (a self-loop, e.g.
// an unmodified loop-carried variable) or one single other value
// merges to that value and can be removed; two or more distinct other
// values make it genuinely meaningful and it survives.
func (b *Builder) tryRemoveTrivialPhi(phi ir.Index) ir.Index {
	p := b.F.Phi(phi)
	same := ir.Undefined
	haveSame := false
	for _, arg := range b.F.Items.Slice(p.Args) {
		if arg == same || arg == p.Result {
			continue
		}
		if haveSame {
			return p.Result
		}
		same, haveSame = arg, true
	}

	users := append([]ir.Index(nil), b.F.Users(p.Result)...)
	for _, u := range users {
		b.replaceOperand(u, p.Result, same)
	}
	b.replaceBlockVarDefs(p.Result, same)
	b.F.VReg(p.Result).Removed = true
	b.unlinkPhi(phi)

	for _, u := range users {
		if u.Kind() == ir.KindPhi {
			b.tryRemoveTrivialPhi(u)
		}
	}
	return same
}

func (b *Builder) replaceOperand(user, old, new ir.Index) {
	switch user.Kind() {
	case ir.KindPhi:
		replaceInSpan(b.F.Items, b.F.Phi(user).Args, old, new)
	case ir.KindInst:
		replaceInSpan(b.F.Payload, b.F.Inst(user).Payload, old, new)
	}
	if new.Kind() == ir.KindVReg {
		b.F.AddUser(new, user)
	}
}

func replaceInSpan(pool *arena.Pool[ir.Index], sp arena.Span, old, new ir.Index) {
	for i, v := range pool.Slice(sp) {
		if v == old {
			pool.Set(sp, uint32(i), new)
		}
	}
}

func (b *Builder) replaceBlockVarDefs(old, new ir.Index) {
	for k, v := range b.defs {
		if v == old {
			b.defs[k] = new
		}
	}
}

func (b *Builder) unlinkPhi(phi ir.Index) {
	p := b.F.Phi(phi)
	blk := b.F.Block(p.Block)
	if p.PrevPhi != ir.Undefined {
		b.F.Phi(p.PrevPhi).NextPhi = p.NextPhi
	} else {
		blk.FirstPhi = p.NextPhi
	}
	if p.NextPhi != ir.Undefined {
		b.F.Phi(p.NextPhi).PrevPhi = p.PrevPhi
	}
}

// SealBlock completes every incomplete phi block picked up while
// unsealed (§4.10) and marks it sealed. A no-op on an already-sealed
// block. Unlike the multi-predecessor branch of read_variable, a
// sealed phi is not checked for triviality here — §4.10 only
// specifies that for phis created after sealing, so a phi that
// happens to be trivial survives until something else reads through
// it.
func (b *Builder) SealBlock(block ir.Index) {
	blk := b.F.Block(block)
	if blk.Sealed() {
		return
	}
	for _, phi := range b.pending[block] {
		p := b.F.Phi(phi)
		b.addPhiOperands(block, p.Var, phi, b.F.VReg(p.Result).Type)
	}
	delete(b.pending, block)
	blk.Flags |= ir.BlockSealed
}
