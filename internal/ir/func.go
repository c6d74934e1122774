package ir

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/intern"
)

// Func owns the eight parallel arenas §3 assigns a function: headers,
// payload slots, next/prev instruction links, phis, virtual
// registers, basic blocks, and the shared small-array pool backing
// every Span field above (block successor/predecessor lists, phi
// argument lists, vreg user sets). Payload 1 of Blocks is always the
// entry block, payload 2 always the exit block (package-level constants
// [EntryBlockPayload]/[ExitBlockPayload] name them).
type Func struct {
	Name intern.ID
	Decl ast.Index // the DeclFunc this IR was generated from
	Sig  ast.Index // its TypeFuncSig

	ISA InstSet

	Insts   *arena.Arena[InstHeader]
	Payload *arena.Pool[Index]
	Next    *arena.Arena[Index] // parallel to Insts: next instruction in block order
	Prev    *arena.Arena[Index] // parallel to Insts: previous instruction in block order
	Phis    *arena.Arena[Phi]
	VRegs   *arena.Arena[VReg]
	Blocks  *arena.Arena[Block]
	Items   *arena.Pool[Index] // succs, preds, phi args, vreg users

	NumParams int

	// Extern marks a Func backed by an `@extern(module, "libname")`
	// declaration rather than a lowered body: its blocks are the empty
	// entry/exit pair NewFunc always allocates, and every call through
	// [Module.Const] naming it (§8 scenario 1's "external reference") is
	// the only instruction that ever mentions it.
	Extern       bool
	ExternModule intern.ID
}

// NewFunc allocates an empty Func already holding its entry and exit
// blocks at payloads 1 and 2 (§3). The entry block starts sealed
// (it has no predecessors to wait on); the exit block starts
// unsealed, since every `return` site is a predecessor irbuild
// discovers one at a time.
func NewFunc(name intern.ID, decl, sig ast.Index) *Func {
	f := &Func{
		Name:    name,
		Decl:    decl,
		Sig:     sig,
		Insts:   arena.New[InstHeader](64),
		Payload: arena.NewPool[Index](128),
		Next:    arena.New[Index](64),
		Prev:    arena.New[Index](64),
		Phis:    arena.New[Phi](8),
		VRegs:   arena.New[VReg](32),
		Blocks:  arena.New[Block](8),
		Items:   arena.NewPool[Index](64),
	}
	entry := f.Blocks.Alloc(Block{Flags: BlockSealed})
	exit := f.Blocks.Alloc(Block{})
	if entry != EntryBlockPayload || exit != ExitBlockPayload {
		panic("ir: entry/exit block payloads must be 1 and 2")
	}
	return f
}

func (f *Func) Entry() Index { return MakeIndex(KindBlock, EntryBlockPayload) }
func (f *Func) Exit() Index  { return MakeIndex(KindBlock, ExitBlockPayload) }

func (f *Func) Block(idx Index) *Block {
	if idx.Kind() != KindBlock {
		return nil
	}
	return f.Blocks.Get(idx.Payload())
}

func (f *Func) Inst(idx Index) *InstHeader {
	if idx.Kind() != KindInst {
		return nil
	}
	return f.Insts.Get(idx.Payload())
}

func (f *Func) Phi(idx Index) *Phi {
	if idx.Kind() != KindPhi {
		return nil
	}
	return f.Phis.Get(idx.Payload())
}

func (f *Func) VReg(idx Index) *VReg {
	if idx.Kind() != KindVReg {
		return nil
	}
	return f.VRegs.Get(idx.Payload())
}

// NewBlock allocates a fresh, unsealed, unfinished block with no
// predecessors yet.
func (f *Func) NewBlock() Index {
	return MakeIndex(KindBlock, f.Blocks.Alloc(Block{}))
}

// NewVReg allocates a virtual register with no definition yet;
// irbuild fills in Def once the defining instruction or phi exists
// (a register's own Index must be known before the instruction that
// defines it can be written into Payload).
func (f *Func) NewVReg(typ ast.Index) Index {
	return MakeIndex(KindVReg, f.VRegs.Alloc(VReg{Type: typ}))
}

// NewPhi allocates a phi in block for ssaVar, linking it onto the
// block's phi list (prepended, matching the teacher's own prepend-new-
// front convention for intrusive lists elsewhere in the pack).
func (f *Func) NewPhi(block Index, ssaVar ast.Index, result Index) Index {
	b := f.Block(block)
	idx := MakeIndex(KindPhi, f.Phis.Alloc(Phi{Block: block, Result: result, Var: ssaVar, NextPhi: b.FirstPhi}))
	if b.FirstPhi != Undefined {
		f.Phi(b.FirstPhi).PrevPhi = idx
	}
	b.FirstPhi = idx
	return idx
}

// AppendInst allocates header as a new instruction and appends it to
// the tail of block's instruction list, maintaining the Next/Prev
// links and the block's First/LastInst handles. It never checks
// Block.Finished; callers (package irbuild) own the "exactly one
// terminator, at the end" invariant.
func (f *Func) AppendInst(block Index, header InstHeader) Index {
	slot := f.Insts.Alloc(header)
	f.Next.Alloc(Undefined)
	f.Prev.Alloc(Undefined)
	idx := MakeIndex(KindInst, slot)

	b := f.Block(block)
	if b.LastInst == Undefined {
		b.FirstInst = idx
	} else {
		*f.Next.Get(b.LastInst.Payload()) = idx
		*f.Prev.Get(slot) = b.LastInst
	}
	b.LastInst = idx
	if header.Op.IsTerminator() {
		b.Flags |= BlockFinished
	}
	return idx
}

// Instructions returns block's instructions in layout order.
func (f *Func) Instructions(block Index) []Index {
	b := f.Block(block)
	var out []Index
	for i := b.FirstInst; i != Undefined; i = *f.Next.Get(i.Payload()) {
		out = append(out, i)
	}
	return out
}

// BlockPhis returns block's phis, in the order [Func.NewPhi] linked them.
func (f *Func) BlockPhis(block Index) []Index {
	b := f.Block(block)
	var out []Index
	for p := b.FirstPhi; p != Undefined; p = f.Phi(p).NextPhi {
		out = append(out, p)
	}
	return out
}

// AddBlockTarget records the directed edge from→to, appending to from's
// successor list and to's predecessor list. It panics if to is already
// sealed: §3's "in a sealed basic block, no new predecessors may be
// added."
func (f *Func) AddBlockTarget(from, to Index) {
	toBlock := f.Block(to)
	if toBlock.Sealed() {
		panic("ir: cannot add a predecessor to an already-sealed block")
	}
	fromBlock := f.Block(from)
	fromBlock.Succs = f.Items.ReplaceAt(fromBlock.Succs, fromBlock.Succs.Len, 0, []Index{to})
	toBlock.Preds = f.Items.ReplaceAt(toBlock.Preds, toBlock.Preds.Len, 0, []Index{from})
}

func (f *Func) Succs(block Index) []Index { return f.Items.Slice(f.Block(block).Succs) }
func (f *Func) Preds(block Index) []Index { return f.Items.Slice(f.Block(block).Preds) }

// AddUser records that user (an Inst or Phi) reads vreg, so a later
// rewrite of vreg's definition (trivial-phi removal, §4.10) knows
// every site that needs updating.
func (f *Func) AddUser(vreg, user Index) {
	v := f.VReg(vreg)
	v.Users = f.Items.ReplaceAt(v.Users, v.Users.Len, 0, []Index{user})
}

func (f *Func) Users(vreg Index) []Index { return f.Items.Slice(f.VReg(vreg).Users) }

// Compact sweeps every [VReg] flagged Removed out of the register
// arena and renumbers the survivors to a dense range, the end-of-
// construction pass §4.10 and §3 both describe. By the time it runs,
// package irbuild's try_remove_trivial_phi has already rewired every
// user of a removed register onto its replacement, so the only
// remaining references to fix up are the result slots instructions
// and phis themselves hold for their own defined register, plus every
// vreg-valued operand still reachable through an instruction's
// Payload or a surviving phi's Args — the latter live in f.Items
// alongside block successor/predecessor lists and vreg user sets,
// none of which name a vreg, so redirect is safe to apply to the
// whole pool uniformly.
func (f *Func) Compact() {
	old := f.VRegs.Slice()
	remap := make([]Index, len(old)+1) // 1-based, parallel to old
	fresh := arena.New[VReg](uint(len(old)))
	for i, v := range old {
		if v.Removed {
			continue
		}
		remap[i+1] = MakeIndex(KindVReg, fresh.Alloc(v))
	}
	f.VRegs = fresh

	redirect := func(idx Index) Index {
		if idx.Kind() != KindVReg {
			return idx
		}
		return remap[idx.Payload()]
	}
	for i := range f.Payload.All() {
		f.Payload.All()[i] = redirect(f.Payload.All()[i])
	}
	for i := range f.Items.All() {
		f.Items.All()[i] = redirect(f.Items.All()[i])
	}
	for i := range f.Phis.Slice() {
		p := &f.Phis.Slice()[i]
		p.Result = redirect(p.Result)
	}
}
