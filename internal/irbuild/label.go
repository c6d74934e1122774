package irbuild

import "github.com/sdvcn/vox/internal/ir"

// AddJump appends an unconditional jump terminator from block to to.
func (b *Builder) AddJump(block, to ir.Index) {
	b.assertUnfinished(block)
	b.F.AppendInst(block, ir.InstHeader{Op: ir.OpJump, Payload: b.F.Payload.Append(to)})
	b.F.AddBlockTarget(block, to)
}

// AddUnaryBranch appends a conditional branch that tests cond (a
// bool-typed value) directly, with no fused comparison. It allocates
// both successor blocks itself and returns them as already-allocated
// Labels — unlike the join point after a control structure, a
// branch's own arms can never be deferred, since the branch
// instruction needs two concrete targets to test against at runtime.
func (b *Builder) AddUnaryBranch(block, cond ir.Index) (onTrue, onFalse *Label) {
	b.assertUnfinished(block)
	trueBlock, falseBlock := b.F.NewBlock(), b.F.NewBlock()
	payload := b.F.Payload.Append(cond, trueBlock, falseBlock)
	b.F.AppendInst(block, ir.InstHeader{Op: ir.OpBr, Cond: ir.CondNone, Payload: payload})
	b.F.AddBlockTarget(block, trueBlock)
	b.F.AddBlockTarget(block, falseBlock)
	b.SealBlock(trueBlock)
	b.SealBlock(falseBlock)
	return allocatedLabel(trueBlock), allocatedLabel(falseBlock)
}

// AddBinBranch appends a conditional branch that fuses a comparison
// (cond applied to lhs, rhs) with the branch, avoiding a separate
// OpCmp instruction and intermediate bool register for the common
// `if a < b` shape.
func (b *Builder) AddBinBranch(block ir.Index, cond ir.Cond, lhs, rhs ir.Index) (onTrue, onFalse *Label) {
	b.assertUnfinished(block)
	trueBlock, falseBlock := b.F.NewBlock(), b.F.NewBlock()
	payload := b.F.Payload.Append(lhs, rhs, trueBlock, falseBlock)
	b.F.AppendInst(block, ir.InstHeader{Op: ir.OpBr, Cond: cond, Payload: payload})
	b.F.AddBlockTarget(block, trueBlock)
	b.F.AddBlockTarget(block, falseBlock)
	return allocatedLabel(trueBlock), allocatedLabel(falseBlock)
}

// AddReturn appends a `ret`/`ret_val` terminator. value is
// [ir.Undefined] for a void return.
func (b *Builder) AddReturn(block, value ir.Index) {
	b.assertUnfinished(block)
	header := ir.InstHeader{Op: ir.OpRet}
	if value != ir.Undefined {
		header.Payload = b.F.Payload.Append(value)
	}
	b.F.AppendInst(block, header)
}

func (b *Builder) AddUnreachable(block ir.Index) {
	b.assertUnfinished(block)
	b.F.AppendInst(block, ir.InstHeader{Op: ir.OpUnreachable})
}

func (b *Builder) assertUnfinished(block ir.Index) {
	if b.F.Block(block).Finished() {
		panic("irbuild: block already has a terminator")
	}
}

// Label is the IrLabel protocol of §4.10, the bridge between package
// irbuild and the statement generator it serves: a join point whose
// backing block is allocated lazily, the first time something
// actually jumps to it, so a control structure with a single exit
// path (an `if` with no `else`, a `while` loop) never produces an
// empty block purely to hold the "continue after this" point.
type Label struct {
	block     ir.Index
	numPreds  int
	allocated bool
}

// NewLabel returns a deferred label with no backing block yet.
func NewLabel() *Label { return &Label{} }

// allocatedLabel wraps an already-allocated, already-wired block
// (used by the branch helpers, whose two arms are never deferred).
func allocatedLabel(block ir.Index) *Label {
	return &Label{block: block, numPreds: 1, allocated: true}
}

// Block returns the label's backing block. Valid only once the label
// has received at least one jump (AddJump/AddUnaryBranch/AddBinBranch
// guarantee this for the Labels they hand back; a caller holding a
// [NewLabel] must have already routed at least one
// [Builder.AddJumpToLabel] through it).
func (l *Label) Block() ir.Index { return l.block }

// AddJumpToLabel routes an unconditional jump from block through l,
// following §4.10's three-case deferred-allocation rule:
//
//   - l already has a backing block: jump to it directly.
//   - l has never been jumped to: block itself becomes l's backing
//     block — no jump instruction is emitted, and the caller should
//     simply keep appending to block as "what happens at the label."
//   - l has exactly one prior (deferred) predecessor: that deferred
//     block can't keep masquerading as the label now that a second
//     path also needs to reach it, so a real join block is allocated,
//     both the original deferred block and block are jumped into it,
//     and l is upgraded to "allocated."
func (b *Builder) AddJumpToLabel(block ir.Index, l *Label) {
	switch {
	case l.allocated:
		b.AddJump(block, l.block)
		l.numPreds++
	case l.numPreds == 0:
		l.block = block
		l.numPreds = 1
	default: // l.numPreds == 1: upgrade the deferred block to a real join
		join := b.F.NewBlock()
		prev := l.block
		if !b.F.Block(prev).Finished() {
			b.AddJump(prev, join)
		}
		if !b.F.Block(block).Finished() {
			b.AddJump(block, join)
		}
		l.block = join
		l.numPreds = 2
		l.allocated = true
	}
}
