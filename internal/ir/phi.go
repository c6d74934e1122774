package ir

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
)

// Phi is an incomplete or complete SSA phi node: §3's "stores its
// block, its result virtual register, the SSA variable it represents,
// an argument small-array (parallel to the block's predecessor list,
// by position), and prev/next phi links within the block."
//
// Var identifies the source-level storage location a phi merges
// definitions of — the `DeclVar`/`DeclParam`/`DeclField` (for a `this`
// member captured through a loop) whose most recent value the phi
// picks between. Using the declaration's own handle rather than its
// name means two differently-scoped locals named the same thing never
// collide, which an interned-name key would need a separate shadowing
// table to avoid. Var is only meaningful during construction (package
// irbuild's write_variable/read_variable bookkeeping); once ir_gen
// finishes, a surviving phi is addressed purely by its result
// register.
type Phi struct {
	Block  Index
	Result Index // KindVReg
	Var    ast.Index

	Args arena.Span // []Index, one operand per predecessor, same order as Block.Preds

	PrevPhi Index
	NextPhi Index
}

// Incomplete reports whether phi is still missing operands because
// its block was unsealed when it was created (§4.10's
// "incomplete phi" — one add_phi_operands call away from being
// complete once every predecessor is known).
func (p *Phi) Incomplete(numPreds int) bool {
	return int(p.Args.Len) < numPreds
}
