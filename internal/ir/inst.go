package ir

import "github.com/sdvcn/vox/internal/arena"

// Opcode enumerates the instruction set §4.9 calls "target-agnostic or
// backend-specific-lowered": since this repository never builds a
// lowering pass, every Func's InstSet is [InstSetGeneric] and every
// opcode below is the target-agnostic one.
type Opcode uint16

const (
	OpNop Opcode = iota

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpNeg
	OpNot
	OpBitNot
	OpCmp

	OpLoad
	OpStore
	OpAlloca
	OpFieldAddr
	OpIndexAddr

	OpCast
	OpZeroExt
	OpSignExt
	OpTrunc
	OpIntToPtr
	OpPtrToInt

	OpCall
	// OpSyscall is the direct-syscall form an `@extern(syscall, N)`
	// declaration's call sites lower to instead of OpCall: no callee
	// operand, just the immediate syscall number (the first operand, a
	// Const) followed by the call's own arguments. It never carries an
	// external reference the way a call through OpCall's ConstFunc
	// callee does (§8 scenario 1's "no external module reference").
	OpSyscall

	// Terminators. A block's last instruction is always one of these;
	// [Opcode.IsTerminator] is how every other part of the package
	// tells a block is [Block.Finished] without re-deriving it.
	OpJump
	OpBr
	OpRet
	OpUnreachable
)

func (op Opcode) IsTerminator() bool {
	switch op {
	case OpJump, OpBr, OpRet, OpUnreachable:
		return true
	default:
		return false
	}
}

// Cond is the comparison predicate an OpCmp or OpBr instruction
// carries in its header.
type Cond uint8

const (
	CondNone Cond = iota
	CondEq
	CondNe
	CondLt
	CondLe
	CondGt
	CondGe
)

// InstSet distinguishes a target-agnostic function body from one a
// backend lowering pass has rewritten in place. No such pass exists
// in this repository; every Func is InstSetGeneric.
type InstSet uint8

const (
	InstSetGeneric InstSet = iota
)

// InstFlags packs the two flag bits §3 assigns an instruction header.
type InstFlags uint8

const (
	// InstHasResult marks an instruction whose first payload slot is
	// its own result register rather than an argument.
	InstHasResult InstFlags = 1 << iota
	// InstIsGeneric is reserved for a template-instantiation-pending
	// instruction. No pass in this repository instantiates templates
	// or sets this bit, so no instruction is ever actually generic; the
	// bit exists purely to keep the header shape matching §3.
	InstIsGeneric
)

func (f InstFlags) Has(bit InstFlags) bool { return f&bit != 0 }

// InstHeader is §3's "opcode, condition, argument-size, a packed
// payload offset, a variadic-arg count, and flags." Payload addresses
// the function's shared payload pool; when InstHasResult is set,
// Payload's first element is the result register and the remaining
// Payload.Len-1 elements (the trailing NumVariadic of which are a
// variable-length tail, e.g. a call's arguments) are the operands.
type InstHeader struct {
	Op          Opcode
	Cond        Cond
	ArgSize     uint8 // operand width in bytes (1, 2, 4, 8); 0 when not applicable
	Flags       InstFlags
	NumVariadic uint16
	Payload     arena.Span
}

func (h *InstHeader) HasResult() bool { return h.Flags.Has(InstHasResult) }

// Result returns the instruction's result operand and true, or
// (Undefined, false) if it has none.
func (h *InstHeader) Result(payload *arena.Pool[Index]) (Index, bool) {
	if !h.HasResult() || h.Payload.Len == 0 {
		return Undefined, false
	}
	return payload.Get(h.Payload, 0), true
}

// Args returns the instruction's argument operands, excluding the
// result slot if it has one.
func (h *InstHeader) Args(payload *arena.Pool[Index]) []Index {
	all := payload.Slice(h.Payload)
	if h.HasResult() {
		if len(all) == 0 {
			return nil
		}
		return all[1:]
	}
	return all
}
