package ir

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/intern"
)

// VReg is a virtual register: §3's "stores its definition handle, its
// type, and a small set of users." Def is the Inst or Phi that
// produces it.
//
// §3 marks a removed register (one try_remove_trivial_phi folded away
// during construction, §4.10) by setting Type to the register's own
// index, deferring actual compaction to an end-of-construction sweep.
// That trick relies on a single handle space shared by types and
// registers; this repository keeps the AST's type handles (ast.Index)
// and the IR's entity handles (Index) in two separate 32-bit spaces,
// so the marker is an explicit flag instead — same effect, without
// letting a coincidentally-equal payload in the unrelated ast.Index
// space misread as "removed".
type VReg struct {
	Def     Index
	Type    ast.Index
	Removed bool
	Users   arena.Span
}

// RegClass distinguishes the register banks a physical register can
// come from. No allocator in this repository ever assigns one; the
// type exists so a future backend's payload-repacking scheme has
// somewhere to live without inventing another index kind for it.
type RegClass uint8

const (
	RegClassInt RegClass = iota
	RegClassFloat
)

// PReg repacks a 28-bit IR payload into class/size/index subfields
// per §3 ("physical registers repack the payload into class/size/index
// subfields"). SizeLog2 is the register width as a power of two
// (0 = 1 byte ... 3 = 8 bytes). A PReg reuses the vreg a register
// allocator assigned it to, once one exists; [EncodePReg] and
// [DecodePReg] are provided for that backend to use and are otherwise
// unreferenced here.
type PReg struct {
	Class    RegClass
	SizeLog2 uint8
	Num      uint16
}

func EncodePReg(p PReg) uint32 {
	return uint32(p.Class)<<24 | uint32(p.SizeLog2)<<16 | uint32(p.Num)
}

func DecodePReg(payload uint32) PReg {
	return PReg{
		Class:    RegClass(payload >> 24),
		SizeLog2: uint8(payload >> 16),
		Num:      uint16(payload),
	}
}

// ConstKind distinguishes the shapes a compile-time constant value
// can take, mirrored on the teacher's own MIR constant encoding.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstUint
	ConstFloat
	ConstBool
	ConstString
	ConstZero
	ConstAggregate
	ConstFunc
	ConstGlobalAddr
)

// Const is a compile-time constant operand. Aggregate consts (array
// and struct literals folded entirely out of runtime instructions)
// store their element operands in Elems; everything else uses the
// scalar field matching its Kind.
type Const struct {
	Kind ConstKind
	Type ast.Index

	IntValue   int64
	UintValue  uint64
	FloatValue float64
	BoolValue  bool
	String     string

	Elems  arena.Span // ConstAggregate only: element operands, by position
	Func   Index      // ConstFunc only: the function this constant names
	Global Index      // ConstGlobalAddr only: the global this constant addresses
}

// Global is a module-level storage location: a read-only string
// literal's backing bytes, or a `var` declared outside any function
// body. Init, when set, is the constant the global is initialized
// with; irgen always supplies one, unlike a stack slot a global is
// never left implicitly zero-initialized.
type Global struct {
	Name intern.ID
	Type ast.Index
	Init Const
}
