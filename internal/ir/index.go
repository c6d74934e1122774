// Package ir implements the SSA-form intermediate representation of
// §3's "IR entities": a function owns eight parallel arenas, every
// cross-reference is a 32-bit bit-packed handle rather than a pointer,
// and basic blocks, instructions and virtual registers all carry the
// sealed/finished invariants the builder in package irbuild maintains.
package ir

import "fmt"

// Kind is the 4-bit tag packed into the high bits of an [Index],
// selecting which arena a handle's payload indexes into. §3 lists a
// few entity kinds this repository folds into a broader one rather
// than giving a dedicated arena: stack slots are alloca-defined
// virtual registers of pointer type (no backend ever lowers them to
// real frame offsets, so a separate kind would carry no information);
// physical registers exist only as [PReg]'s payload-repacking scheme,
// reserved for a register allocator this repository does not build.
type Kind uint8

const (
	KindNone Kind = iota
	KindBlock
	KindInst
	KindPhi
	KindVReg
	KindConst
	KindGlobal
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBlock:
		return "block"
	case KindInst:
		return "inst"
	case KindPhi:
		return "phi"
	case KindVReg:
		return "vreg"
	case KindConst:
		return "const"
	case KindGlobal:
		return "global"
	case KindFunc:
		return "func"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

const (
	kindShift   = 28
	payloadMask = (uint32(1) << kindShift) - 1
)

// Index is a 32-bit handle into one of Func's arenas, or (for
// KindFunc/KindGlobal) a Module-level arena. The zero value is
// Undefined regardless of kind, matching package ast's handle
// convention that index 0 is always reserved.
type Index uint32

// Undefined is the zero handle.
const Undefined Index = 0

// MakeIndex packs a 1-based arena index together with its kind tag.
func MakeIndex(kind Kind, payload uint32) Index {
	if payload == 0 {
		return Undefined
	}
	if payload&^payloadMask != 0 {
		panic(fmt.Errorf("ir: payload %d overflows 28 bits", payload))
	}
	return Index(uint32(kind)<<kindShift | payload)
}

func (idx Index) Kind() Kind {
	if idx == Undefined {
		return KindNone
	}
	return Kind(uint32(idx) >> kindShift)
}

func (idx Index) Payload() uint32 {
	return uint32(idx) & payloadMask
}

func (idx Index) IsValid() bool { return idx != Undefined }

func (idx Index) String() string {
	if idx == Undefined {
		return "<undef>"
	}
	return fmt.Sprintf("%s#%d", idx.Kind(), idx.Payload())
}
