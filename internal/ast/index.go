// Package ast implements the tagged-variant node universe of §4.3: a
// closed set of declaration, statement, expression, and type node
// kinds sharing a common header, stored in append-only arenas and
// cross-referenced by 32-bit packed handles instead of pointers.
package ast

import "fmt"

// AstKind is the 4-bit tag packed into the high bits of an [Index],
// selecting which arena a handle's payload indexes into.
type AstKind uint8

const (
	KindNone AstKind = iota
	KindDecl
	KindStmt
	KindExpr
	KindType
)

func (k AstKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDecl:
		return "decl"
	case KindStmt:
		return "stmt"
	case KindExpr:
		return "expr"
	case KindType:
		return "type"
	default:
		return fmt.Sprintf("AstKind(%d)", uint8(k))
	}
}

// kindShift/payloadMask implement the 4-bit-kind + 28-bit-payload
// packing described in §3's "universal 32-bit handle".
const (
	kindShift   = 28
	payloadMask = (uint32(1) << kindShift) - 1
)

// Index is a 32-bit handle into one of the Decl/Stmt/Expr/Type arenas.
// The zero value means "undefined" regardless of kind, matching the
// arena convention that index 0 is reserved (§4.1).
type Index uint32

// Undefined is the zero handle.
const Undefined Index = 0

// MakeIndex packs a 1-based payload (as returned by an arena's Alloc)
// together with its kind tag.
func MakeIndex(kind AstKind, payload uint32) Index {
	if payload == 0 {
		return Undefined
	}
	if payload&^payloadMask != 0 {
		panic(fmt.Errorf("ast: payload %d overflows 28 bits", payload))
	}
	return Index(uint32(kind)<<kindShift | payload)
}

// Kind reports which arena idx indexes into.
func (idx Index) Kind() AstKind {
	if idx == Undefined {
		return KindNone
	}
	return AstKind(uint32(idx) >> kindShift)
}

// Payload returns the 1-based arena index, stripped of its kind tag.
func (idx Index) Payload() uint32 {
	return uint32(idx) & payloadMask
}

// IsValid reports whether idx is anything other than Undefined.
func (idx Index) IsValid() bool { return idx != Undefined }

func (idx Index) String() string {
	if idx == Undefined {
		return "<undef>"
	}
	return fmt.Sprintf("%s#%d", idx.Kind(), idx.Payload())
}

// AttrIndex is a 1-based handle into the Attrs arena. Attributes are
// never cross-referenced from outside their owning node's attribute
// info, so unlike Index they carry no kind tag.
type AttrIndex uint32

// ScopeIndex is a 1-based handle into the Scopes arena.
type ScopeIndex uint32
