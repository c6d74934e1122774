package ast

import "github.com/sdvcn/vox/internal/arena"

// TypeKind tags the variant of a TypeNode. A type position parses as
// TypeNameUse when it is a bare identifier (including built-in scalar
// names, which resolve through the symbol table's pre-seeded root
// scope rather than through lexer keywords — see token.doc.go) and is
// rewritten in place to one of the resolved kinds by name resolution
// (§4.7): "basic types ... replace the index with the entity directly".
// Syntactically unambiguous shapes (`T*`, `T[]`, `T[N]`, function
// signatures) parse directly into their resolved kind.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	TypeNameUse
	TypeBasic
	TypePointer
	TypeSlice
	TypeStaticArray
	TypeFuncSig
	TypeStruct
	TypeEnum
)

func (k TypeKind) String() string {
	names := [...]string{
		"invalid", "name_use", "basic", "pointer", "slice", "static_array",
		"func_sig", "struct", "enum",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "type(?)"
}

// BasicKind enumerates the scalar and meta types of §4.3.
type BasicKind uint8

const (
	BasicInvalid BasicKind = iota
	BasicNoreturn
	BasicVoid
	BasicBool
	BasicNull
	BasicI8
	BasicI16
	BasicI32
	BasicI64
	BasicU8
	BasicU16
	BasicU32
	BasicU64
	BasicF32
	BasicF64
	BasicAliasMeta // the type of an unresolved alias used as a template argument
	BasicTypeMeta  // the type of a type itself, used for template type parameters
)

func (k BasicKind) IsInteger() bool {
	switch k {
	case BasicI8, BasicI16, BasicI32, BasicI64, BasicU8, BasicU16, BasicU32, BasicU64:
		return true
	default:
		return false
	}
}

func (k BasicKind) IsSigned() bool {
	switch k {
	case BasicI8, BasicI16, BasicI32, BasicI64:
		return true
	default:
		return false
	}
}

func (k BasicKind) IsFloat() bool { return k == BasicF32 || k == BasicF64 }

// IsNoreturnOrVoid follows the design note in §9: treat noreturn and
// void alike rather than reproducing the source's apparent-bug parity.
func (k BasicKind) IsNoreturnOrVoid() bool { return k == BasicNoreturn || k == BasicVoid }

// TypeNode is the tagged union of every type-position node.
type TypeNode struct {
	Header
	Kind TypeKind

	NameUse Index // name_use: Expr-kind ExprNameUse awaiting resolution
	Basic   BasicKind

	Elem     Index // pointer, slice, static_array: element type
	ArrayLen Index // static_array: Expr-kind compile-time length

	Params     arena.Span // func_sig: Type-kind parameter type list
	Variadic   bool       // func_sig: trailing `...`
	ReturnType Index      // func_sig: return type

	Decl Index // struct, enum: the resolved Decl-kind declaration this type names
}
