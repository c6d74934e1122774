package ast

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/intern"
)

// ExprKind tags the variant of an Expr node.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprNameUse
	ExprIntLit
	ExprUintLit
	ExprFloatLit
	ExprBoolLit
	ExprStringLit
	ExprFStringLit
	ExprNullLit
	ExprThis
	ExprBinary
	ExprUnary
	ExprAssign
	ExprCall
	ExprIndex
	ExprMember
	ExprCast
	ExprArrayLit
)

func (k ExprKind) String() string {
	names := [...]string{
		"invalid", "name_use", "int_lit", "uint_lit", "float_lit", "bool_lit",
		"string_lit", "fstring_lit", "null_lit", "this", "binary", "unary",
		"assign", "call", "index", "member", "cast", "array_lit",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "expr(?)"
}

// BinaryOp enumerates the non-assignment infix operators.
type BinaryOp uint8

const (
	BinInvalid BinaryOp = iota
	BinAdd
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinLogicalAnd
	BinLogicalOr
	BinEq
	BinNotEq
	BinLt
	BinLtEq
	BinGt
	BinGtEq
)

// UnaryOp enumerates prefix/postfix operators sharing the Expr.Operand
// slot. AddrOf's lvalue-requirement (§4.8) is checked by the type
// checker, not recorded on the node.
type UnaryOp uint8

const (
	UnInvalid UnaryOp = iota
	UnNeg
	UnNot
	UnBitNot
	UnAddrOf
	UnDeref
)

// AssignOp enumerates `=` and its compound forms.
type AssignOp uint8

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignBitAnd
	AssignBitOr
	AssignBitXor
	AssignShl
	AssignShr
)

// Expr is the tagged union of every expression node.
type Expr struct {
	Header
	Kind ExprKind

	NameID intern.ID // name_use, member(member name)

	IntValue    int64     // int_lit
	UintValue   uint64    // uint_lit
	FloatValue  float64   // float_lit
	BoolValue   bool      // bool_lit
	StringValue intern.ID // string_lit (interned text)
	Parts       arena.Span // fstring_lit: alternating Expr-kind literal/interpolated parts

	BinOp    BinaryOp // binary
	UnOp     UnaryOp  // unary
	AssignOp AssignOp // assign

	LHS      Index // binary, assign (target)
	RHS      Index // binary, assign (value)
	Operand  Index // unary, cast (source value)
	Base     Index // index, member: receiver expression
	Subscript Index // index: subscript expression

	CastType Index // cast: Type-kind target type

	Callee Index      // call: callee expression (post-typecheck paren-free-call rewrite target)
	Args   arena.Span // call: Expr-kind argument list; array_lit: Expr-kind element list

	ResolvedType Index // set by the type checker (§4.8): Type-kind handle for this expression's static type
}
