package parser

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/token"
)

// Binding powers for the Pratt expression parser (§4.4). Values need
// not be dense, only ordered: they encode C-like precedence from
// postfix/member access (highest) down to assignment (lowest,
// right-associative).
const (
	bpAssign   = 30
	bpLogicOr  = 70
	bpLogicAnd = 90
	bpBitOr    = 110
	bpBitXor   = 130
	bpBitAnd   = 150
	bpEquality = 170
	bpCompare  = 190
	bpShift    = 210
	bpAdditive = 230
	bpMulFunc  = 250
	bpPrefix   = 290
	bpPostfix  = 310
)

// infixBp is the left-binding power of each infix/postfix operator
// token; tokens absent from the map are not infix operators.
var infixBp = map[token.Kind]int{
	token.Star: bpMulFunc, token.Slash: bpMulFunc, token.Percent: bpMulFunc,
	token.Plus: bpAdditive, token.Minus: bpAdditive,
	token.Shl: bpShift, token.Shr: bpShift,
	token.Lt: bpCompare, token.LtEq: bpCompare, token.Gt: bpCompare, token.GtEq: bpCompare,
	token.EqEq: bpEquality, token.BangEq: bpEquality,
	token.Amp: bpBitAnd, token.Caret: bpBitXor, token.Pipe: bpBitOr,
	token.AndAnd: bpLogicAnd, token.OrOr: bpLogicOr,
	token.LParen: bpPostfix, token.LBracket: bpPostfix, token.Dot: bpPostfix,
	token.Assign: bpAssign, token.PlusAssign: bpAssign, token.MinusAssign: bpAssign,
	token.StarAssign: bpAssign, token.SlashAssign: bpAssign, token.PercentAssign: bpAssign,
	token.AmpAssign: bpAssign, token.PipeAssign: bpAssign, token.CaretAssign: bpAssign,
	token.ShlAssign: bpAssign, token.ShrAssign: bpAssign,
}

// binOpFor maps a binary-operator token to its ast.BinaryOp tag.
func binOpFor(k token.Kind) (ast.BinaryOp, bool) {
	switch k {
	case token.Plus:
		return ast.BinAdd, true
	case token.Minus:
		return ast.BinSub, true
	case token.Star:
		return ast.BinMul, true
	case token.Slash:
		return ast.BinDiv, true
	case token.Percent:
		return ast.BinMod, true
	case token.Shl:
		return ast.BinShl, true
	case token.Shr:
		return ast.BinShr, true
	case token.Amp:
		return ast.BinBitAnd, true
	case token.Pipe:
		return ast.BinBitOr, true
	case token.Caret:
		return ast.BinBitXor, true
	case token.AndAnd:
		return ast.BinLogicalAnd, true
	case token.OrOr:
		return ast.BinLogicalOr, true
	case token.EqEq:
		return ast.BinEq, true
	case token.BangEq:
		return ast.BinNotEq, true
	case token.Lt:
		return ast.BinLt, true
	case token.LtEq:
		return ast.BinLtEq, true
	case token.Gt:
		return ast.BinGt, true
	case token.GtEq:
		return ast.BinGtEq, true
	default:
		return 0, false
	}
}

// assignOpFor maps an assignment-operator token to its ast.AssignOp tag.
func assignOpFor(k token.Kind) (ast.AssignOp, bool) {
	switch k {
	case token.Assign:
		return ast.AssignPlain, true
	case token.PlusAssign:
		return ast.AssignAdd, true
	case token.MinusAssign:
		return ast.AssignSub, true
	case token.StarAssign:
		return ast.AssignMul, true
	case token.SlashAssign:
		return ast.AssignDiv, true
	case token.PercentAssign:
		return ast.AssignMod, true
	case token.AmpAssign:
		return ast.AssignBitAnd, true
	case token.PipeAssign:
		return ast.AssignBitOr, true
	case token.CaretAssign:
		return ast.AssignBitXor, true
	case token.ShlAssign:
		return ast.AssignShl, true
	case token.ShrAssign:
		return ast.AssignShr, true
	default:
		return 0, false
	}
}

// ptrPostfixTerminators is the token-kind set the spec names as the
// star's "right context" that forces a postfix pointer-type reading
// instead of multiplication (§4.4): ", ) ] [ ; function" — the last
// covered here by Arrow, the token that introduces a function-
// signature's return type.
var ptrPostfixTerminators = map[token.Kind]bool{
	token.Comma: true, token.RParen: true, token.RBracket: true,
	token.LBracket: true, token.Semicolon: true, token.Arrow: true,
	token.EOF: true,
}
