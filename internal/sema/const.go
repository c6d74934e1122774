package sema

import "github.com/sdvcn/vox/internal/ast"

// EvalConstInt evaluates a compile-time integer constant expression:
// integer/unsigned literals, unary -/~ , and the arithmetic/bitwise
// binary operators over two other constants. It is the type checker's
// own constant folder, distinct from (*symbols.Registrar)'s evalBool
// — that one only ever needs bool/#version conditions before name
// resolution has run; this one needs actual integer values, for a
// static array's declared length (§4.9's ArrayLen) and any enum
// constant whose value is itself an expression rather than a bare
// literal. Exported so a later pass (IR generation, layout) can reuse
// it without a second folder.
func (c *Checker) EvalConstInt(idx ast.Index) (int64, bool) {
	e := c.Store.Expr(idx)
	if e == nil {
		return 0, false
	}
	switch e.Kind {
	case ast.ExprIntLit:
		return e.IntValue, true
	case ast.ExprUintLit:
		return int64(e.UintValue), true
	case ast.ExprUnary:
		v, ok := c.EvalConstInt(e.Operand)
		if !ok {
			return 0, false
		}
		switch e.UnOp {
		case ast.UnNeg:
			return -v, true
		case ast.UnBitNot:
			return ^v, true
		default:
			return 0, false
		}
	case ast.ExprBinary:
		l, lok := c.EvalConstInt(e.LHS)
		r, rok := c.EvalConstInt(e.RHS)
		if !lok || !rok {
			return 0, false
		}
		switch e.BinOp {
		case ast.BinAdd:
			return l + r, true
		case ast.BinSub:
			return l - r, true
		case ast.BinMul:
			return l * r, true
		case ast.BinDiv:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case ast.BinMod:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		case ast.BinShl:
			return l << uint64(r), true
		case ast.BinShr:
			return l >> uint64(r), true
		case ast.BinBitAnd:
			return l & r, true
		case ast.BinBitOr:
			return l | r, true
		case ast.BinBitXor:
			return l ^ r, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}
