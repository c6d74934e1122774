package sema

import "github.com/sdvcn/vox/internal/ast"

// basicWidth orders the integer/float BasicKinds for the widening
// checks below; kinds outside either family return 0 and never widen.
var basicWidth = map[ast.BasicKind]int{
	ast.BasicI8: 8, ast.BasicI16: 16, ast.BasicI32: 32, ast.BasicI64: 64,
	ast.BasicU8: 8, ast.BasicU16: 16, ast.BasicU32: 32, ast.BasicU64: 64,
	ast.BasicF32: 32, ast.BasicF64: 64,
}

// fitsLiteral reports whether value (read either as signed or as an
// unsigned bit pattern, per kind) is representable in kind's width —
// the "common-value literals" exception §4.8 carves out of the
// otherwise strict no-implicit-signed/unsigned-mixing rule: a literal
// whose value provably fits the target may cross that boundary even
// though a general expression of the source type may not.
func fitsLiteral(kind ast.BasicKind, value int64) bool {
	if !kind.IsInteger() {
		return false
	}
	w := basicWidth[kind]
	if kind.IsSigned() {
		if w == 64 {
			return true
		}
		lo, hi := int64(-1)<<(w-1), int64(1)<<(w-1)-1
		return value >= lo && value <= hi
	}
	if value < 0 {
		return false
	}
	if w == 64 {
		return true
	}
	return uint64(value) <= uint64(1)<<w-1
}

// fitsUnsignedLiteral is fitsLiteral's counterpart for a uint_lit,
// whose value is never negative to begin with.
func fitsUnsignedLiteral(kind ast.BasicKind, value uint64) bool {
	if !kind.IsInteger() {
		return false
	}
	w := basicWidth[kind]
	if kind.IsSigned() {
		hi := uint64(1)<<(w-1) - 1
		return value <= hi
	}
	if w == 64 {
		return true
	}
	return value <= uint64(1)<<w-1
}

// assignable reports whether a value of src's type may flow into a
// dst-typed slot without an explicit cast, and whether srcExpr (if
// any) is itself the thing licensing it — a literal whose value fits,
// or an identical type needing no coercion at all.
func (c *Checker) assignable(dst, src ast.Index, srcExpr ast.Index) bool {
	if c.typesEqual(dst, src) {
		return true
	}
	dt, st := c.Store.Type(dst), c.Store.Type(src)
	if dt == nil || st == nil {
		return false
	}
	switch dt.Kind {
	case ast.TypeBasic:
		if st.Kind != ast.TypeBasic {
			return false
		}
		return c.basicAssignable(dt.Basic, st.Basic, srcExpr)
	default:
		// Pointers, slices, static arrays, func signatures, structs and
		// enums all require an exact structural/nominal match; §4.8
		// explicitly withholds implicit pointer<->anything conversions,
		// and nothing else in the spec asks for covariance here.
		return false
	}
}

func (c *Checker) basicAssignable(dst, src ast.BasicKind, srcExpr ast.Index) bool {
	if dst == src {
		return true
	}
	if dst.IsInteger() && src.IsInteger() {
		if dst.IsSigned() == src.IsSigned() {
			return basicWidth[dst] >= basicWidth[src]
		}
		// Crossing the signed/unsigned boundary is only ever allowed for
		// a literal whose concrete value is known to fit dst; a named
		// value of the wrong signedness always needs an explicit cast.
		if e := c.Store.Expr(srcExpr); e != nil {
			switch e.Kind {
			case ast.ExprIntLit:
				return fitsLiteral(dst, e.IntValue)
			case ast.ExprUintLit:
				return fitsLiteral(dst, int64(e.UintValue))
			}
		}
		return false
	}
	if dst.IsFloat() && src.IsFloat() {
		return basicWidth[dst] >= basicWidth[src]
	}
	return false
}

// castAllowed implements §4.8's explicit `cast(T) e` pair list:
// integer widening/narrowing, pointer/integer, pointer/pointer,
// slice/pointer, enum/integer.
func (c *Checker) castAllowed(dst, src ast.Index) bool {
	if c.typesEqual(dst, src) {
		return true
	}
	dt, st := c.Store.Type(dst), c.Store.Type(src)
	if dt == nil || st == nil {
		return false
	}
	switch {
	case dt.Kind == ast.TypeBasic && dt.Basic.IsInteger() && st.Kind == ast.TypeBasic && st.Basic.IsInteger():
		return true
	case dt.Kind == ast.TypePointer && st.Kind == ast.TypeBasic && st.Basic.IsInteger():
		return true
	case dt.Kind == ast.TypeBasic && dt.Basic.IsInteger() && st.Kind == ast.TypePointer:
		return true
	case dt.Kind == ast.TypePointer && st.Kind == ast.TypePointer:
		return true
	case dt.Kind == ast.TypePointer && st.Kind == ast.TypeSlice:
		return true
	case dt.Kind == ast.TypeSlice && st.Kind == ast.TypePointer:
		return true
	case dt.Kind == ast.TypeEnum && st.Kind == ast.TypeBasic && st.Basic.IsInteger():
		return true
	case dt.Kind == ast.TypeBasic && dt.Basic.IsInteger() && st.Kind == ast.TypeEnum:
		return true
	default:
		return false
	}
}
