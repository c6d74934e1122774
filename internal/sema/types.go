package sema

import "github.com/sdvcn/vox/internal/ast"

// canonKey identifies a synthesized TypeNode shape the checker itself
// needs to allocate (never a source-written one — those already have
// a stable Index of their own once resolved). Only the fields a given
// Kind actually varies on are meaningful; the zero value of the rest
// is fine since two different Kinds never collide on the same key.
type canonKey struct {
	kind  ast.TypeKind
	basic ast.BasicKind
	elem  ast.Index
}

func (c *Checker) canon(key canonKey, build func() ast.TypeNode) ast.Index {
	if idx, ok := c.canonCache[key]; ok {
		return idx
	}
	idx := c.Store.AllocType(build())
	c.canonCache[key] = idx
	return idx
}

// basicType returns the canonical TypeNode for a scalar kind, built
// once and reused for every literal default and synthesized length/
// ptr access that needs one.
func (c *Checker) basicType(k ast.BasicKind) ast.Index {
	return c.canon(canonKey{kind: ast.TypeBasic, basic: k}, func() ast.TypeNode {
		return ast.TypeNode{Kind: ast.TypeBasic, Basic: k}
	})
}

func (c *Checker) pointerTo(elem ast.Index) ast.Index {
	return c.canon(canonKey{kind: ast.TypePointer, elem: elem}, func() ast.TypeNode {
		return ast.TypeNode{Kind: ast.TypePointer, Elem: elem}
	})
}

func (c *Checker) sliceOf(elem ast.Index) ast.Index {
	return c.canon(canonKey{kind: ast.TypeSlice, elem: elem}, func() ast.TypeNode {
		return ast.TypeNode{Kind: ast.TypeSlice, Elem: elem}
	})
}

func (c *Checker) u8SliceType() ast.Index {
	return c.sliceOf(c.basicType(ast.BasicU8))
}

// elemTypeOf reports the element type of a slice/static-array/pointer
// TypeNode, the shared shape the length/ptr lowering and indexing
// both need.
func elemTypeOf(t *ast.TypeNode) (ast.Index, bool) {
	switch t.Kind {
	case ast.TypeSlice, ast.TypeStaticArray, ast.TypePointer:
		return t.Elem, true
	default:
		return ast.Undefined, false
	}
}

// typesEqual reports whether a and b denote the same type structurally
// — two independently-resolved TypeNode handles for `i32` are not the
// same arena index, but must still compare equal. Struct/enum types
// compare nominally: same index into the Decl arena, not structurally
// field-by-field, matching every other nominal-typing rule in this
// checker.
func (c *Checker) typesEqual(a, b ast.Index) bool {
	if a == b {
		return true
	}
	ta, tb := c.Store.Type(a), c.Store.Type(b)
	if ta == nil || tb == nil || ta.Kind != tb.Kind {
		return false
	}
	switch ta.Kind {
	case ast.TypeBasic:
		return ta.Basic == tb.Basic
	case ast.TypePointer, ast.TypeSlice:
		return c.typesEqual(ta.Elem, tb.Elem)
	case ast.TypeStaticArray:
		if !c.typesEqual(ta.Elem, tb.Elem) {
			return false
		}
		na, aok := c.EvalConstInt(ta.ArrayLen)
		nb, bok := c.EvalConstInt(tb.ArrayLen)
		return aok && bok && na == nb
	case ast.TypeFuncSig:
		if ta.Variadic != tb.Variadic || !c.typesEqual(ta.ReturnType, tb.ReturnType) {
			return false
		}
		pa, pb := c.Store.ItemsOf(ta.Params), c.Store.ItemsOf(tb.Params)
		if len(pa) != len(pb) {
			return false
		}
		for i := range pa {
			if !c.typesEqual(pa[i], pb[i]) {
				return false
			}
		}
		return true
	case ast.TypeStruct, ast.TypeEnum:
		return ta.Decl == tb.Decl
	default:
		return false
	}
}

// funcSigOf builds (and caches) the TypeFuncSig view of a DeclFunc,
// used to type a plain function name-use and as the callee type of a
// rewritten paren-free call.
func (c *Checker) funcSigOf(d *ast.Decl, declIdx ast.Index) ast.Index {
	if idx, ok := c.funcSig[declIdx]; ok {
		return idx
	}
	paramDecls := c.Store.ItemsOf(d.Params)
	var params []ast.Index
	variadic := false
	for _, p := range paramDecls {
		pd := c.Store.MustDecl(p)
		params = append(params, pd.Type)
		variadic = variadic || pd.Flags.Has(ast.FlagVariadicParam)
	}
	idx := c.Store.AllocType(ast.TypeNode{
		Kind:       ast.TypeFuncSig,
		Params:     c.Store.AppendItems(params...),
		Variadic:   variadic,
		ReturnType: d.ReturnType,
	})
	c.funcSig[declIdx] = idx
	return idx
}
