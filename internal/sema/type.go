package sema

import (
	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
)

// checkType is type_check's PropType step for a Type-kind node: a
// source-written type position never synthesizes anything of its own
// (it has no ResolvedType slot), it only needs its own shape to be
// internally consistent and its constituent pieces driven through the
// same property.
func (c *Checker) checkType(d *analysis.Driver, node ast.Index) error {
	t := c.Store.Type(node)
	switch t.Kind {
	case ast.TypeBasic, ast.TypeInvalid:
		return nil
	case ast.TypePointer, ast.TypeSlice:
		return d.Require(t.Elem, ast.PropType)
	case ast.TypeStaticArray:
		if err := d.Require(t.Elem, ast.PropType); err != nil {
			return err
		}
		if err := d.Require(t.ArrayLen, ast.PropType); err != nil {
			return err
		}
		n, ok := c.EvalConstInt(t.ArrayLen)
		if !ok || n < 0 {
			return c.reportSimple(node, diag.TypeMismatch, "array length must be a non-negative constant integer")
		}
		return nil
	case ast.TypeFuncSig:
		for _, p := range c.Store.ItemsOf(t.Params) {
			if err := d.Require(p, ast.PropType); err != nil {
				return err
			}
		}
		if t.ReturnType != ast.Undefined {
			return d.Require(t.ReturnType, ast.PropType)
		}
		return nil
	case ast.TypeStruct, ast.TypeEnum:
		// Drives the named declaration's own member/field typing so a
		// struct or enum used purely in a type position still gets
		// fully checked even if nothing ever constructs a value of it.
		return d.Require(t.Decl, ast.PropType)
	default:
		return nil
	}
}
