package sema

import (
	"fmt"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
)

func (c *Checker) checkDecl(d *analysis.Driver, node ast.Index) error {
	decl := c.Store.MustDecl(node)
	switch decl.Kind {
	case ast.DeclVar, ast.DeclParam, ast.DeclField, ast.DeclEnumConst, ast.DeclEnumMember:
		return c.checkTypedBinding(d, node, decl)
	case ast.DeclAlias:
		return c.checkAlias(d, decl)
	case ast.DeclStruct:
		return c.checkStruct(d, decl)
	case ast.DeclEnumType:
		return c.checkEnumType(d, decl)
	case ast.DeclFunc:
		return c.checkFunc(d, node, decl)
	case ast.DeclModule, ast.DeclImport, ast.DeclTemplateParam:
		return nil
	default:
		// The four static-conditional kinds never survive past §4.6;
		// reaching one here means a container walked past it without
		// sweeping its own item list first.
		return fmt.Errorf("sema: unexpanded static-conditional node reached type checking")
	}
}

// checkTypedBinding covers every Decl kind whose shape is "an optional
// declared Type plus an optional Init expression the type either
// constrains or is inferred from": var, param, field, enum_const,
// enum_member. A static_foreach-synthesized enum_member already
// carries both (§4.6), so this is also how those get checked.
func (c *Checker) checkTypedBinding(d *analysis.Driver, node ast.Index, decl *ast.Decl) error {
	if decl.Type != ast.Undefined {
		if err := d.Require(decl.Type, ast.PropType); err != nil {
			return err
		}
	}
	if decl.Init == ast.Undefined {
		return nil
	}
	if decl.Type == ast.Undefined {
		if err := d.Require(decl.Init, ast.PropType); err != nil {
			return err
		}
		decl.Type = c.resolvedTypeIndex(decl.Init)
		return nil
	}
	if err := c.requireWithHint(d, decl.Init, decl.Type); err != nil {
		return err
	}
	if !c.assignable(decl.Type, c.resolvedTypeIndex(decl.Init), decl.Init) {
		return c.mismatch(decl.Init, decl.Type, c.resolvedTypeIndex(decl.Init))
	}
	return nil
}

func (c *Checker) checkAlias(d *analysis.Driver, decl *ast.Decl) error {
	if decl.Type != ast.Undefined {
		if err := d.Require(decl.Type, ast.PropType); err != nil {
			return err
		}
	}
	if decl.Init != ast.Undefined {
		// An alias names its target, it never calls it: `alias Bar =
		// foo;` aliases the function foo itself.
		c.markWantsCallable(decl.Init)
		if err := d.Require(decl.Init, ast.PropType); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStruct(d *analysis.Driver, decl *ast.Decl) error {
	for _, member := range c.Store.ItemsOf(decl.Members) {
		if err := d.Require(member, ast.PropType); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkEnumType(d *analysis.Driver, decl *ast.Decl) error {
	if decl.BaseType != ast.Undefined {
		if err := d.Require(decl.BaseType, ast.PropType); err != nil {
			return err
		}
	}
	for _, member := range c.Store.ItemsOf(decl.Members) {
		if err := d.Require(member, ast.PropType); err != nil {
			return err
		}
	}
	return nil
}

// checkFunc validates the trailing-defaults shape of the parameter
// list (a non-default parameter may not follow a default one — the
// condition TypeMissingDefaultArg names), then types the signature
// and body. The body's own StmtReturn checks reach back to decl via
// ast.Scope.Owner, not by being handed it directly.
func (c *Checker) checkFunc(d *analysis.Driver, node ast.Index, decl *ast.Decl) error {
	sawDefault := false
	for _, p := range c.Store.ItemsOf(decl.Params) {
		pd := c.Store.MustDecl(p)
		if err := d.Require(p, ast.PropType); err != nil {
			return err
		}
		if pd.Init != ast.Undefined {
			sawDefault = true
		} else if sawDefault && !pd.Flags.Has(ast.FlagVariadicParam) {
			return c.missingDefault(pd)
		}
	}
	if decl.ReturnType != ast.Undefined {
		if err := d.Require(decl.ReturnType, ast.PropType); err != nil {
			return err
		}
	}
	if decl.Body == ast.Undefined {
		return nil // @extern / forward declaration: no body to check
	}
	return d.Require(decl.Body, ast.PropType)
}

func (c *Checker) mismatch(node, want, got ast.Index) error {
	sp := c.Store.Header(node).Span
	msg := "value's type does not match the expected type here"
	rb := diag.ReportError(c.Reporter, diag.TypeMismatch, sp, msg)
	if rb != nil {
		if h := c.Store.Header(want); h != nil && !h.Span.Empty() {
			rb = rb.WithNote(h.Span, "expected type declared here")
		}
		if h := c.Store.Header(got); h != nil && !h.Span.Empty() {
			rb = rb.WithNote(h.Span, "value's type resolved here")
		}
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}

func (c *Checker) missingDefault(pd *ast.Decl) error {
	msg := "parameter needs a default value: an earlier parameter already has one"
	if rb := diag.ReportError(c.Reporter, diag.TypeMissingDefaultArg, pd.Span, msg); rb != nil {
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}
