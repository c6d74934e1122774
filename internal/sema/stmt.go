package sema

import (
	"fmt"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
)

func (c *Checker) checkStmt(d *analysis.Driver, node ast.Index) error {
	s := c.Store.Stmt(node)
	switch s.Kind {
	case ast.StmtBlock:
		for _, item := range c.Store.ItemsOf(s.Items) {
			if err := d.Require(item, ast.PropType); err != nil {
				return err
			}
		}
		return nil
	case ast.StmtExpr:
		return d.Require(s.Expr, ast.PropType)
	case ast.StmtIf:
		if err := c.requireBool(d, s.Expr); err != nil {
			return err
		}
		if err := d.Require(s.Then, ast.PropType); err != nil {
			return err
		}
		if s.Else != ast.Undefined {
			return d.Require(s.Else, ast.PropType)
		}
		return nil
	case ast.StmtWhile:
		if err := c.requireBool(d, s.Expr); err != nil {
			return err
		}
		return d.Require(s.Body, ast.PropType)
	case ast.StmtForIn:
		return c.checkForIn(d, s)
	case ast.StmtBreak, ast.StmtContinue:
		return nil
	case ast.StmtReturn:
		return c.checkReturn(d, node, s)
	default:
		return nil
	}
}

func (c *Checker) requireBool(d *analysis.Driver, expr ast.Index) error {
	if err := c.requireWithHint(d, expr, c.basicType(ast.BasicBool)); err != nil {
		return err
	}
	t := c.typeOf(expr)
	if t == nil || t.Kind != ast.TypeBasic || t.Basic != ast.BasicBool {
		return c.notBool(expr)
	}
	return nil
}

func (c *Checker) checkForIn(d *analysis.Driver, s *ast.Stmt) error {
	if err := d.Require(s.Iterable, ast.PropType); err != nil {
		return err
	}
	iterT := c.typeOf(s.Iterable)
	if iterT == nil {
		return c.notIterable(s.Iterable)
	}
	elem, ok := elemTypeOf(iterT)
	if !ok {
		return c.notIterable(s.Iterable)
	}
	loopDecl := c.Store.MustDecl(s.LoopVar)
	if loopDecl.Type == ast.Undefined {
		loopDecl.Type = elem
	} else if err := d.Require(loopDecl.Type, ast.PropType); err != nil {
		return err
	} else if !c.typesEqual(loopDecl.Type, elem) {
		return c.mismatch(s.LoopVar, loopDecl.Type, elem)
	}
	return d.Require(s.Body, ast.PropType)
}

// checkReturn finds the function a return statement belongs to by
// walking the scope chain through ast.Scope.Owner, rather than being
// handed the enclosing DeclFunc by a caller — checkStmt's dispatch is
// driven by the analysis driver from whatever node first requires
// PropType on it, which need not be a top-down walk starting at the
// function.
func (c *Checker) checkReturn(d *analysis.Driver, node ast.Index, s *ast.Stmt) error {
	fn, ok := c.enclosingDecl(c.Names.ParentScope(node), ast.DeclFunc)
	if !ok {
		return c.returnOutsideFunc(node)
	}
	fnDecl := c.Store.MustDecl(fn)
	returnsVoid := fnDecl.ReturnType == ast.Undefined || isVoidOrNoreturn(c.Store.Type(fnDecl.ReturnType))

	if s.Expr == ast.Undefined {
		if !returnsVoid {
			return c.mismatch(node, fnDecl.ReturnType, ast.Undefined)
		}
		return nil
	}
	if returnsVoid {
		if fnDecl.ReturnType != ast.Undefined && c.Store.Type(fnDecl.ReturnType).Basic == ast.BasicNoreturn {
			return c.returnInNoreturn(node)
		}
		return c.returnInVoid(node)
	}
	if err := c.requireWithHint(d, s.Expr, fnDecl.ReturnType); err != nil {
		return err
	}
	if !c.assignable(fnDecl.ReturnType, c.resolvedTypeIndex(s.Expr), s.Expr) {
		return c.mismatch(s.Expr, fnDecl.ReturnType, c.resolvedTypeIndex(s.Expr))
	}
	return nil
}

func isVoidOrNoreturn(t *ast.TypeNode) bool {
	return t != nil && t.Kind == ast.TypeBasic && t.Basic.IsNoreturnOrVoid()
}

func (c *Checker) notBool(node ast.Index) error {
	return c.reportSimple(node, diag.TypeMismatch, "expression must have type bool here")
}

func (c *Checker) notIterable(node ast.Index) error {
	return c.reportSimple(node, diag.TypeMismatch, "for-in source must be a slice, static array, or pointer")
}

func (c *Checker) returnOutsideFunc(node ast.Index) error {
	return c.reportSimple(node, diag.TypeMismatch, "return statement outside of any function")
}

func (c *Checker) returnInVoid(node ast.Index) error {
	return c.reportSimple(node, diag.TypeMismatch, "returned a value from a void function")
}

func (c *Checker) returnInNoreturn(node ast.Index) error {
	return c.reportSimple(node, diag.TypeMismatch, "returned from a noreturn function")
}

func (c *Checker) reportSimple(node ast.Index, code diag.Code, msg string) error {
	sp := c.Store.Header(node).Span
	if rb := diag.ReportError(c.Reporter, code, sp, msg); rb != nil {
		rb.Emit()
	}
	return fmt.Errorf("%s", msg)
}
