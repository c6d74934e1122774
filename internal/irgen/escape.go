package irgen

import "github.com/sdvcn/vox/internal/ast"

// addrTakenLocals finds every DeclVar/DeclParam whose address is taken
// (`&x`) anywhere inside body, so genFunc knows up front which locals
// need a real stack slot instead of being tracked purely through the
// SSA read_variable/write_variable primitives. This is the one scan
// irgen runs before walking a function body — every other construct
// lowers in a single top-to-bottom pass.
func addrTakenLocals(store *ast.Store, names Registrar, body ast.Index) map[ast.Index]bool {
	out := make(map[ast.Index]bool)

	var walkExpr func(idx ast.Index)
	var walkStmt func(idx ast.Index)

	walkExpr = func(idx ast.Index) {
		if idx == ast.Undefined || idx.Kind() != ast.KindExpr {
			return
		}
		e := store.Expr(idx)
		switch e.Kind {
		case ast.ExprUnary:
			if e.UnOp == ast.UnAddrOf {
				if op := store.Expr(e.Operand); op != nil && op.Kind == ast.ExprNameUse {
					if target, ok := names.Target(e.Operand); ok {
						out[target] = true
					}
				}
			}
			walkExpr(e.Operand)
		case ast.ExprBinary:
			walkExpr(e.LHS)
			walkExpr(e.RHS)
		case ast.ExprAssign:
			walkExpr(e.LHS)
			walkExpr(e.RHS)
		case ast.ExprCall:
			walkExpr(e.Callee)
			for _, a := range store.ItemsOf(e.Args) {
				walkExpr(a)
			}
		case ast.ExprIndex:
			walkExpr(e.Base)
			walkExpr(e.Subscript)
		case ast.ExprMember:
			walkExpr(e.Base)
		case ast.ExprCast:
			walkExpr(e.Operand)
		case ast.ExprArrayLit:
			for _, a := range store.ItemsOf(e.Args) {
				walkExpr(a)
			}
		case ast.ExprFStringLit:
			for _, p := range store.ItemsOf(e.Parts) {
				walkExpr(p)
			}
		}
	}

	walkStmt = func(idx ast.Index) {
		if idx == ast.Undefined || idx.Kind() != ast.KindStmt {
			return
		}
		s := store.Stmt(idx)
		switch s.Kind {
		case ast.StmtBlock:
			for _, item := range store.ItemsOf(s.Items) {
				switch item.Kind() {
				case ast.KindStmt:
					walkStmt(item)
				case ast.KindExpr:
					walkExpr(item)
				case ast.KindDecl:
					if d := store.Decl(item); d != nil {
						walkExpr(d.Init)
					}
				}
			}
		case ast.StmtExpr:
			walkExpr(s.Expr)
		case ast.StmtIf:
			walkExpr(s.Expr)
			walkStmt(s.Then)
			walkStmt(s.Else)
		case ast.StmtWhile:
			walkExpr(s.Expr)
			walkStmt(s.Body)
		case ast.StmtForIn:
			walkExpr(s.Iterable)
			walkStmt(s.Body)
		case ast.StmtReturn:
			walkExpr(s.Expr)
		}
	}

	walkStmt(body)
	return out
}
