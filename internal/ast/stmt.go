package ast

import "github.com/sdvcn/vox/internal/arena"

// StmtKind tags the variant of a Stmt node. Local variable
// declarations are not a Stmt kind: they parse as ordinary DeclVar
// nodes and are threaded into a block's item list alongside Stmt-kind
// entries, so the same name-registration machinery handles both
// top-level and local scopes (§4.6).
type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtExpr
	StmtIf
	StmtWhile
	StmtForIn
	StmtBreak
	StmtContinue
	StmtReturn
)

func (k StmtKind) String() string {
	names := [...]string{
		"invalid", "block", "expr", "if", "while", "for_in", "break", "continue", "return",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "stmt(?)"
}

// Stmt is the tagged union of every statement node.
type Stmt struct {
	Header
	Kind StmtKind

	Items arena.Span // block: Decl-kind (local var, static-conditional) and Stmt-kind mixed item list
	Scope ScopeIndex // block: the local scope block-scoped declarations register into

	Expr Index // expr, return(value), if/while(condition)

	Then Index // if: Stmt-kind StmtBlock taken when Expr is true
	Else Index // if: Stmt-kind StmtBlock or nested StmtIf (else-if chaining); Undefined if absent

	Body Index // while, for_in: Stmt-kind StmtBlock loop body

	LoopVar  Index // for_in: Decl-kind DeclVar bound to each element
	Iterable Index // for_in: Expr-kind range or alias-array being iterated

	Label Index // break, continue: Undefined (unlabeled loops only; no labeled-loop syntax in this grammar)
}
