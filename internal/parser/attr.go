package parser

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

// pendingAttr is one `@name(args...)` parsed off the token stream
// before it is known whether it decorates a single decl (immediate),
// every decl to the end of the current scope ("@a:"), or opens a
// no_scope block ("@a { ... }").
type pendingAttr struct {
	span   source.Span
	nameID intern.ID
	args   []ast.Index
	effect ast.AttrEffect
}

// attrStack is the effective-attribute stack of §4.4: every entry
// currently in force, in push order. numImmediateAttributes and
// numScopeAttributes (the invariant's other two counters) are not
// tracked separately here because this parser never needs to answer
// "how many of the top entries are immediate-only" — an immediate
// run is always pushed and popped around exactly one declaration by
// its caller, so the stack's own length bracketing does the job.
type attrStack struct {
	effective []pendingAttr
}

func (s *attrStack) init() { s.effective = nil }

// parseAttrs parses zero or more leading `@name(...)` tokens.
func (p *Parser) parseAttrs() []pendingAttr {
	var attrs []pendingAttr
	for p.at(token.At) {
		start := p.advance().Span
		nameID, nameSpan, ok := p.expectIdent()
		if !ok {
			continue
		}
		pa := pendingAttr{span: start.Cover(nameSpan), nameID: nameID}
		if p.at(token.LParen) {
			p.advance()
			for !p.at(token.RParen) && !p.at(token.EOF) {
				pa.args = append(pa.args, p.parseAttrArg())
				if p.at(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			if end, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close attribute arguments"); ok {
				pa.span = pa.span.Cover(end.Span)
			}
		}
		pa.effect = p.classifyAttrEffect(pa.nameID, pa.args)
		if pa.effect != ast.EffectGeneric {
			pa.args = pa.args[1:] // the effect records the module/syscall tag
		}
		attrs = append(attrs, pa)
	}
	return attrs
}

// parseAttrArg parses one attribute argument: either the bare `module`
// or `syscall` tag of @extern, or a literal expression.
func (p *Parser) parseAttrArg() ast.Index {
	if p.at(token.Ident) {
		tok := p.peek()
		id := p.intern(tok)
		if id == intern.Module || id == intern.Syscall {
			p.advance()
			return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprNameUse, NameID: id})
		}
	}
	return p.parseExpr(0, false)
}

func (p *Parser) classifyAttrEffect(nameID intern.ID, args []ast.Index) ast.AttrEffect {
	if nameID != intern.Extern || len(args) != 2 {
		return ast.EffectGeneric
	}
	e := p.store.Expr(args[0])
	if e == nil || e.Kind != ast.ExprNameUse {
		return ast.EffectGeneric
	}
	switch e.NameID {
	case intern.Module:
		return ast.EffectExternModule
	case intern.Syscall:
		return ast.EffectExternSyscall
	default:
		return ast.EffectGeneric
	}
}

// pushScope enters attrs as scope-level, returning the stack mark
// popScope needs to drop them again at scope end.
func (s *attrStack) pushScope(attrs []pendingAttr) int {
	mark := len(s.effective)
	s.effective = append(s.effective, attrs...)
	return mark
}

// popScope marks every attribute pushed since mark as broadcast (by
// virtue of every intervening makeDecl having already snapshotted
// them) and pops them.
func (s *attrStack) popScope(mark int) {
	s.effective = s.effective[:mark]
}

// makeAttrInfo snapshots the current effective attributes into a
// fresh attribute-info block, per §4.4's `makeDecl`.
func (s *attrStack) makeAttrInfo(store *ast.Store) ast.AttrIndex {
	if len(s.effective) == 0 {
		return 0
	}
	attrs := make([]ast.Attr, len(s.effective))
	for i, pa := range s.effective {
		attrs[i] = ast.Attr{Span: pa.span, NameID: pa.nameID, Args: pa.args, Effect: pa.effect}
	}
	return store.NewAttrInfo(attrs)
}

// withImmediateAttrs pushes attrs for the duration of body (one
// declaration) and pops them unconditionally afterward — the
// "@a @b <decl>" bare form of §4.4, which attaches to that single
// decl only.
func (p *Parser) withImmediateAttrs(attrs []pendingAttr, body func() ast.Index) ast.Index {
	mark := p.attrs.pushScope(attrs)
	defer p.attrs.popScope(mark)
	return body()
}
