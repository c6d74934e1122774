package parser

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/token"
)

// parseType parses a type position: a base (a name — basic scalar
// names and struct/enum names are lexically identical, both resolved
// later by C7 against the pre-seeded root scope per token/doc.go)
// followed by any number of postfix constructors, or a parenthesized
// function-signature type `(T, ...) -> T`. There is no `fn` keyword in
// this grammar (dropped along with surge's concurrency surface), so a
// callback/function-value type is written the same way a function's
// own signature reads conceptually: parameter types, then `->`.
func (p *Parser) parseType() ast.Index {
	switch {
	case p.at(token.LParen):
		return p.parseTypePostfix(p.parseFuncSigType())
	case p.at(token.Ident):
		tok := p.advance()
		nameID := p.intern(tok)
		nameUse := p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprNameUse, NameID: nameID})
		base := p.store.AllocType(ast.TypeNode{Header: ast.Header{Span: tok.Span}, Kind: ast.TypeNameUse, NameUse: nameUse})
		return p.parseTypePostfix(base)
	default:
		p.err(diag.SynExpectType, "expected a type, got "+p.peek().Text)
		return ast.Undefined
	}
}

// parseTypePostfix consumes any run of `*` (pointer) and `[...]`
// (slice or static array) suffixes, left-associatively.
func (p *Parser) parseTypePostfix(base ast.Index) ast.Index {
	for {
		switch {
		case p.at(token.Star):
			tok := p.advance()
			sp := p.store.Header(base).Span.Cover(tok.Span)
			base = p.store.AllocType(ast.TypeNode{Header: ast.Header{Span: sp}, Kind: ast.TypePointer, Elem: base})
		case p.at(token.LBracket):
			p.advance()
			if p.at(token.RBracket) {
				end := p.advance()
				sp := p.store.Header(base).Span.Cover(end.Span)
				base = p.store.AllocType(ast.TypeNode{Header: ast.Header{Span: sp}, Kind: ast.TypeSlice, Elem: base})
				continue
			}
			length := p.parseExpr(0, false)
			end, _ := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close array length")
			sp := p.store.Header(base).Span.Cover(end.Span)
			base = p.store.AllocType(ast.TypeNode{Header: ast.Header{Span: sp}, Kind: ast.TypeStaticArray, Elem: base, ArrayLen: length})
		default:
			return base
		}
	}
}

func (p *Parser) parseFuncSigType() ast.Index {
	open := p.advance() // '('
	var params []ast.Index
	variadic := false
	for !p.at(token.RParen) && !p.at(token.EOF) {
		if p.at(token.DotDotDot) {
			p.advance()
			variadic = true
			break
		}
		params = append(params, p.parseType())
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close function-signature parameter list")
	p.expect(token.Arrow, diag.SynExpectedToken, "expected '->' in function-signature type")
	ret := p.parseType()
	sp := open.Span
	if ret != ast.Undefined {
		sp = sp.Cover(p.store.Header(ret).Span)
	}
	return p.store.AllocType(ast.TypeNode{
		Header:     ast.Header{Span: sp},
		Kind:       ast.TypeFuncSig,
		Params:     p.store.AppendItems(params...),
		Variadic:   variadic,
		ReturnType: ret,
	})
}
