package parser

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/token"
)

// parseStaticItem parses one of the four static-conditional item kinds
// (§4.4/§4.6): #if/#version/#foreach/#assert. These always parse into
// ordinary Decl nodes; selecting a branch or cloning a template body
// is the static-expansion sweep's job, never performed here.
func (p *Parser) parseStaticItem(attrs []pendingAttr) ast.Index {
	mark := p.attrs.pushScope(attrs)
	defer p.attrs.popScope(mark)

	hash := p.advance() // '#'
	if !p.at(token.Ident) {
		p.err(diag.SynExpectIdentifier, "expected a static directive name after '#'")
		return ast.Undefined
	}
	switch p.peek().Text {
	case "if":
		p.advance()
		return p.parseStaticIf(hash)
	case "version":
		p.advance()
		return p.parseStaticVersion(hash)
	case "foreach":
		p.advance()
		return p.parseStaticForeach(hash)
	case "assert":
		p.advance()
		return p.parseStaticAssert(hash)
	default:
		tok := p.advance()
		p.errAt(diag.SynUnexpectedToken, tok.Span, "unknown static directive '#"+tok.Text+"'")
		return ast.Undefined
	}
}

// parseStaticBody parses a `{ items }` body belonging to a static
// conditional, replaying whichever item dispatch (declaration or
// statement) the enclosing body is already using (§4.4's static
// conditionals appear in every kind of item list: module, struct,
// enum, and function-body alike).
func (p *Parser) parseStaticBody() arena.Span {
	p.expect(token.LBrace, diag.SynExpectedToken, "expected '{' to open static-conditional body")
	var items []ast.Index
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		idx := p.parseGenericItem()
		if idx != ast.Undefined {
			items = append(items, idx)
		}
		if p.opts.enough(p.errs) {
			break
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close static-conditional body")
	return p.store.AppendItems(items...)
}

func (p *Parser) parseGenericItem() ast.Index {
	if p.kind == bodyKindBlock {
		return p.parseBlockItem()
	}
	idx, ok := p.parseTopItem()
	if !ok {
		p.resyncTop()
		return ast.Undefined
	}
	return idx
}

func (p *Parser) parseStaticIf(hash token.Token) ast.Index {
	p.expect(token.LParen, diag.SynExpectedToken, "expected '(' after '#if'")
	cond := p.parseExpr(0, false)
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after '#if' condition")
	thenItems := p.parseStaticBody()
	var elseItems arena.Span
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.Hash) {
			nested := p.parseStaticItem(nil)
			elseItems = p.store.AppendItems(nested)
		} else {
			elseItems = p.parseStaticBody()
		}
	}
	sp := hash.Span.Cover(p.lastTok.Span)
	d := ast.Decl{Header: ast.Header{Span: sp}, Kind: ast.DeclStaticIf, Cond: cond, Then: thenItems, Else: elseItems}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

func (p *Parser) parseStaticVersion(hash token.Token) ast.Index {
	p.expect(token.LParen, diag.SynExpectedToken, "expected '(' after '#version'")
	versionID, versionSpan, ok := p.expectIdent()
	if ok && !intern.IsBuiltinVersion(versionID) {
		p.errAt(diag.ExpUnknownVersionID, versionSpan, "unrecognized '#version' identifier")
	}
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after '#version' identifier")
	thenItems := p.parseStaticBody()
	var elseItems arena.Span
	if p.at(token.KwElse) {
		p.advance()
		elseItems = p.parseStaticBody()
	}
	sp := hash.Span.Cover(p.lastTok.Span)
	d := ast.Decl{Header: ast.Header{Span: sp}, Kind: ast.DeclStaticVersion, VersionID: versionID, Then: thenItems, Else: elseItems}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

func (p *Parser) parseStaticForeach(hash token.Token) ast.Index {
	p.expect(token.LParen, diag.SynExpectedToken, "expected '(' after '#foreach'")
	keyName, _, _ := p.expectIdent()
	p.expect(token.Comma, diag.SynExpectedToken, "expected ',' between '#foreach' bindings")
	valueName, _, _ := p.expectIdent()
	p.expect(token.KwIn, diag.SynExpectedToken, "expected 'in' in '#foreach' header")
	iterable := p.parseExpr(0, false)
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after '#foreach' header")
	body := p.parseStaticBody()
	sp := hash.Span.Cover(p.lastTok.Span)
	d := ast.Decl{
		Header: ast.Header{Span: sp}, Kind: ast.DeclStaticForeach,
		KeyName: keyName, ValueName: valueName, Iterable: iterable, ForBody: body,
	}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

func (p *Parser) parseStaticAssert(hash token.Token) ast.Index {
	p.expect(token.LParen, diag.SynExpectedToken, "expected '(' after '#assert'")
	cond := p.parseExpr(0, false)
	var msg ast.Index
	if p.at(token.Comma) {
		p.advance()
		msg = p.parseExpr(0, false)
	}
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after '#assert' arguments")
	end, _ := p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after '#assert'")
	sp := hash.Span.Cover(end.Span)
	d := ast.Decl{Header: ast.Header{Span: sp}, Kind: ast.DeclStaticAssert, Cond: cond, Message: msg}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}
