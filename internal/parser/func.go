package parser

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

// finishFuncDecl parses a function declaration once its return type
// and name have already been consumed: `ReturnType name<T>(params)
// #inline { body }`. There is no `fn` keyword in this grammar; a
// function declaration reads exactly like a variable declaration whose
// "initializer" happens to be a parameter list and a block.
func (p *Parser) finishFuncDecl(mods declModifiers, retType ast.Index, nameID intern.ID, nameSpan source.Span) ast.Index {
	tparams := p.parseOptionalTemplateParams()
	p.expect(token.LParen, diag.SynExpectedToken, "expected '(' to open parameter list")
	var params []ast.Index
	seenVariadic := false
	for !p.at(token.RParen) && !p.at(token.EOF) {
		param := p.parseParam()
		if d := p.store.Decl(param); d != nil && d.Flags.Has(ast.FlagVariadicParam) {
			if seenVariadic {
				p.err(diag.SynDuplicateVariadic, "a function may have at most one variadic parameter")
			}
			seenVariadic = true
		}
		params = append(params, param)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	closeParen, _ := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close parameter list")

	flags := mods.flags()
	if p.consumeDirective("inline") {
		flags |= ast.FlagIsInline
	}

	var body ast.Index
	var end source.Span
	if p.at(token.Semicolon) {
		end = p.advance().Span
	} else {
		// The body is parsed with no effective attributes, so none of
		// them reach declarations inside it; they are restored before
		// this declaration snapshots them below.
		saved := p.attrs.effective
		p.attrs.effective = nil
		body = p.parseBlock()
		p.attrs.effective = saved
		end = p.store.Header(body).Span
	}

	start := p.store.Header(retType).Span
	if mods.has {
		start = mods.span
	}
	sp := start.Cover(nameSpan).Cover(closeParen.Span).Cover(end)
	scope := p.store.NewScope(ast.ScopeLocal, 0, "func")
	d := ast.Decl{
		Header: ast.Header{Span: sp, Flags: flags}, Kind: ast.DeclFunc, Name: nameID,
		ReturnType: retType, Params: p.store.AppendItems(params...), TemplateParams: tparams,
		Body: body, Scope: scope,
	}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

// consumeDirective consumes a `#name` directive if present, reporting
// nothing and leaving the stream untouched otherwise.
func (p *Parser) consumeDirective(name string) bool {
	if !p.at(token.Hash) {
		return false
	}
	tok2 := p.lx.Peek2()
	if tok2.Kind != token.Ident || tok2.Text != name {
		return false
	}
	p.advance() // '#'
	p.advance() // name
	return true
}

func (p *Parser) parseParam() ast.Index {
	if p.at(token.DotDotDot) {
		tok := p.advance()
		return p.store.AllocDecl(ast.Decl{Header: ast.Header{Span: tok.Span, Flags: ast.FlagVariadicParam}, Kind: ast.DeclParam})
	}
	var flags ast.Flags
	if p.at(token.KwMut) {
		p.advance()
		flags |= ast.FlagIsMut
	}
	ty := p.parseType()
	nameID, nameSpan, ok := p.expectIdent()
	sp := p.store.Header(ty).Span
	if ok {
		sp = sp.Cover(nameSpan)
	}
	d := ast.Decl{Header: ast.Header{Span: sp, Flags: flags}, Kind: ast.DeclParam, Name: nameID, Type: ty}
	if p.at(token.Assign) {
		p.advance()
		d.Init = p.parseExpr(bpAssign, false)
		d.Span = d.Span.Cover(p.store.Header(d.Init).Span)
	}
	return p.store.AllocDecl(d)
}
