package parser

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/token"
)

// parseStructDecl parses both `struct` and `union` shapes, which share
// every production except the FlagIsUnion bit distinguishing them.
func (p *Parser) parseStructDecl() ast.Index {
	kw := p.advance() // 'struct' or 'union'
	var flags ast.Flags
	if kw.Kind == token.KwUnion {
		flags |= ast.FlagIsUnion
	}
	nameID, nameSpan, ok := p.expectIdent()
	sp := kw.Span
	if ok {
		sp = sp.Cover(nameSpan)
	}
	tparams := p.parseOptionalTemplateParams()

	if p.at(token.Semicolon) {
		end := p.advance()
		flags |= ast.FlagIsOpaque
		d := ast.Decl{Header: ast.Header{Span: sp.Cover(end.Span), Flags: flags}, Kind: ast.DeclStruct, Name: nameID, TemplateParams: tparams}
		d.AttrInfo = p.attrs.makeAttrInfo(p.store)
		return p.store.AllocDecl(d)
	}

	scope := p.store.NewScope(ast.ScopeMember, 0, "struct")
	open, _ := p.expect(token.LBrace, diag.SynExpectedToken, "expected '{' to open struct body")
	prevKind := p.kind
	p.kind = bodyKindTop
	var members []ast.Index
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		members = append(members, p.parseStructMember())
		if p.opts.enough(p.errs) {
			break
		}
	}
	p.kind = prevKind
	end, _ := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close struct body")
	sp = sp.Cover(open.Span).Cover(end.Span)

	d := ast.Decl{
		Header: ast.Header{Span: sp, Flags: flags}, Kind: ast.DeclStruct, Name: nameID,
		TemplateParams: tparams, Members: p.store.AppendItems(members...), Scope: scope,
	}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

// parseStructMember parses one struct/union body item: a field, or a
// static-conditional item that will expand to fields later.
func (p *Parser) parseStructMember() ast.Index {
	if p.at(token.Hash) {
		return p.parseStaticItem(nil)
	}
	attrs := p.parseAttrs()
	mark := p.attrs.pushScope(attrs)
	defer p.attrs.popScope(mark)

	ty := p.parseType()
	nameID, nameSpan, ok := p.expectIdent()
	sp := p.store.Header(ty).Span
	if ok {
		sp = sp.Cover(nameSpan)
	}
	d := ast.Decl{Header: ast.Header{Span: sp}, Kind: ast.DeclField, Name: nameID, Type: ty}
	if p.at(token.Assign) {
		p.advance()
		d.Init = p.parseExpr(bpAssign, false)
	}
	end, _ := p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after field declaration")
	d.Span = d.Span.Cover(end.Span)
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}
