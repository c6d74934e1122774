package parser

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

// parseEnumDecl dispatches across §6's four enum syntactic shapes:
//
//	enum X;                a type, forward-declared (opaque)
//	enum X = expr;          a manifest constant, inferred type
//	enum T X = expr;        a manifest constant, explicit type T
//	enum [X] [: T] { ... }  a type, with optional name/base/members
//
// The ambiguity between shape 2/3's leading identifier and shape 4's
// optional name is resolved by reading one identifier unconditionally
// (when present) and then branching on what follows it.
func (p *Parser) parseEnumDecl() ast.Index {
	start := p.advance() // 'enum'

	if p.at(token.Colon) || p.at(token.LBrace) {
		return p.finishEnumType(start, intern.NoID, start.Span)
	}

	nameID, nameSpan, ok := p.expectIdent()
	if !ok {
		p.err(diag.SynBadEnumShape, "expected an identifier after 'enum'")
		return ast.Undefined
	}

	switch {
	case p.at(token.Semicolon):
		end := p.advance()
		d := ast.Decl{Header: ast.Header{Span: start.Span.Cover(end.Span), Flags: ast.FlagIsOpaque}, Kind: ast.DeclEnumType, Name: nameID}
		d.AttrInfo = p.attrs.makeAttrInfo(p.store)
		return p.store.AllocDecl(d)

	case p.at(token.Assign):
		p.advance()
		init := p.parseExpr(bpAssign, false)
		end, _ := p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after enum constant")
		d := ast.Decl{Header: ast.Header{Span: start.Span.Cover(end.Span)}, Kind: ast.DeclEnumConst, Name: nameID, Init: init}
		d.AttrInfo = p.attrs.makeAttrInfo(p.store)
		return p.store.AllocDecl(d)

	case p.at(token.Colon) || p.at(token.LBrace):
		return p.finishEnumType(start, nameID, start.Span.Cover(nameSpan))

	default:
		return p.finishEnumConstWithType(start, nameID, nameSpan)
	}
}

// finishEnumConstWithType handles shape 3: the identifier already read
// is the start of an explicit type, followed by any `*`/`[]` postfixes,
// the constant's own name, `=`, and its value expression.
func (p *Parser) finishEnumConstWithType(start token.Token, typeNameID intern.ID, typeNameSpan source.Span) ast.Index {
	nameUse := p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: typeNameSpan}, Kind: ast.ExprNameUse, NameID: typeNameID})
	base := p.store.AllocType(ast.TypeNode{Header: ast.Header{Span: typeNameSpan}, Kind: ast.TypeNameUse, NameUse: nameUse})
	ty := p.parseTypePostfix(base)

	constName, _, ok := p.expectIdent()
	if !ok {
		p.err(diag.SynBadEnumShape, "expected a constant name after the explicit enum type")
		return ast.Undefined
	}
	p.expect(token.Assign, diag.SynExpectedToken, "expected '=' in enum constant declaration")
	init := p.parseExpr(bpAssign, false)
	end, _ := p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after enum constant")
	d := ast.Decl{Header: ast.Header{Span: start.Span.Cover(end.Span)}, Kind: ast.DeclEnumConst, Name: constName, Type: ty, Init: init}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

// finishEnumType handles shape 4 once 'enum' and any optional name have
// already been consumed.
func (p *Parser) finishEnumType(start token.Token, nameID intern.ID, sp source.Span) ast.Index {
	var baseType ast.Index
	if p.at(token.Colon) {
		p.advance()
		baseType = p.parseType()
	}
	scope := p.store.NewScope(ast.ScopeMember, 0, "enum")
	open, _ := p.expect(token.LBrace, diag.SynExpectedToken, "expected '{' to open enum body")
	var members []ast.Index
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.Hash) {
			members = append(members, p.parseStaticItem(nil))
		} else {
			members = append(members, p.parseEnumMember())
		}
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close enum body")
	sp = sp.Cover(open.Span).Cover(end.Span)
	d := ast.Decl{
		Header: ast.Header{Span: sp}, Kind: ast.DeclEnumType, Name: nameID,
		BaseType: baseType, Members: p.store.AppendItems(members...), Scope: scope,
	}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

func (p *Parser) parseEnumMember() ast.Index {
	nameID, nameSpan, ok := p.expectIdent()
	if !ok {
		return ast.Undefined
	}
	d := ast.Decl{Header: ast.Header{Span: nameSpan}, Kind: ast.DeclEnumMember, Name: nameID}
	if p.at(token.Assign) {
		p.advance()
		d.Init = p.parseExpr(bpAssign, false)
		d.Span = d.Span.Cover(p.store.Header(d.Init).Span)
	}
	return p.store.AllocDecl(d)
}
