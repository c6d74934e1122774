package parser

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

// declModifiers accumulates the leading `pub`/`extern`/`mut`/`const`
// run that can precede a var or func declaration, in any order and any
// combination, plus the span they collectively cover.
type declModifiers struct {
	pub, extern, mut, isConst bool
	span                      source.Span
	has                       bool
}

func (m *declModifiers) take(tok token.Token) {
	if m.has {
		m.span = m.span.Cover(tok.Span)
	} else {
		m.span = tok.Span
		m.has = true
	}
}

func (p *Parser) parseModifiers() declModifiers {
	var m declModifiers
	for {
		switch p.peek().Kind {
		case token.KwPub:
			m.take(p.advance())
			m.pub = true
		case token.KwExtern:
			m.take(p.advance())
			m.extern = true
		case token.KwMut:
			m.take(p.advance())
			m.mut = true
		case token.KwConst:
			m.take(p.advance())
			m.isConst = true
		default:
			return m
		}
	}
}

func (m declModifiers) flags() ast.Flags {
	var f ast.Flags
	if m.pub {
		f |= ast.FlagIsPub
	}
	if m.extern {
		f |= ast.FlagIsExtern
	}
	if m.mut {
		f |= ast.FlagIsMut
	}
	if m.isConst {
		f |= ast.FlagIsConst
	}
	return f
}

// parseVarOrFunc parses a declaration starting `Type ident ...` once
// any leading modifiers have already been consumed: a `(` or `<`
// following the name means a function, anything else a variable.
func (p *Parser) parseVarOrFunc(mods declModifiers) ast.Index {
	ty := p.parseType()
	nameID, nameSpan, ok := p.expectIdent()
	if !ok {
		return ast.Undefined
	}
	if p.at(token.LParen) || p.at(token.Lt) {
		return p.finishFuncDecl(mods, ty, nameID, nameSpan)
	}
	return p.finishVarDecl(mods, ty, nameID, nameSpan)
}

func (p *Parser) finishVarDecl(mods declModifiers, ty ast.Index, nameID intern.ID, nameSpan source.Span) ast.Index {
	start := p.store.Header(ty).Span
	if mods.has {
		start = mods.span
	}
	d := ast.Decl{Header: ast.Header{Span: start.Cover(nameSpan), Flags: mods.flags()}, Kind: ast.DeclVar, Name: nameID, Type: ty}
	if p.at(token.Assign) {
		p.advance()
		d.Init = p.parseExpr(bpAssign, false)
	}
	end, _ := p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after variable declaration")
	d.Span = d.Span.Cover(end.Span)
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

// parseVarDecl is the local-declaration entry point referenced from a
// block's item dispatch: it consumes any leading modifiers itself,
// since `mut`/`const` only ever precede a local declaration (there is
// no statement form starting with either keyword).
func (p *Parser) parseVarDecl(attrs []pendingAttr) ast.Index {
	mark := p.attrs.pushScope(attrs)
	defer p.attrs.popScope(mark)
	mods := p.parseModifiers()
	ty := p.parseType()
	nameID, nameSpan, ok := p.expectIdent()
	if !ok {
		return ast.Undefined
	}
	return p.finishVarDecl(mods, ty, nameID, nameSpan)
}
