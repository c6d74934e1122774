package parser

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

// parseTopItem dispatches one top-level construct, applying the
// leading attribute run (if any) as immediate attributes to whatever
// single declaration follows (§4.4's bare "@a @b <decl>" form). The
// scope-level ("@a:") and no_scope-block ("@a { ... }") forms are
// recognized right after the attribute run, before dispatch.
func (p *Parser) parseTopItem() (ast.Index, bool) {
	attrs := p.parseAttrs()
	if len(attrs) > 0 {
		if p.at(token.Colon) {
			p.advance()
			p.attrs.pushScope(attrs) // dropped only at the enclosing scope's own popScope
			return ast.Undefined, true
		}
		if p.at(token.LBrace) {
			return p.parseAttrBlock(attrs)
		}
	}
	mark := p.attrs.pushScope(attrs)
	idx, ok := p.parseDeclByKeyword()
	p.attrs.popScope(mark)
	return idx, ok
}

// parseAttrBlock parses the `@a { <decls> } ` no_scope form: attrs are
// effective for every item inside the braces and dropped on exit.
func (p *Parser) parseAttrBlock(attrs []pendingAttr) (ast.Index, bool) {
	mark := p.attrs.pushScope(attrs)
	defer p.attrs.popScope(mark)
	open, _ := p.expect(token.LBrace, diag.SynExpectedToken, "expected '{' after attribute list")
	var items []ast.Index
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		idx, ok := p.parseTopItem()
		if ok {
			if idx != ast.Undefined {
				items = append(items, idx)
			}
		} else {
			p.resyncTop()
		}
	}
	end, _ := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close attribute block")
	sp := open.Span.Cover(end.Span)
	// A no_scope block is not itself a declaration; it is represented
	// as a DeclStaticIf-shaped passthrough with an always-true
	// condition so its item list can flow through the same static-
	// expansion item-list machinery (§4.6) as everything else, without
	// inventing a dedicated "no_scope" Decl kind for what is purely a
	// parse-time attribute-lifetime device (§3's no_scope has no
	// identifier map to populate, so it need not be its own AST kind).
	return p.store.AllocDecl(ast.Decl{
		Header: ast.Header{Span: sp}, Kind: ast.DeclStaticIf,
		Cond: ast.Undefined, Then: p.store.AppendItems(items...),
	}), true
}

// parseDeclByKeyword dispatches by the current keyword/shape to one of
// the declaration parsers.
func (p *Parser) parseDeclByKeyword() (ast.Index, bool) {
	switch p.peek().Kind {
	case token.KwModule:
		return p.parseModuleDecl(), true
	case token.KwImport:
		return p.parseImportDecl(), true
	case token.KwAlias:
		return p.parseAliasDecl(), true
	case token.KwStruct, token.KwUnion:
		return p.parseStructDecl(), true
	case token.KwEnum:
		return p.parseEnumDecl(), true
	case token.Hash:
		return p.parseStaticItem(nil), true
	case token.KwPub, token.KwExtern, token.KwMut, token.KwConst:
		mods := p.parseModifiers()
		return p.parseVarOrFunc(mods), true
	case token.Ident:
		return p.parseVarOrFunc(declModifiers{}), true
	default:
		p.err(diag.SynUnexpectedToken, "unexpected top-level construct, got "+p.peek().Text)
		return ast.Undefined, false
	}
}

func (p *Parser) parseModuleDecl() ast.Index {
	start := p.advance() // 'module'
	path, end := p.parseDottedPath()
	p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after module declaration")
	sp := start.Span.Cover(end)
	scope := p.store.NewScope(ast.ScopeGlobal, 0, "module")
	d := ast.Decl{Header: ast.Header{Span: sp}, Kind: ast.DeclModule, Path: path, Scope: scope}
	if len(path) > 0 {
		d.Name = path[len(path)-1]
	}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

func (p *Parser) parseImportDecl() ast.Index {
	start := p.advance() // 'import'
	path, end := p.parseDottedPath()
	d := ast.Decl{Header: ast.Header{Span: start.Span.Cover(end)}, Kind: ast.DeclImport, Path: path}
	if len(path) > 0 {
		d.Name = path[len(path)-1]
	}
	if p.at(token.KwAs) {
		p.advance()
		aliasName, aliasSpan, ok := p.expectIdent()
		if ok {
			d.Name = aliasName
			d.Span = d.Span.Cover(aliasSpan)
		}
	}
	end2, _ := p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after import declaration")
	d.Span = d.Span.Cover(end2.Span)
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

func (p *Parser) parseDottedPath() ([]intern.ID, source.Span) {
	var path []intern.ID
	nameID, sp, ok := p.expectIdent()
	if !ok {
		return nil, sp
	}
	path = append(path, nameID)
	for p.at(token.Dot) {
		p.advance()
		nameID, seg, ok := p.expectIdent()
		if !ok {
			break
		}
		path = append(path, nameID)
		sp = sp.Cover(seg)
	}
	return path, sp
}

func (p *Parser) parseAliasDecl() ast.Index {
	start := p.advance() // 'alias'
	nameID, nameSpan, _ := p.expectIdent()
	tparams := p.parseOptionalTemplateParams()
	p.expect(token.Assign, diag.SynExpectedToken, "expected '=' in alias declaration")
	init := p.parseExpr(bpAssign, true)
	end, _ := p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after alias declaration")
	sp := start.Span.Cover(nameSpan).Cover(end.Span)
	d := ast.Decl{Header: ast.Header{Span: sp}, Kind: ast.DeclAlias, Name: nameID, Init: init, TemplateParams: tparams}
	d.AttrInfo = p.attrs.makeAttrInfo(p.store)
	return p.store.AllocDecl(d)
}

// parseOptionalTemplateParams parses an optional `<T, U, ...>` template
// parameter list following a struct/func/alias name. There is no
// concrete syntax for this in the distilled grammar beyond "optionally
// templated" (§4.4); angle-bracket delimiters are the conventional
// choice this parser makes, each parameter a bare name resolved later
// to a type-meta or value template parameter by context (§4.3's
// basic-alias-meta/type-meta kinds).
func (p *Parser) parseOptionalTemplateParams() arena.Span {
	if !p.at(token.Lt) {
		return arena.Span{}
	}
	p.advance()
	var params []ast.Index
	for !p.at(token.Gt) && !p.at(token.EOF) {
		nameID, nameSpan, ok := p.expectIdent()
		if !ok {
			break
		}
		params = append(params, p.store.AllocDecl(ast.Decl{Header: ast.Header{Span: nameSpan}, Kind: ast.DeclTemplateParam, Name: nameID}))
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.Gt, diag.SynUnclosedDelimiter, "expected '>' to close template parameter list")
	return p.store.AppendItems(params...)
}
