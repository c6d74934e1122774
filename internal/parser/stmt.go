package parser

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/token"
)

// parseBlock parses a `{ ... }` statement block. Local variable
// declarations are not a Stmt kind (§4.6's doc on ast.Stmt): a leading
// type-then-identifier is parsed as an ordinary DeclVar and threaded
// into the block's item list alongside Stmt-kind entries.
func (p *Parser) parseBlock() ast.Index {
	open, _ := p.expect(token.LBrace, diag.SynExpectedToken, "expected '{' to open a block")
	prevKind := p.kind
	p.kind = bodyKindBlock
	var items []ast.Index
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		items = append(items, p.parseBlockItem())
		if p.opts.enough(p.errs) {
			break
		}
	}
	p.kind = prevKind
	end, _ := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close a block")
	sp := open.Span.Cover(end.Span)
	scope := p.store.NewScope(ast.ScopeLocal, 0, "block")
	return p.store.AllocStmt(ast.Stmt{Header: ast.Header{Span: sp}, Kind: ast.StmtBlock, Items: p.store.AppendItems(items...), Scope: scope})
}

func (p *Parser) parseBlockItem() ast.Index {
	if p.atAny(token.Hash) {
		return p.parseStaticItem(nil)
	}
	if p.atAny(token.KwMut, token.KwConst) {
		return p.parseVarDecl(nil)
	}
	if p.looksLikeLocalVarDecl() {
		return p.parseVarDecl(nil)
	}
	return p.parseStmt()
}

// looksLikeLocalVarDecl recognizes the leading-type-then-identifier
// shape (`i32 x = ...;`, `Foo* p;`) that distinguishes a local
// declaration from an expression statement, without consuming tokens:
// a statement can also start with a bare identifier used as a value
// (a call, an assignment), so the test is "identifier or one of its
// type-postfix forms, followed eventually by another identifier before
// any statement-ending token appears" — approximated here by peeking
// one token past the lead identifier (the lexer's Peek2) for the
// common cases, since the lexer offers no deeper lookahead.
func (p *Parser) looksLikeLocalVarDecl() bool {
	if !p.at(token.Ident) {
		return false
	}
	save := p.peek()
	tok2 := p.lx.Peek2()
	_ = save
	return tok2.Kind == token.Ident || tok2.Kind == token.Star || tok2.Kind == token.LBracket
}

func (p *Parser) parseStmt() ast.Index {
	switch p.peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwBreak:
		tok := p.advance()
		p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after 'break'")
		return p.store.AllocStmt(ast.Stmt{Header: ast.Header{Span: tok.Span}, Kind: ast.StmtBreak})
	case token.KwContinue:
		tok := p.advance()
		p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after 'continue'")
		return p.store.AllocStmt(ast.Stmt{Header: ast.Header{Span: tok.Span}, Kind: ast.StmtContinue})
	case token.KwReturn:
		return p.parseReturnStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseExprStmt() ast.Index {
	e := p.parseExpr(0, false)
	end, _ := p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after expression statement")
	sp := p.store.Header(e).Span
	if end.Span.End != 0 {
		sp = sp.Cover(end.Span)
	}
	return p.store.AllocStmt(ast.Stmt{Header: ast.Header{Span: sp}, Kind: ast.StmtExpr, Expr: e})
}

func (p *Parser) parseIfStmt() ast.Index {
	start := p.advance() // 'if'
	p.expect(token.LParen, diag.SynExpectedToken, "expected '(' after 'if'")
	cond := p.parseExpr(0, false)
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after if condition")
	then := p.parseBlock()
	st := ast.Stmt{Header: ast.Header{Span: start.Span}, Kind: ast.StmtIf, Expr: cond, Then: then}
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			st.Else = p.parseIfStmt()
		} else {
			st.Else = p.parseBlock()
		}
	}
	sp := start.Span
	if st.Else != ast.Undefined {
		sp = sp.Cover(p.store.Header(st.Else).Span)
	} else {
		sp = sp.Cover(p.store.Header(then).Span)
	}
	st.Span = sp
	return p.store.AllocStmt(st)
}

func (p *Parser) parseWhileStmt() ast.Index {
	start := p.advance() // 'while'
	p.expect(token.LParen, diag.SynExpectedToken, "expected '(' after 'while'")
	cond := p.parseExpr(0, false)
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after while condition")
	body := p.parseBlock()
	sp := start.Span.Cover(p.store.Header(body).Span)
	return p.store.AllocStmt(ast.Stmt{Header: ast.Header{Span: sp}, Kind: ast.StmtWhile, Expr: cond, Body: body})
}

// parseForStmt parses `for (T name in iterable) { ... }`.
func (p *Parser) parseForStmt() ast.Index {
	start := p.advance() // 'for'
	p.expect(token.LParen, diag.SynExpectedToken, "expected '(' after 'for'")
	ty := p.parseType()
	nameID, nameSpan, _ := p.expectIdent()
	loopVar := p.store.AllocDecl(ast.Decl{Header: ast.Header{Span: nameSpan}, Kind: ast.DeclVar, Name: nameID, Type: ty})
	p.expect(token.KwIn, diag.SynExpectedToken, "expected 'in' in for-loop header")
	iterable := p.parseExpr(0, false)
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after for-loop header")
	body := p.parseBlock()
	sp := start.Span.Cover(p.store.Header(body).Span)
	return p.store.AllocStmt(ast.Stmt{
		Header: ast.Header{Span: sp}, Kind: ast.StmtForIn,
		LoopVar: loopVar, Iterable: iterable, Body: body,
	})
}

func (p *Parser) parseReturnStmt() ast.Index {
	start := p.advance() // 'return'
	var value ast.Index
	if !p.at(token.Semicolon) {
		value = p.parseExpr(0, false)
	}
	end, _ := p.expect(token.Semicolon, diag.SynExpectedToken, "expected ';' after return statement")
	sp := start.Span.Cover(end.Span)
	return p.store.AllocStmt(ast.Stmt{Header: ast.Header{Span: sp}, Kind: ast.StmtReturn, Expr: value})
}
