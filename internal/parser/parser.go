// Package parser implements the recursive-descent declaration/statement
// parser and the Pratt expression parser of §4.4: one Parser per source
// file, producing nodes directly into a shared ast.Store.
package parser

import (
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/lexer"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

// Options configures a Parser's error reporting.
type Options struct {
	Reporter  diag.Reporter
	MaxErrors uint
}

func (o *Options) enough(current uint) bool {
	if o.MaxErrors == 0 {
		return false
	}
	return current >= o.MaxErrors
}

// Result is what ParseFile hands back: the top-level item list plus an
// error count, so the driver can decide whether to keep going.
type Result struct {
	Items  []ast.Index
	Errors uint
}

// bodyKind tracks which item dispatch a `{ ... }` body currently being
// parsed should use, so a static-conditional's body (§4.4, parsed
// generically by static.go without knowing its own surrounding
// context) can replay the right one: top-level/struct/enum bodies use
// declaration dispatch, function bodies use statement dispatch.
type bodyKind uint8

const (
	bodyKindTop bodyKind = iota
	bodyKindBlock
)

// Parser holds the state for parsing a single file. Its fields mirror
// surge's own parser: a token source, the shared builder (here, a
// Store plus interner), and the running diagnostic count.
type Parser struct {
	lx      *lexer.Lexer
	store   *ast.Store
	interp  *intern.Table
	file    source.FileID
	opts    Options
	errs    uint
	lastTok token.Token
	kind    bodyKind

	attrs attrStack
}

// ParseFile parses one file's top-level item list. lx must already be
// positioned at the start of the file's token stream.
func ParseFile(lx *lexer.Lexer, store *ast.Store, interp *intern.Table, file source.FileID, opts Options) Result {
	p := &Parser{lx: lx, store: store, interp: interp, file: file, opts: opts}
	p.attrs.init()
	items := p.parseItems()
	return Result{Items: items, Errors: p.errs}
}

func (p *Parser) peek() token.Token { return p.lx.Peek() }

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) atAny(kinds ...token.Kind) bool {
	pk := p.peek().Kind
	for _, k := range kinds {
		if pk == k {
			return true
		}
	}
	return false
}

func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastTok = tok
	}
	return tok
}

// intern records tok's text (an identifier) in the shared table.
func (p *Parser) intern(tok token.Token) intern.ID {
	return p.interp.GetOrIntern(tok.Text)
}

// parseItems is the top-level loop: while not EOF, parse one item
// (threading the attribute stack through) and resynchronize on error.
func (p *Parser) parseItems() []ast.Index {
	var items []ast.Index
	for !p.at(token.EOF) {
		idx, ok := p.parseTopItem()
		if ok {
			if idx != ast.Undefined {
				items = append(items, idx)
			}
		} else {
			p.resyncTop()
		}
		if p.opts.enough(p.errs) {
			break
		}
	}
	return items
}

// isTopLevelStarter reports whether k begins a new top-level item, used
// by resyncTop to stop skipping tokens at a plausible restart point.
func isTopLevelStarter(k token.Kind) bool {
	switch k {
	case token.KwModule, token.KwImport, token.KwAlias, token.KwStruct, token.KwUnion,
		token.KwEnum, token.KwPub, token.KwExtern, token.At, token.Hash, token.Ident:
		return true
	default:
		return false
	}
}

func (p *Parser) resyncTop() {
	for !p.at(token.EOF) && !p.at(token.Semicolon) && !isTopLevelStarter(p.peek().Kind) {
		p.advance()
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
}
