package parser

import (
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

// diagSpan picks the best span to attach to a diagnostic raised while
// looking at the current token: the token's own span, or (if it is a
// zero-width EOF/Invalid) the position right after the last token
// actually consumed.
func (p *Parser) diagSpan() source.Span {
	pk := p.peek()
	if (pk.Kind == token.EOF || pk.Kind == token.Invalid) && pk.Span.Empty() && p.lastTok.Span.End > 0 {
		return source.Span{File: p.lastTok.Span.File, Start: p.lastTok.Span.End, End: p.lastTok.Span.End}
	}
	return pk.Span
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if sev == diag.SevError {
		p.errs++
	}
	if p.opts.Reporter == nil || p.opts.enough(p.errs) {
		return
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) {
	p.report(code, diag.SevError, sp, msg)
}

func (p *Parser) err(code diag.Code, msg string) {
	p.errAt(code, p.diagSpan(), msg)
}

// expect consumes k, reporting code/msg and returning ok=false if the
// current token does not match.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	p.err(code, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// expectIdent consumes an identifier and interns its text.
func (p *Parser) expectIdent() (intern.ID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.intern(tok), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+p.peek().Text)
	return intern.NoID, p.diagSpan(), false
}
