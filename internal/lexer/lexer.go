package lexer

import (
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

// maxTokenLength is the longest token, in bytes, the lexer accepts; a
// longer one is reported as LexTokenTooLong and ends the scan.
const maxTokenLength = 1 << 16

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // 1st lookahead slot
	look2  *token.Token   // 2nd lookahead slot, filled lazily by Peek2
	hold   []token.Trivia // leading trivia accumulated for the next token
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		look:   nil,
		hold:   nil,
	}
}

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = lx.look2
		lx.look2 = nil
		return tok
	}
	return lx.scanNext()
}

// scanNext performs the actual scan, bypassing the lookahead buffers;
// Next/Peek/Peek2 are the only callers.
func (lx *Lexer) scanNext() token.Token {
	// 2) collectLeadingTrivia() — набить lx.hold
	lx.collectLeadingTrivia()

	// 3) Если EOF → вернуть EOF (Leading из hold не приклеиваем к EOF)
	if lx.cursor.EOF() {
		return token.Token{
			Kind: token.EOF,
			Span: lx.emptySpan(),
			Text: "",
		}
	}

	// 4) Посмотреть текущий байт и выбрать сканер
	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == '_':
		// Специальная обработка для underscore: если следующий символ не продолжение идента, то это токен Underscore
		b0, b1, ok := lx.cursor.Peek2()
		if ok && b0 == '_' && isIdentContinueByte(b1) {
			// "__foo" или "_123" → идентификатор
			tok = lx.scanIdentOrKeyword()
		} else {
			// одиночный "_" → токен Underscore
			tok = lx.scanOperatorOrPunct()
		}

	case ch == 'f':
		// f"..." → FStringLit, иначе обычный идентификатор
		if _, b1, ok := lx.cursor.Peek2(); ok && b1 == '"' {
			start := lx.cursor.Mark()
			lx.cursor.Bump() // 'f'
			tok = lx.scanString()
			if tok.Kind == token.StringLit {
				tok.Kind = token.FStringLit
			}
			tok.Span = lx.cursor.SpanFrom(start)
			tok.Text = string(lx.file.Content[tok.Span.Start:tok.Span.End])
		} else {
			tok = lx.scanIdentOrKeyword()
		}

	case isIdentStartByte(ch):
		// ASCII буква → scanIdentOrKeyword()
		tok = lx.scanIdentOrKeyword()

	case ch >= utf8RuneSelf:
		// Возможный Unicode идентификатор → scanIdentOrKeyword() разберётся
		tok = lx.scanIdentOrKeyword()

	case isDec(ch):
		// цифра → scanNumber()
		tok = lx.scanNumber()

	case ch == '.' && lx.isNumberAfterDot():
		// . за которым цифра → scanNumber()
		tok = lx.scanNumber()

	case ch == '"':
		// " → scanString()
		tok = lx.scanString()

	default:
		// иначе → scanOperatorOrPunct() (включая @, скобки, запятые и т.д.)
		tok = lx.scanOperatorOrPunct()
	}

	// Слишком длинный токен: репорт, остаток файла пропускаем
	if tok.Span.End-tok.Span.Start > maxTokenLength {
		lx.errLex(diag.LexTokenTooLong, tok.Span, "token exceeds maximum length")
		lx.cursor.Off = lx.cursor.limit()
		tok = token.Token{Kind: token.Invalid, Span: tok.Span, Text: tok.Text}
	}

	// 5) В полученный token.Token положить Leading: lx.hold, обнулить hold
	tok.Leading = lx.hold
	lx.hold = nil

	// 6) Вернуть токен
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	if lx.look == nil {
		t := lx.scanNext()
		lx.look = &t
	}
	return *lx.look
}

// Peek2 возвращает токен, следующий за Peek(), не потребляя ни один из
// них. Parser needs this to disambiguate a local variable declaration
// (`T ident ...`) from an expression statement starting with a bare
// identifier, which §4.4's grammar cannot tell apart from one token of
// lookahead alone.
func (lx *Lexer) Peek2() token.Token {
	if lx.look == nil {
		t := lx.scanNext()
		lx.look = &t
	}
	if lx.look2 == nil {
		t := lx.scanNext()
		lx.look2 = &t
	}
	return *lx.look2
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

// EmptySpan is the public form of emptySpan, used by callers (the
// parser) that need a zero-width span before any token has been
// consumed.
func (lx *Lexer) EmptySpan() source.Span { return lx.emptySpan() }
