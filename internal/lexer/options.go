package lexer

import (
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/source"
)

// Reporter is the sink the lexer reports errors through. It is
// diag.Reporter itself, so a diag.BagReporter can be passed as is.
type Reporter = diag.Reporter

type Options struct {
	Reporter Reporter // может быть nil — тогда ошибки игнорируем (но продолжаем лексить)
}

// errLex reports a lex error with severity SevError through
// opts.Reporter; it does nothing when no reporter is set.
func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil, nil)
	}
}
