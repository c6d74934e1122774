package token_test

import (
	"testing"

	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{
		token.NullLit, token.IntLit, token.UintLit,
		token.FloatLit, token.BoolLit, token.StringLit,
	}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwMut, token.Plus, token.LParen}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsPunctOrOp(t *testing.T) {
	ops := []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign,
		token.SlashAssign, token.PercentAssign, token.AmpAssign, token.PipeAssign,
		token.CaretAssign, token.ShlAssign, token.ShrAssign,
		token.EqEq, token.Bang, token.BangEq,
		token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.Shl, token.Shr, token.Amp, token.Pipe, token.Caret, token.Tilde,
		token.AndAnd, token.OrOr,
		token.Question, token.QuestionQuestion, token.Colon, token.ColonColon,
		token.Semicolon, token.Comma,
		token.Dot, token.DotDot, token.DotDotEq, token.DotDotDot, token.Arrow, token.FatArrow,
		token.LParen, token.RParen, token.LBrace, token.RBrace, token.LBracket, token.RBracket,
		token.At, token.Hash, token.Underscore,
	}
	for _, k := range ops {
		if !tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be punct/op", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwIf, token.IntLit}
	for _, k := range non {
		if tok(k).IsPunctOrOp() {
			t.Fatalf("%v must NOT be punct/op", k)
		}
	}
}

func TestIsIdent(t *testing.T) {
	if !tok(token.Ident).IsIdent() {
		t.Fatalf("Ident should be ident")
	}
	if tok(token.KwModule).IsIdent() {
		t.Fatalf("KwModule must not be ident")
	}
}

func TestIsKeyword(t *testing.T) {
	keywords := []token.Kind{
		token.KwModule, token.KwImport, token.KwAs, token.KwAlias, token.KwStruct, token.KwUnion,
		token.KwEnum, token.KwIf, token.KwElse, token.KwWhile, token.KwFor, token.KwIn,
		token.KwBreak, token.KwContinue, token.KwReturn, token.KwTrue, token.KwFalse, token.KwNull,
		token.KwCast, token.KwThis, token.KwExtern, token.KwPub, token.KwMut, token.KwConst,
	}
	for _, k := range keywords {
		if !tok(k).IsKeyword() {
			t.Fatalf("%v should be keyword", k)
		}
	}
}
