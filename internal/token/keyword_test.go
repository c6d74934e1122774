package token

import (
	"testing"
)

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
		"module": KwModule,
		"import": KwImport,
		"alias":  KwAlias,
		"struct": KwStruct,
		"union":  KwUnion,
		"enum":   KwEnum,
		"return": KwReturn,
		"cast":   KwCast,
		"this":   KwThis,
		"true":   KwTrue,
		"false":  KwFalse,
		"null":   KwNull,
	}

	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	notKw := []string{
		"Module", "IMPORT", "Cast", // case matters — the lexer never lowercases
		"i32", "u8", "f64", "bool", "void", "noreturn", // type names — plain idents
		"identifier", "toString",
	}
	for _, s := range notKw {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true, want false", s)
		}
	}
}
