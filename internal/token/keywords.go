package token

var keywords = map[string]Kind{
	"module":   KwModule,
	"import":   KwImport,
	"as":       KwAs,
	"alias":    KwAlias,
	"struct":   KwStruct,
	"union":    KwUnion,
	"enum":     KwEnum,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"in":       KwIn,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
	"true":     KwTrue,
	"false":    KwFalse,
	"null":     KwNull,
	"cast":     KwCast,
	"this":     KwThis,
	"extern":   KwExtern,
	"pub":      KwPub,
	"mut":      KwMut,
	"const":    KwConst,
}

// LookupKeyword reports the reserved Kind for ident, if any. Keywords
// are case-sensitive; only the lowercase spellings above are recognized.
// Built-in scalar type names (i32, u8, f64, bool, void, noreturn, ...)
// are deliberately absent: they lex as plain identifiers and are
// recognized by the symbol table against a pre-seeded root scope, the
// same way any other name is resolved (§4.3, §4.7).
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
