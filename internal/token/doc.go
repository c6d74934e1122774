// Package token defines lexical token kinds and trivia for the Vox compiler.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Begin..End).
//   - Attributes are lexed as '@' (Kind: At) + Ident; no per-attribute token kinds.
//   - Directives (/// ...) are represented as leading Trivia (TriviaDirective) and
//     never appear in the main token stream.
//   - Built-in type names (i32, u8, f64, bool, void, noreturn, ...) are
//     identifiers. They are recognized by the symbol layer, not the lexer.
package token
