package diagfmt

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/width"
)

// displayWidth sums the terminal column width of the first n bytes of
// text. source.Span columns are byte offsets, so a caret placed under
// a line of source holding wide or fullwidth runes needs this rather
// than col-1 spaces to land under the right glyph.
func displayWidth(text string, n int) int {
	if n > len(text) {
		n = len(text)
	}
	total := 0
	for i := 0; i < n; {
		r, size := utf8.DecodeRuneInString(text[i:])
		total += runeWidth(r)
		i += size
	}
	return total
}

// runeWidth pins r's column width down to a fixed value instead of
// deferring to go-runewidth's default East Asian Width resolution,
// which auto-detects ambiguous-width runes from the environment
// (runewidth.DefaultCondition, keyed off locale variables). Without
// this, the same diagnostic could print its caret in a different
// column depending on the machine that ran voxc. Wide and fullwidth
// runes always take two columns; ambiguous-width runes are pinned to
// one, matching the common non-CJK terminal default.
func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	case width.EastAsianAmbiguous:
		return 1
	default:
		return runewidth.RuneWidth(r)
	}
}
