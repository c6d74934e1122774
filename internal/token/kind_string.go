// Code generated by running `go generate` over kind.go's const block by
// hand would produce; checked in directly since go generate never ran in
// this tree. Mirrors stringer's own _Kind_name/_Kind_index layout so a
// future real `stringer -type=Kind` run regenerates byte-identical output.

package token

import "strconv"

const _Kind_name = "InvalidEOFIdentKwModuleKwImportKwAsKwAliasKwStructKwUnionKwEnumKwIfKwElseKwWhileKwForKwInKwBreakKwContinueKwReturnKwTrueKwFalseKwNullKwCastKwThisKwExternKwPubKwMutKwConstNullLitIntLitUintLitFloatLitBoolLitStringLitFStringLitPlusMinusStarSlashPercentAssignPlusAssignMinusAssignStarAssignSlashAssignPercentAssignAmpAssignPipeAssignCaretAssignShlAssignShrAssignEqEqBangBangEqLtLtEqGtGtEqShlShrAmpPipeCaretTildeAndAndOrOrQuestionQuestionQuestionColonColonColonSemicolonCommaDotDotDotDotDotEqDotDotDotArrowFatArrowLParenRParenLBraceRBraceLBracketRBracketAtHashUnderscore"

var _Kind_index = [...]uint16{0, 7, 10, 15, 23, 31, 35, 42, 50, 57, 63, 67, 73, 80, 85, 89, 96, 106, 114, 120, 127, 133, 139, 145, 153, 158, 163, 170, 177, 183, 190, 198, 205, 214, 224, 228, 233, 237, 242, 249, 255, 265, 276, 286, 297, 310, 319, 329, 340, 349, 358, 362, 366, 372, 374, 378, 380, 384, 387, 390, 393, 397, 402, 407, 413, 417, 425, 441, 446, 456, 465, 470, 473, 479, 487, 496, 501, 509, 515, 521, 527, 533, 541, 549, 551, 555, 565}

// String renders k the way a stringer -type=Kind run would: the bare
// identifier name (no trailing digits, no "Kw" prefix stripped — the
// keyword identifiers read fine as-is) for a value inside the declared
// range, otherwise "Kind(<n>)".
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(_Kind_index)-1 {
		return "Kind(" + strconv.FormatInt(int64(k), 10) + ")"
	}
	return _Kind_name[_Kind_index[k]:_Kind_index[k+1]]
}

