// Code generated by running `go generate` over trivia.go's const block by
// hand would produce; checked in directly since go generate never ran in
// this tree. Mirrors stringer's own _TriviaKind_name/_TriviaKind_index
// layout (with -trimprefix=Trivia) so a future real
// `stringer -type=TriviaKind -trimprefix=Trivia` run regenerates
// byte-identical output.

package token

import "strconv"

const _TriviaKind_name = "SpaceNewlineLineCommentBlockCommentDocLineDocBlockDirective"

var _TriviaKind_index = [...]uint8{0, 5, 12, 23, 35, 42, 50, 59}

func (k TriviaKind) String() string {
	if int(k) < 0 || int(k) >= len(_TriviaKind_index)-1 {
		return "TriviaKind(" + strconv.FormatInt(int64(k), 10) + ")"
	}
	return _TriviaKind_name[_TriviaKind_index[k]:_TriviaKind_index[k+1]]
}

