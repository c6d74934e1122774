package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/source"
)

var (
	errorColor     = color.New(color.FgRed, color.Bold)
	warnColor      = color.New(color.FgYellow, color.Bold)
	infoColor      = color.New(color.FgCyan, color.Bold)
	codeColor      = color.New(color.FgHiBlack)
	locColor       = color.New(color.FgHiWhite, color.Bold)
	underlineColor = color.New(color.FgRed, color.Bold)
	noteColor      = color.New(color.FgBlue)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

// Pretty writes every diagnostic in bag to w in a human-readable form:
//
//	<path>:<line>:<col>: <SEVERITY> <CODE>: <message>
//	    <source line>
//	    ^~~~~~~~
//
// followed by any notes. bag is sorted in place first so output order is
// deterministic regardless of the order passes reported in.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	bag.Sort()
	for _, d := range bag.Items() {
		writeDiagnostic(w, d, fs, opts, 0)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				writeNote(w, n, fs, opts)
			}
		}
	}
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, indent int) {
	pad := strings.Repeat("  ", indent)
	loc := formatLoc(d.Primary, fs, opts)

	sev := d.Severity.String()
	code := d.Code.ID()
	if opts.Color {
		sev = severityColor(d.Severity).Sprint(sev)
		code = codeColor.Sprint(code)
		loc = locColor.Sprint(loc)
	}
	fmt.Fprintf(w, "%s%s: %s %s: %s\n", pad, loc, sev, code, d.Message)

	if opts.Context > 0 {
		writeSourceContext(w, d.Primary, fs, opts, indent+1)
	}
}

func writeNote(w io.Writer, n diag.Note, fs *source.FileSet, opts PrettyOpts) {
	loc := formatLoc(n.Span, fs, opts)
	label := "note"
	if opts.Color {
		loc = locColor.Sprint(loc)
		label = noteColor.Sprint(label)
	}
	fmt.Fprintf(w, "  %s: %s: %s\n", loc, label, n.Msg)
}

func formatLoc(span source.Span, fs *source.FileSet, opts PrettyOpts) string {
	if fs == nil {
		return fmt.Sprintf("<file %d>:%d", span.File, span.Start)
	}
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.FormatPath(opts.PathMode.String(), opts.BaseDir), start.Line, start.Col)
}

func writeSourceContext(w io.Writer, span source.Span, fs *source.FileSet, opts PrettyOpts, indent int) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	pad := strings.Repeat("  ", indent)

	ctx := int(opts.Context)
	firstLine := start.Line
	for i := 0; i < ctx && firstLine > 1; i++ {
		firstLine--
	}
	lastLine := end.Line
	for i := 0; i < ctx; i++ {
		lastLine++
	}

	for line := firstLine; line <= lastLine; line++ {
		text := f.GetLine(line)
		if line > start.Line && text == "" && line > end.Line {
			break
		}
		fmt.Fprintf(w, "%s%4d | %s\n", pad, line, text)
		if line == start.Line {
			underline := buildUnderline(text, start, end, line)
			marker := fmt.Sprintf("%s     | %s", pad, underline)
			if opts.Color {
				marker = fmt.Sprintf("%s     | %s", pad, underlineColor.Sprint(underline))
			}
			fmt.Fprintln(w, marker)
		}
	}
}

func buildUnderline(text string, start, end source.LineCol, line uint32) string {
	col := int(start.Col)
	if col < 1 {
		col = 1
	}
	lead := displayWidth(text, col-1)

	spanWidth := 1
	if line == end.Line && end.Col > start.Col {
		spanWidth = displayWidth(text, int(end.Col)-1) - lead
		if spanWidth < 1 {
			spanWidth = 1
		}
	}
	return strings.Repeat(" ", lead) + "^" + strings.Repeat("~", max(0, spanWidth-1))
}
