package diagfmt

import (
	"encoding/json"
	"io"

	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/source"
)

// NoteOutput is one diag.Note reduced to its JSON shape.
type NoteOutput struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// DiagnosticOutput is one diag.Diagnostic reduced to the shape JSON
// prints.
type DiagnosticOutput struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Location string       `json:"location"`
	Message  string       `json:"message"`
	Notes    []NoteOutput `json:"notes,omitempty"`
}

// JSON writes bag as a JSON array of DiagnosticOutput, sorted the same
// deterministic way Pretty sorts it.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	bag.Sort()
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}

	prettyOpts := PrettyOpts{PathMode: opts.PathMode, BaseDir: opts.BaseDir}
	out := make([]DiagnosticOutput, 0, len(items))
	for _, d := range items {
		entry := DiagnosticOutput{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Location: formatLoc(d.Primary, fs, prettyOpts),
			Message:  d.Message,
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				entry.Notes = append(entry.Notes, NoteOutput{
					Location: formatLoc(n.Span, fs, prettyOpts),
					Message:  n.Msg,
				})
			}
		}
		out = append(out, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
