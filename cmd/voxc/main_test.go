package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// newTestRoot builds a throwaway root carrying the same persistent
// flags main() registers, so a subcommand's RunE can read them without
// running the real CLI entry point. Each global *cobra.Command var can
// only belong to one parent at a time, so callers attach exactly the
// subcommands a given test exercises.
func newTestRoot(subs ...*cobra.Command) *cobra.Command {
	root := &cobra.Command{Use: "voxc"}
	root.PersistentFlags().String("color", "auto", "")
	root.PersistentFlags().Bool("quiet", false, "")
	root.PersistentFlags().Bool("timings", false, "")
	root.PersistentFlags().Int("max-diagnostics", 256, "")
	root.PersistentFlags().String("trace", "", "")
	root.PersistentFlags().String("trace-level", "phase", "")
	root.PersistentFlags().String("trace-mode", "stream", "")
	root.PersistentFlags().Int("trace-ring-size", 4096, "")
	root.PersistentFlags().Duration("trace-heartbeat", 0, "")
	root.PersistentFlags().String("cpu-profile", "", "")
	root.PersistentFlags().String("mem-profile", "", "")
	root.PersistentFlags().String("runtime-trace", "", "")
	for _, sub := range subs {
		root.AddCommand(sub)
	}
	return root
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.vx")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunParseSucceedsOnValidProgram(t *testing.T) {
	path := writeSource(t, "i32 add(i32 a, i32 b) { return (a + b); }")
	root := newTestRoot(parseCmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"parse", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if out.Len() == 0 {
		t.Error("expected a summary line on stdout")
	}
}

func TestRunParseReportsSyntaxError(t *testing.T) {
	path := writeSource(t, "i32 add(i32 a, i32 b) { return (a + ; }")
	root := newTestRoot(parseCmd)

	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"parse", path})
	if err := root.Execute(); err == nil {
		t.Fatal("expected Execute() to return an error for a syntax error")
	}
}

func TestRunCheckReportsUndefinedIdentifier(t *testing.T) {
	path := writeSource(t, "i32 broken() { return undefined_name; }")
	root := newTestRoot(checkCmd)

	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"check", path})
	if err := root.Execute(); err == nil {
		t.Fatal("expected Execute() to return an error for an undefined identifier")
	}
}

func TestRunCheckSucceedsOnValidProgram(t *testing.T) {
	path := writeSource(t, "i32 add(i32 a, i32 b) { return (a + b); }")
	root := newTestRoot(checkCmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"check", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
}

func TestRunTokenizePrettyFormat(t *testing.T) {
	path := writeSource(t, "i32 x = 1;")
	root := newTestRoot(tokenizeCmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"tokenize", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
}

func TestRunVersionPretty(t *testing.T) {
	root := newTestRoot(versionCmd)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if out.Len() == 0 {
		t.Error("expected version output")
	}
}

func TestRunVersionRejectsUnknownFormat(t *testing.T) {
	root := newTestRoot(versionCmd)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"version", "--format", "xml"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for an unsupported --format value")
	}
}

func TestValueOrDevAndUnknown(t *testing.T) {
	if got := valueOrDev(""); got != "dev" {
		t.Errorf("valueOrDev(\"\") = %q, want %q", got, "dev")
	}
	if got := valueOrDev("  v1.2.3  "); got != "v1.2.3" {
		t.Errorf("valueOrDev(padded) = %q, want %q", got, "v1.2.3")
	}
	if got := valueOrUnknown(""); got != "unknown" {
		t.Errorf("valueOrUnknown(\"\") = %q, want %q", got, "unknown")
	}
	if got := valueOrUnknown("abc123"); got != "abc123" {
		t.Errorf("valueOrUnknown(\"abc123\") = %q, want %q", got, "abc123")
	}
}

func TestWantColorOffFlagWinsOverTTY(t *testing.T) {
	root := newTestRoot()
	root.PersistentFlags().Set("color", "off")
	if wantColor(root, os.Stdout) {
		t.Error("wantColor() = true with --color=off, want false")
	}
}

func TestWantColorOnFlagForcesColor(t *testing.T) {
	root := newTestRoot()
	root.PersistentFlags().Set("color", "on")
	if !wantColor(root, os.Stdout) {
		t.Error("wantColor() = false with --color=on, want true")
	}
}
