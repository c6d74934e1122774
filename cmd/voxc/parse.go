package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diagfmt"
	"github.com/sdvcn/vox/internal/driver"
	"github.com/sdvcn/vox/internal/project"
)

var parseDumpAST string

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.vx...",
	Short: "Parse one or more vox source files and report syntax diagnostics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseDumpAST, "dump-ast", "", "write a msgpack-encoded item census to this path")
}

func runParse(cmd *cobra.Command, args []string) error {
	maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	tracer, stopTracing, err := setupTracing(cmd)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	defer stopTracing()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	defer stopProfiling()

	c := driver.NewContext(driver.Options{MaxDiagnostics: maxDiag, Tracer: tracer})
	parsed, err := c.LoadAndParse(args)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	reportDiagnostics(cmd, c)

	if parseDumpAST != "" {
		var all []ast.Index
		for _, pf := range parsed {
			all = append(all, c.Store.ItemsOf(pf.Items)...)
		}
		if err := writeDumpAST(parseDumpAST, c, all); err != nil {
			return fmt.Errorf("dump-ast: %w", err)
		}
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		total := 0
		for _, pf := range parsed {
			total += len(c.Store.ItemsOf(pf.Items))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "parsed %d file(s), %d top-level item(s)\n", len(parsed), total)
	}

	if c.Bag.HasErrors() {
		return fmt.Errorf("parse failed with %d diagnostic(s)", c.Bag.Len())
	}
	return nil
}

func writeDumpAST(path string, c *driver.Context, items []ast.Index) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return project.DumpAST(f, c.Store, c.Interp, items)
}

func reportDiagnostics(cmd *cobra.Command, c *driver.Context) {
	if c.Bag.Len() == 0 {
		return
	}
	diagfmt.Pretty(os.Stderr, c.Bag, c.Files, diagfmt.PrettyOpts{
		Color:     wantColor(cmd, os.Stderr),
		Context:   2,
		ShowNotes: true,
	})
}
