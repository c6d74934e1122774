package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] file.vx...",
	Short: "Type-check one or more vox source files without generating IR",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	tracer, stopTracing, err := setupTracing(cmd)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	defer stopTracing()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	defer stopProfiling()

	c := driver.NewContext(driver.Options{MaxDiagnostics: maxDiag, Tracer: tracer})
	parsed, err := c.LoadAndParse(args)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	root := c.Store.NewScope(ast.ScopeGlobal, 0, "root")
	var all []ast.Index
	for _, pf := range parsed {
		all = append(all, c.Store.ItemsOf(pf.Items)...)
	}
	items := c.Store.AppendItems(all...)

	if err := c.Check(&items, root); err != nil {
		reportDiagnostics(cmd, c)
		return fmt.Errorf("check: %w", err)
	}

	reportDiagnostics(cmd, c)
	if c.Bag.HasErrors() {
		return fmt.Errorf("check failed with %d diagnostic(s)", c.Bag.Len())
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "no errors")
	}
	return nil
}
