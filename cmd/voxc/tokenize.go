package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdvcn/vox/internal/diagfmt"
	"github.com/sdvcn/vox/internal/driver"
)

var tokenizeFormat string

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.vx",
	Short: "Tokenize a vox source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().StringVar(&tokenizeFormat, "format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	fs, _, toks, bag, err := driver.Tokenize(args[0])
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}

	if bag.HasErrors() || bag.HasWarnings() {
		diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{
			Color:     wantColor(cmd, os.Stderr),
			Context:   2,
			ShowNotes: true,
		})
	}

	switch tokenizeFormat {
	case "pretty":
		return diagfmt.FormatTokensPretty(os.Stdout, toks, fs)
	case "json":
		return diagfmt.FormatTokensJSON(os.Stdout, toks)
	default:
		return fmt.Errorf("unknown format: %s", tokenizeFormat)
	}
}
