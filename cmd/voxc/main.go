package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sdvcn/vox/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "voxc",
	Short: "Vox language compiler and toolchain",
	Long:  `voxc lexes, parses, checks and lowers vox source into an in-memory IR module.`,
}

// main registers every subcommand and global flag, then runs whichever
// one the user invoked. A non-nil error from Execute always exits 1 —
// cobra has already printed it.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show phase timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 256, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("trace", "", `trace span events to a file ("-" for stderr), empty disables tracing`)
	rootCmd.PersistentFlags().String("trace-level", "phase", "trace verbosity (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "trace ring buffer size (trace-mode=ring|both)")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat trace event at this interval (0 disables)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a pprof CPU profile to this path")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a pprof heap profile to this path")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime/trace execution trace to this path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func wantColor(cmd *cobra.Command, f *os.File) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	return colorFlag == "on" || (colorFlag != "off" && isTerminal(f))
}
