package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sdvcn/vox/internal/diagfmt"
	"github.com/sdvcn/vox/internal/driver"
	"github.com/sdvcn/vox/internal/project"
	"github.com/sdvcn/vox/internal/trace"
	"github.com/sdvcn/vox/internal/ui"
)

var buildUI string
var buildDumpIR string

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Compile a vox project or file list through to IR",
	Long:  `build discovers a project's vox.toml when [path] is a directory, otherwise compiles the given files directly, then runs every file through name registration, type checking and IR generation.`,
	Args:  cobra.ArbitraryArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildUI, "ui", "auto", "progress display (auto|on|off)")
	buildCmd.Flags().StringVar(&buildDumpIR, "dump-ir", "", "write a msgpack-encoded function census of the generated module to this path")
}

func runBuild(cmd *cobra.Command, args []string) error {
	maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	tracer, stopTracing, err := setupTracing(cmd)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	defer stopTracing()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	defer stopProfiling()

	target := "."
	if len(args) > 0 {
		target = args[0]
	}

	files, isDir, err := resolveBuildTarget(target, args)
	if err != nil {
		return err
	}

	useUI := buildUI == "on" || (buildUI == "auto" && isTerminal(os.Stdout) && len(files) > 1)

	var res *driver.Result
	if useUI {
		res, err = runBuildWithUI(target, isDir, files, maxDiag, tracer)
	} else {
		res, err = compileTarget(target, isDir, files, driver.Options{MaxDiagnostics: maxDiag, Tracer: tracer})
	}
	if err != nil && res == nil {
		return fmt.Errorf("build: %w", err)
	}

	if res.Bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, res.Bag, res.Ctx.Files, diagfmt.PrettyOpts{
			Color:     wantColor(cmd, os.Stderr),
			Context:   2,
			ShowNotes: true,
		})
	}

	if showTimings {
		report := res.Ctx.Timings()
		for _, p := range report.Phases {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %7.2f ms\n", p.Name, p.DurationMS)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %7.2f ms\n", "total", report.TotalMS)
	}

	if res.Module != nil {
		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		if !quiet {
			if len(res.Order) > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "compiled %d module(s): %d function(s), %d global(s)\n",
					len(res.Order), res.Module.Funcs.Len(), res.Module.Globals.Len())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "compiled %d function(s), %d global(s)\n",
					res.Module.Funcs.Len(), res.Module.Globals.Len())
			}
		}

		if buildDumpIR != "" {
			if err := writeDumpIR(buildDumpIR, res); err != nil {
				return fmt.Errorf("dump-ir: %w", err)
			}
		}
	}

	if res.Bag.HasErrors() {
		return fmt.Errorf("build failed with %d diagnostic(s)", res.Bag.Len())
	}
	return nil
}

func resolveBuildTarget(target string, args []string) ([]string, bool, error) {
	info, err := os.Stat(target)
	if err != nil {
		if len(args) == 0 {
			return nil, false, fmt.Errorf("build: %w", err)
		}
		return args, false, nil
	}
	if info.IsDir() {
		files, err := driver.DiscoverFiles(target)
		if err != nil {
			return nil, true, fmt.Errorf("build: %w", err)
		}
		return files, true, nil
	}
	return args, false, nil
}

func writeDumpIR(path string, res *driver.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return project.DumpIR(f, res.Module, res.Ctx.Interp)
}

func compileTarget(target string, isDir bool, files []string, opts driver.Options) (*driver.Result, error) {
	if isDir {
		return driver.CompileProject(target, opts)
	}
	return driver.CompileFiles(files, opts)
}

func runBuildWithUI(target string, isDir bool, files []string, maxDiag int, tracer trace.Tracer) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	type outcome struct {
		res *driver.Result
		err error
	}
	outcomeCh := make(chan outcome, 1)

	go func() {
		res, err := compileTarget(target, isDir, files, driver.Options{MaxDiagnostics: maxDiag, Progress: events, Tracer: tracer})
		outcomeCh <- outcome{res: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("voxc build", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	out := <-outcomeCh
	if uiErr != nil && out.err == nil {
		return out.res, uiErr
	}
	return out.res, out.err
}
