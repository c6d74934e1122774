// Package driver wires file loading, lexing, parsing and the three
// lazy analysis passes (symbols, sema, irgen) into one compilation
// context per §5. A Context owns the single shared ast.Store and
// intern.Table every parsed file registers into; Compile* functions
// are the entry points cmd/voxc calls for each subcommand.
//
// Concurrency is confined to disk I/O: intern.Table documents itself
// as unsafe for concurrent use, and internal/arena carries no locking
// at all, so everything downstream of "read these bytes from disk" —
// lexing, parsing, registration, checking, IR generation — runs
// strictly sequentially against the shared Store. golang.org/x/sync's
// errgroup buys back the only part of the pipeline that can safely
// overlap: the os.ReadFile calls across a module's files.
package driver

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/sdvcn/vox/internal/analysis"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/irgen"
	"github.com/sdvcn/vox/internal/observ"
	"github.com/sdvcn/vox/internal/sema"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/symbols"
	"github.com/sdvcn/vox/internal/trace"
)

// Options configures a compilation run. The zero value is usable: a
// cap of 256 diagnostics and intern.VersionLinux as the target version.
type Options struct {
	MaxDiagnostics int         // 256 when zero or negative
	TargetVersion  intern.ID   // defaults to intern.VersionLinux when zero
	EnabledVersion []intern.ID // not read by NewContext; only TargetVersion reaches static expansion
	Timings        bool

	// Progress, when non-nil, receives an Event at each stage transition.
	// The caller owns the channel and must drain it; Compile* functions
	// never close it. Nil (the default) disables progress reporting
	// entirely — emit becomes a no-op.
	Progress chan<- Event

	// Tracer, when non-nil, receives a span around every require_property
	// step the analysis driver runs and around every function's
	// finalize_ir step. Nil (the default) disables tracing entirely.
	Tracer trace.Tracer
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 256
	}
	return o.MaxDiagnostics
}

func (o Options) targetVersion() intern.ID {
	if o.TargetVersion == intern.NoID {
		return intern.VersionLinux
	}
	return o.TargetVersion
}

// Context is one compilation's worth of shared state: the arenas every
// parsed file registers into, the reporter every pass writes
// diagnostics through, and the three wired analysis passes.
type Context struct {
	Files  *source.FileSet
	Store  *ast.Store
	Interp *intern.Table
	Bag    *diag.Bag

	Registrar *symbols.Registrar
	Checker   *sema.Checker
	Generator *irgen.Generator

	driver   *analysis.Driver
	timer    *observ.Timer
	progress chan<- Event
}

// NewContext builds an empty compilation context, wiring the three
// passes into one analysis.Registry the same way sema's own test
// fixture does (internal/sema/sema_test.go's newFixture).
func NewContext(opts Options) *Context {
	bag := diag.NewBag(opts.maxDiagnostics())
	reporter := diag.NewDedupReporter(&diag.BagReporter{Bag: bag})

	store := ast.NewStore()
	interp := intern.New()

	reg := symbols.NewRegistrar(store, interp, reporter, opts.targetVersion())
	checker := sema.NewChecker(store, interp, reporter, reg)
	generator := irgen.NewGenerator(store, interp, reg)

	registry := &analysis.Registry{}
	reg.Wire(registry)
	checker.Wire(registry)
	generator.Wire(registry)

	generator.Tracer = opts.Tracer
	analysisDriver := analysis.NewDriver(store, registry, reporter)
	analysisDriver.Tracer = opts.Tracer

	return &Context{
		Files:     source.NewFileSet(),
		Store:     store,
		Interp:    interp,
		Bag:       bag,
		Registrar: reg,
		Checker:   checker,
		Generator: generator,
		driver:    analysisDriver,
		timer:     observ.NewTimer(),
		progress:  opts.Progress,
	}
}

// Timings reports phase durations recorded so far, for the --timings
// CLI flag. Empty when no phase was ever begun.
func (c *Context) Timings() observ.Report { return c.timer.Report() }

func (c *Context) phase(name string) func(note string) {
	idx := c.timer.Begin(name)
	return func(note string) { c.timer.End(idx, note) }
}

// loadBytes reads every path in paths concurrently — the one stage of
// the pipeline safe to parallelize, since it touches neither the
// shared FileSet, Store, nor Interp.
func loadBytes(paths []string) ([][]byte, error) {
	out := make([][]byte, len(paths))
	g, _ := errgroup.WithContext(context.Background())
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			b, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
