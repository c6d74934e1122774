package driver

import (
	"fmt"
	"path/filepath"

	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/ir"
	"github.com/sdvcn/vox/internal/project"
	"github.com/sdvcn/vox/internal/project/dag"
)

// Result is the outcome of one compilation: the diagnostics every
// phase emitted, the generated module (populated only when no phase
// before IR generation held a fatal error), and, for a multi-module
// build, the order the modules were compiled in.
type Result struct {
	Ctx       *Context
	Bag       *diag.Bag
	Module    *ir.Module
	ModuleIdx dag.ModuleIndex
	Order     []string
}

// CompileFiles compiles an explicit, flat list of files as a single
// implicit module — the entry point behind `voxc parse`/`check`/
// `build` when invoked directly on file arguments rather than on a
// project directory with a vox.toml.
func CompileFiles(paths []string, opts Options) (*Result, error) {
	c := NewContext(opts)
	parsed, err := c.LoadAndParse(paths)
	if err != nil {
		return nil, err
	}

	root := c.Store.NewScope(ast.ScopeGlobal, 0, "root")
	var all []ast.Index
	for _, pf := range parsed {
		all = append(all, c.Store.ItemsOf(pf.Items)...)
	}
	items := c.Store.AppendItems(all...)

	if err := c.Drive(&items, root); err != nil {
		return nil, err
	}

	return &Result{Ctx: c, Bag: c.Bag, Module: c.Generator.Mod, Order: []string{"main"}}, nil
}

// CompileProject compiles every module a project manifest maps, in
// import-dependency order: internal/project/dag orders modules and
// diagnoses import cycles / missing dependencies the same way the
// teacher's module graph does, but the registration/check/IR-gen
// passes that follow still see one flat global scope across every
// module's items — internal/symbols never implemented cross-module
// export filtering, so a module boundary here is purely a compile-
// order and diagnostic concept, not a namespace.
func CompileProject(projectDir string, opts Options) (*Result, error) {
	mapping, ok, err := project.LoadModuleMapping(projectDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		files, err := DiscoverFiles(projectDir)
		if err != nil {
			return nil, err
		}
		return CompileFiles(files, opts)
	}

	type moduleUnit struct {
		path  string
		root  string
		files []string
	}
	var units []moduleUnit

	manifestPath := filepath.Join(mapping.ProjectRoot, "vox.toml")
	if ownManifest, err := project.LoadModuleManifest(manifestPath); err == nil {
		if ownRoot, err := project.ResolveModuleRoot(mapping.ProjectRoot, ownManifest.Root); err == nil {
			files, err := DiscoverFiles(ownRoot)
			if err != nil {
				return nil, err
			}
			units = append(units, moduleUnit{path: ownManifest.Name, root: ownRoot, files: files})
		}
	}

	for name, root := range mapping.Roots {
		files, err := DiscoverFiles(root)
		if err != nil {
			return nil, err
		}
		units = append(units, moduleUnit{path: name, root: root, files: files})
	}

	c := NewContext(opts)
	reporter := &diag.BagReporter{Bag: c.Bag}

	var metas []project.ModuleMeta
	parsedByModule := make(map[string]*ParsedFile, len(units))
	for _, u := range units {
		parsed, err := c.LoadAndParse(u.files)
		if err != nil {
			return nil, err
		}
		for _, pf := range parsed {
			meta := moduleMeta(c.Store, c.Interp, pf, u.root)
			metas = append(metas, meta)
			if meta.Path != "" {
				parsedByModule[meta.Path] = pf
			}
		}
	}

	idx := dag.BuildIndex(metas)
	nodes := make([]dag.ModuleNode, 0, len(metas))
	for _, m := range metas {
		broken, firstErr := moduleBroken(c.Bag, m)
		nodes = append(nodes, dag.ModuleNode{
			Meta:     m,
			Reporter: reporter,
			Broken:   broken,
			FirstErr: firstErr,
		})
	}
	graph, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(idx, slots, *topo)
	dag.ReportBrokenDeps(idx, slots)

	root := c.Store.NewScope(ast.ScopeGlobal, 0, "root")
	var all []ast.Index
	order := make([]string, 0, len(topo.Order))
	for _, id := range topo.Order {
		path := idx.IDToName[int(id)]
		order = append(order, path)
		if pf, ok := parsedByModule[path]; ok {
			all = append(all, c.Store.ItemsOf(pf.Items)...)
		}
	}
	items := c.Store.AppendItems(all...)

	if err := c.Drive(&items, root); err != nil {
		return nil, err
	}

	return &Result{Ctx: c, Bag: c.Bag, Module: c.Generator.Mod, ModuleIdx: idx, Order: order}, nil
}

// Drive pushes items through name registration, type checking and IR
// generation in that order — RegisterRoot's own static-expansion sweep
// may rewrite items in place, which is why it alone takes a pointer.
func (c *Context) Drive(items *arena.Span, scope ast.ScopeIndex) error {
	c.emit(Event{Stage: StageRegister, Status: StatusWorking})
	end := c.phase("register")
	if err := c.Registrar.RegisterRoot(c.driver, items, scope); err != nil {
		end("error")
		c.emit(Event{Stage: StageRegister, Status: StatusError})
		return fmt.Errorf("register: %w", err)
	}
	end("")
	c.emit(Event{Stage: StageRegister, Status: StatusDone})

	c.emit(Event{Stage: StageCheck, Status: StatusWorking})
	end = c.phase("check")
	if err := c.Checker.CheckRoot(c.driver, *items); err != nil {
		end("error")
		c.emit(Event{Stage: StageCheck, Status: StatusError})
		return fmt.Errorf("check: %w", err)
	}
	end("")
	c.emit(Event{Stage: StageCheck, Status: StatusDone})

	if c.Bag.HasErrors() {
		return nil
	}

	c.emit(Event{Stage: StageIRGen, Status: StatusWorking})
	end = c.phase("irgen")
	err := c.Generator.GenRoot(c.driver, *items)
	end("")
	if err != nil {
		c.emit(Event{Stage: StageIRGen, Status: StatusError})
		return fmt.Errorf("irgen: %w", err)
	}
	c.emit(Event{Stage: StageIRGen, Status: StatusDone})
	return nil
}

// Check runs name registration and type checking over items without IR
// generation, for the `voxc check` subcommand — the one caller that
// wants Drive's first two phases and deliberately skips the third.
func (c *Context) Check(items *arena.Span, scope ast.ScopeIndex) error {
	c.emit(Event{Stage: StageRegister, Status: StatusWorking})
	end := c.phase("register")
	if err := c.Registrar.RegisterRoot(c.driver, items, scope); err != nil {
		end("error")
		c.emit(Event{Stage: StageRegister, Status: StatusError})
		return fmt.Errorf("register: %w", err)
	}
	end("")
	c.emit(Event{Stage: StageRegister, Status: StatusDone})

	c.emit(Event{Stage: StageCheck, Status: StatusWorking})
	end = c.phase("check")
	if err := c.Checker.CheckRoot(c.driver, *items); err != nil {
		end("error")
		c.emit(Event{Stage: StageCheck, Status: StatusError})
		return fmt.Errorf("check: %w", err)
	}
	end("")
	c.emit(Event{Stage: StageCheck, Status: StatusDone})
	return nil
}

// moduleBroken reports whether any SevError diagnostic in bag was
// raised against one of meta's own files, and the first such
// diagnostic — used to seed dag.ModuleNode.Broken/FirstErr the same
// way the teacher's moduleStatus helper derives them from a per-module
// bag, adapted to a bag shared across every module in the project.
func moduleBroken(bag *diag.Bag, meta project.ModuleMeta) (bool, *diag.Diagnostic) {
	fileSet := make(map[uint32]struct{}, len(meta.Files))
	for _, f := range meta.Files {
		fileSet[uint32(f.Span.File)] = struct{}{}
	}
	items := bag.Items()
	for i := range items {
		d := &items[i]
		if d.Severity != diag.SevError {
			continue
		}
		if _, ok := fileSet[uint32(d.Primary.File)]; ok {
			return true, d
		}
	}
	return false, nil
}
