package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/driver"
	"github.com/sdvcn/vox/internal/ir"
)

func TestCompileFilesValidProgramProducesModule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.vx")
	src := "i32 add(i32 a, i32 b) { return (a + b); }"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := driver.CompileFiles([]string{path}, driver.Options{})
	if err != nil {
		t.Fatalf("CompileFiles: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	if res.Module == nil {
		t.Fatal("expected a generated module, got nil")
	}
}

func TestCompileFilesReportsUndefinedIdentifier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.vx")
	src := "i32 broken() { return undefined_name; }"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := driver.CompileFiles([]string{path}, driver.Options{})
	if err != nil {
		t.Fatalf("CompileFiles: %v", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatal("expected a diagnostic for the undefined identifier, got none")
	}
}

func TestCompileFilesEmitsProgressEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.vx")
	src := "i32 add(i32 a, i32 b) { return (a + b); }"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	events := make(chan driver.Event, 64)
	_, err := driver.CompileFiles([]string{path}, driver.Options{Progress: events})
	if err != nil {
		t.Fatalf("CompileFiles: %v", err)
	}
	close(events)

	var sawParseDone, sawIRGenDone bool
	for ev := range events {
		if ev.Stage == driver.StageParse && ev.Status == driver.StatusDone {
			sawParseDone = true
		}
		if ev.Stage == driver.StageIRGen && ev.Status == driver.StatusDone {
			sawIRGenDone = true
		}
	}
	if !sawParseDone {
		t.Error("expected a parse-done event")
	}
	if !sawIRGenDone {
		t.Error("expected an irgen-done event")
	}
}

func TestContextLoadVirtualAndCheck(t *testing.T) {
	c := driver.NewContext(driver.Options{})
	pf, err := c.LoadVirtual("test.vx", []byte("i32 answer() { return 42; }"))
	if err != nil {
		t.Fatalf("LoadVirtual: %v", err)
	}

	root := c.Store.NewScope(ast.ScopeGlobal, 0, "root")
	items := c.Store.AppendItems(c.Store.ItemsOf(pf.Items)...)
	if err := c.Check(&items, root); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if c.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", c.Bag.Items())
	}
	// Check skips IR generation, so no module should have been generated.
	if c.Generator.Mod != nil && c.Generator.Mod.Funcs.Len() != 0 {
		t.Errorf("Check() generated IR, want none")
	}
}

func TestDiscoverFilesFindsVoxFilesOnly(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(rel, content string) {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	mustWrite("a.vx", "i32 a() { return 0; }")
	mustWrite("nested/b.vx", "i32 b() { return 0; }")
	mustWrite("README.md", "not source")

	files, err := driver.DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("DiscoverFiles() = %v, want 2 .vx files", files)
	}
	for _, f := range files {
		if filepath.Ext(f) != driver.SourceExt {
			t.Errorf("DiscoverFiles() returned non-.vx file %q", f)
		}
	}
}

func TestTokenizeProducesEOF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.vx")
	if err := os.WriteFile(path, []byte("i32 x = 1;"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, _, toks, bag, err := driver.Tokenize(path)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) == 0 {
		t.Fatal("Tokenize() returned no tokens")
	}
	if last := toks[len(toks)-1]; last.Kind.String() != "EOF" {
		t.Errorf("last token kind = %v, want EOF", last.Kind)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestCompileFilesExternModuleCallProducesExternalReference(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.vx")
	src := `@extern(module, "kernel32") extern void ExitProcess(i32 code);
void main() { ExitProcess(0); }`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := driver.CompileFiles([]string{path}, driver.Options{})
	if err != nil {
		t.Fatalf("CompileFiles: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}

	mainName := res.Ctx.Interp.GetOrIntern("main")
	var externRefs, syscalls int
	for _, f := range res.Module.Funcs.Slice() {
		if f.Name != mainName {
			continue
		}
		for _, inst := range f.Instructions(f.Entry()) {
			h := f.Inst(inst)
			switch h.Op {
			case ir.OpCall:
				for _, arg := range f.Payload.Slice(h.Payload) {
					if arg.Kind() != ir.KindConst {
						continue
					}
					c := res.Module.Const(arg)
					if c.Kind == ir.ConstFunc {
						callee := res.Module.Func(c.Func)
						if callee.Extern {
							externRefs++
						}
					}
				}
			case ir.OpSyscall:
				syscalls++
			}
		}
	}
	if externRefs != 1 {
		t.Errorf("external references = %d, want exactly 1", externRefs)
	}
	if syscalls != 0 {
		t.Errorf("syscall instructions = %d, want 0", syscalls)
	}

	externName := res.Ctx.Interp.GetOrIntern("ExitProcess")
	found := false
	for _, f := range res.Module.Funcs.Slice() {
		if f.Name == externName && f.Extern {
			found = true
			modName, _ := res.Ctx.Interp.Lookup(f.ExternModule)
			if modName != "kernel32" {
				t.Errorf("ExternModule = %q, want %q", modName, "kernel32")
			}
		}
	}
	if !found {
		t.Fatal("expected an extern Func entry for ExitProcess")
	}
}

func TestCompileFilesExternSyscallCallProducesSyscallInstruction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.vx")
	src := `@extern(syscall, 60) extern void exit(i32 code);
void main() { exit(0); }`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := driver.CompileFiles([]string{path}, driver.Options{})
	if err != nil {
		t.Fatalf("CompileFiles: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}

	mainName := res.Ctx.Interp.GetOrIntern("main")
	var syscalls, externRefs int
	var immediate int64 = -1
	for _, f := range res.Module.Funcs.Slice() {
		if f.Name != mainName {
			continue
		}
		for _, inst := range f.Instructions(f.Entry()) {
			h := f.Inst(inst)
			switch h.Op {
			case ir.OpSyscall:
				syscalls++
				args := f.Payload.Slice(h.Payload)
				if len(args) > 0 {
					c := res.Module.Const(args[0])
					if c != nil && c.Kind == ir.ConstInt {
						immediate = c.IntValue
					}
				}
			case ir.OpCall:
				for _, arg := range f.Payload.Slice(h.Payload) {
					if arg.Kind() != ir.KindConst {
						continue
					}
					c := res.Module.Const(arg)
					if c.Kind == ir.ConstFunc {
						externRefs++
					}
				}
			}
		}
	}
	if syscalls != 1 {
		t.Fatalf("syscall instructions = %d, want exactly 1", syscalls)
	}
	if immediate != 60 {
		t.Errorf("syscall immediate = %d, want 60", immediate)
	}
	if externRefs != 0 {
		t.Errorf("external module references = %d, want 0", externRefs)
	}

	// exit's own @extern(syscall, ...) declaration never gets a Func
	// entry at all: the call site never addresses it through funcAddr.
	exitName := res.Ctx.Interp.GetOrIntern("exit")
	for _, f := range res.Module.Funcs.Slice() {
		if f.Name == exitName {
			t.Errorf("unexpected Func entry for a syscall-backed declaration: %+v", f)
		}
	}
}

func TestStageString(t *testing.T) {
	tests := map[driver.Stage]string{
		driver.StageLoad:     "loading",
		driver.StageParse:    "parsing",
		driver.StageRegister: "registering",
		driver.StageCheck:    "checking",
		driver.StageIRGen:    "lowering",
	}
	for stage, want := range tests {
		if got := stage.String(); got != want {
			t.Errorf("Stage(%d).String() = %q, want %q", stage, got, want)
		}
	}
}
