package project

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/ir"
)

// dumpSchemaVersion guards DumpAST/DumpIR's wire shape the same way
// diskCacheSchemaVersion guarded the teacher's on-disk cache payload;
// bump it whenever a field is added or removed below.
const dumpSchemaVersion uint16 = 1

// AstDump is the msgpack-encoded shape `voxc parse --dump-ast`
// writes: every top-level declaration's kind,
// name and source span, flattened out of the arena handles those
// commands hold internally. It is meant for golden-file regeneration
// and crash-repro bundles, not for reloading into a Store.
type AstDump struct {
	Schema uint16
	Items  []AstDumpItem
}

type AstDumpItem struct {
	Kind string
	Name string
	File uint32
	Pos  uint32
	End  uint32
}

// DumpAST reduces items to an AstDump and writes it to w.
func DumpAST(w io.Writer, store *ast.Store, interp *intern.Table, items []ast.Index) error {
	dump := AstDump{Schema: dumpSchemaVersion, Items: make([]AstDumpItem, 0, len(items))}
	for _, idx := range items {
		if idx.Kind() != ast.KindDecl {
			continue
		}
		d := store.Decl(idx)
		name, _ := interp.Lookup(d.Name)
		dump.Items = append(dump.Items, AstDumpItem{
			Kind: d.Kind.String(),
			Name: name,
			File: uint32(d.Span.File),
			Pos:  d.Span.Start,
			End:  d.Span.End,
		})
	}
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&dump)
}

// IrDump is the msgpack-encoded shape `voxc build --dump-ir` writes: a
// per-function block/instruction/vreg census plus the module's global
// and constant counts, reduced out of the arena-backed ir.Module the
// same run produced.
type IrDump struct {
	Schema  uint16
	Funcs   []IrFuncDump
	Globals int
	Consts  int
}

type IrFuncDump struct {
	Name     string
	Blocks   int
	NumVRegs int
	NumInsts int
	Params   int
}

// DumpIR reduces mod to an IrDump and writes it to w.
func DumpIR(w io.Writer, mod *ir.Module, interp *intern.Table) error {
	dump := IrDump{
		Schema:  dumpSchemaVersion,
		Funcs:   make([]IrFuncDump, 0, mod.Funcs.Len()),
		Globals: int(mod.Globals.Len()),
		Consts:  int(mod.Consts.Len()),
	}
	for _, f := range mod.Funcs.Slice() {
		name, _ := interp.Lookup(f.Name)
		dump.Funcs = append(dump.Funcs, IrFuncDump{
			Name:     name,
			Blocks:   int(f.Blocks.Len()),
			NumVRegs: int(f.VRegs.Len()),
			NumInsts: int(f.Insts.Len()),
			Params:   f.NumParams,
		})
	}
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&dump)
}
