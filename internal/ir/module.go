package ir

import "github.com/sdvcn/vox/internal/arena"

// Module collects every Func and Global package irgen produces for
// one compilation. Constants are pooled here rather than per-Func:
// they carry no function-local state (no definition handle, no
// users), so unlike virtual registers or blocks there is nothing a
// single function would otherwise own about one.
type Module struct {
	Funcs   *arena.Arena[Func]
	Globals *arena.Arena[Global]
	Consts  *arena.Arena[Const]
	Items   *arena.Pool[Index] // ConstAggregate element lists
}

func NewModule() *Module {
	return &Module{
		Funcs:   arena.New[Func](16),
		Globals: arena.New[Global](16),
		Consts:  arena.New[Const](64),
		Items:   arena.NewPool[Index](64),
	}
}

func (m *Module) AllocFunc(f Func) Index     { return MakeIndex(KindFunc, m.Funcs.Alloc(f)) }
func (m *Module) AllocGlobal(g Global) Index { return MakeIndex(KindGlobal, m.Globals.Alloc(g)) }
func (m *Module) AllocConst(c Const) Index   { return MakeIndex(KindConst, m.Consts.Alloc(c)) }

func (m *Module) Func(idx Index) *Func {
	if idx.Kind() != KindFunc {
		return nil
	}
	return m.Funcs.Get(idx.Payload())
}

func (m *Module) Global(idx Index) *Global {
	if idx.Kind() != KindGlobal {
		return nil
	}
	return m.Globals.Get(idx.Payload())
}

func (m *Module) Const(idx Index) *Const {
	if idx.Kind() != KindConst {
		return nil
	}
	return m.Consts.Get(idx.Payload())
}
