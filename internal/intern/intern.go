// Package intern implements the identifier-interning table of §4.2:
// a bijection between identifier strings and stable 32-bit ids, with
// a pre-populated prefix of well-known names so callers can recognize
// them by id equality instead of string comparison.
package intern

// ID is an interned identifier. The zero value never denotes a real
// identifier.
type ID uint32

const NoID ID = 0

// Table is the identifier interner. It is not safe for concurrent use
// without external locking — the whole pipeline is single-threaded
// per compilation context (§5).
type Table struct {
	byID  []string
	index map[string]ID
}

// well-known names, pre-populated in this exact order so their ids
// are stable across builds. The ID constants below index into this
// slice (offset by 1, since id 0 is NoID).
var builtinNames = []string{
	"this",
	"extern",
	"module",
	"syscall",
	// built-in #version identifiers (§6)
	"windows",
	"linux",
	"macos",
	"freebsd",
	"wasm",
	// built-in $id functions (reserved block, §4.2); grown as needed.
	"$sizeof",
	"$alignof",
	"$typeof",
	"$offsetof",
	// built-in scalar type names (§4.3); looked up directly by the
	// symbol table's root scope instead of going through the lexer's
	// keyword table (token.doc.go).
	"noreturn",
	"void",
	"bool",
	"null",
	"i8",
	"i16",
	"i32",
	"i64",
	"u8",
	"u16",
	"u32",
	"u64",
	"f32",
	"f64",
}

// These are the stable ids of the well-known names above. Callers
// compare interned ids against these instead of re-interning strings
// on every lookup.
const (
	This ID = 1 + ID(iota)
	Extern
	Module
	Syscall
	VersionWindows
	VersionLinux
	VersionMacOS
	VersionFreeBSD
	VersionWasm
	BuiltinSizeof
	BuiltinAlignof
	BuiltinTypeof
	BuiltinOffsetof
	TypeNoreturn
	TypeVoid
	TypeBool
	TypeNull
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeF32
	TypeF64
)

// basicTypeIDs lists the builtin id of each scalar type name, consumed
// by the symbol table when it seeds the root scope's basic-type
// declarations (§4.3).
var basicTypeIDs = [...]ID{
	TypeNoreturn, TypeVoid, TypeBool, TypeNull,
	TypeI8, TypeI16, TypeI32, TypeI64,
	TypeU8, TypeU16, TypeU32, TypeU64,
	TypeF32, TypeF64,
}

// BasicTypeIDs returns the ids of every pre-seeded scalar type name, in
// declaration order.
func BasicTypeIDs() []ID { return basicTypeIDs[:] }

// New creates a Table with the builtin name prefix already interned.
func New() *Table {
	t := &Table{
		byID:  make([]string, 1, len(builtinNames)+1+256),
		index: make(map[string]ID, len(builtinNames)+256),
	}
	t.byID[0] = "" // NoID
	for _, name := range builtinNames {
		t.intern(name)
	}
	return t
}

func (t *Table) intern(s string) ID {
	if id, ok := t.index[s]; ok {
		return id
	}
	id := ID(len(t.byID))
	t.byID = append(t.byID, s)
	t.index[s] = id
	return id
}

// GetOrIntern returns s's id, copying s into the table's backing
// storage only on first occurrence.
func (t *Table) GetOrIntern(s string) ID {
	return t.intern(s)
}

// Lookup returns the string for id, or ("", false) if id is unknown.
func (t *Table) Lookup(id ID) (string, bool) {
	if int(id) >= len(t.byID) {
		return "", false
	}
	return t.byID[id], true
}

// MustLookup panics if id is not present; used where the caller
// already holds a known-valid id (e.g. freshly interned).
func (t *Table) MustLookup(id ID) string {
	s, ok := t.Lookup(id)
	if !ok {
		panic("intern: unknown id")
	}
	return s
}

// Len returns the number of interned strings, including NoID.
func (t *Table) Len() int {
	return len(t.byID)
}

// IsBuiltinVersion reports whether id names a built-in #version
// identifier (§6); used by static expansion when evaluating
// `#version(ID)`.
func IsBuiltinVersion(id ID) bool {
	switch id {
	case VersionWindows, VersionLinux, VersionMacOS, VersionFreeBSD, VersionWasm:
		return true
	default:
		return false
	}
}
