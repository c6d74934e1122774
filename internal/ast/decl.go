package ast

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/intern"
)

// DeclKind tags the variant of a Decl node. Declarations, not just
// top-level ones, also carry the four static-conditional item kinds
// (§4.4): `#if`/`#version`/`#foreach`/`#assert` parse as ordinary
// Decl nodes and are only ever consumed by the static-expansion sweep
// (§4.6) — by the time name resolution runs, none should remain in a
// live item list.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclModule
	DeclImport
	DeclAlias
	DeclStruct // also covers `union`, distinguished by FlagIsUnion
	DeclEnumType
	DeclEnumConst
	DeclEnumMember
	DeclVar
	DeclFunc
	DeclParam
	DeclField
	DeclTemplateParam
	DeclStaticIf
	DeclStaticVersion
	DeclStaticForeach
	DeclStaticAssert
)

func (k DeclKind) String() string {
	names := [...]string{
		"invalid", "module", "import", "alias", "struct", "enum_type",
		"enum_const", "enum_member", "var", "func", "param", "field",
		"template_param", "static_if", "static_version", "static_foreach",
		"static_assert",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "decl(?)"
}

// Decl is the tagged union of every declaration-like node. Fields are
// reused across kinds rather than given one name per kind; the
// comment on each field lists which kinds populate it.
type Decl struct {
	Header
	Kind DeclKind

	Name intern.ID // module/import/alias/struct/enum/var/func/param/field/template_param
	Path []intern.ID // module, import: dotted path segments

	Type Index // alias (target), var, param, field, enum_const, enum_member: declared type (may be Undefined if inferred)
	Init Index // var, param(default), field(default), enum_const(value), enum_member(explicit value), alias(target expr)

	TemplateParams arena.Span // struct, func, alias: Decl-kind DeclTemplateParam list
	Params         arena.Span // func: Decl-kind DeclParam list
	Members        arena.Span // struct/union, enum_type: Decl-kind item list (fields/enum members, possibly static-conditional)
	ReturnType     Index      // func: declared return type
	Body           Index      // func: Stmt-kind StmtBlock (Undefined if extern/no-body)

	BaseType Index // enum_type: optional explicit backing type

	Cond    Index      // static_if, static_assert: condition expression
	Then    arena.Span // static_if, static_version: selected-true item list
	Else    arena.Span // static_if, static_version: selected-false item list (may itself hold a nested static_if for else-if)
	Message Index      // static_assert: optional interpolated message expression

	VersionID intern.ID // static_version: the #version(ID) built-in identifier

	KeyName   intern.ID  // static_foreach: loop index binding name (bound as u64 enum_member)
	ValueName intern.ID  // static_foreach: loop element binding name
	Iterable  Index      // static_foreach: Expr-kind alias-array name-use
	ForBody   arena.Span // static_foreach: template item list to clone per iteration

	Scope ScopeIndex // module/struct/func/enum_type: the scope this declaration introduces, if any
}
