package diag

import "fmt"

// Code identifies a distinct diagnosable condition. Ranges mirror the
// pipeline stage that raises them: 1xxx lex/parse, 2xxx static
// expansion, 3xxx name resolution, 4xxx cycle detection, 5xxx type
// checking, 6xxx static assert, 7xxx IR-builder contract violations.
type Code uint16

const (
	UnknownCode Code = 0

	// Lex / parse (§7.1)
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005
	SynUnexpectedToken          Code = 1100
	SynExpectedToken            Code = 1101
	SynUnclosedDelimiter        Code = 1102
	SynExpectIdentifier         Code = 1103
	SynExpectType               Code = 1104
	SynExpectExpression         Code = 1105
	SynDuplicateVariadic        Code = 1106
	SynBadEnumShape             Code = 1107
	SynAttributeMisplaced       Code = 1108
	SynBadExternForm            Code = 1109

	// Static expansion (§7.2)
	ExpUnknownVersionID  Code = 2001
	ExpForeachNotAliases Code = 2002
	ExpBadStaticIf       Code = 2003

	// Name (§7.3)
	NameUndefinedIdentifier Code = 3001
	NameModuleConflict      Code = 3002
	NameDuplicateDecl       Code = 3003

	// Cycle (§7.4)
	CyclePropertyDependency Code = 4001

	// Type (§7.5)
	TypeMismatch          Code = 5001
	TypeLvalueRequired    Code = 5002
	TypeInvalidCast       Code = 5003
	TypeAddressOfRvalue   Code = 5004
	TypeWrongArgCount     Code = 5005
	TypeMissingDefaultArg Code = 5006
	TypeNotCallable       Code = 5007
	TypeNoSuchMember      Code = 5008

	// Static assert (§7.6)
	AssertFailed Code = 6001

	// IR-builder contract (§7.7, internal error class)
	IRSealedBlockTarget    Code = 7001
	IRBlockAlreadyFinished Code = 7002
	IRReturnInVoidFn       Code = 7003
	IRUnsealedAtFinalize   Code = 7004

	// Project / module graph (§6, module-tree discovery and the import
	// DAG built over it)
	ProjDuplicateModule  Code = 8001
	ProjMissingModule    Code = 8002
	ProjSelfImport       Code = 8003
	ProjImportCycle      Code = 8004
	ProjDependencyFailed Code = 8005
)

var codeDescription = map[Code]string{
	UnknownCode:                 "unknown error",
	LexUnknownChar:              "unknown character",
	LexUnterminatedString:       "unterminated string literal",
	LexUnterminatedBlockComment: "unterminated block comment",
	LexBadNumber:                "malformed numeric literal",
	LexTokenTooLong:             "token exceeds maximum length",
	SynUnexpectedToken:          "unexpected token",
	SynExpectedToken:            "expected a different token",
	SynUnclosedDelimiter:        "unclosed delimiter",
	SynExpectIdentifier:         "expected an identifier",
	SynExpectType:               "expected a type",
	SynExpectExpression:         "expected an expression",
	SynDuplicateVariadic:        "duplicate variadic parameter",
	SynBadEnumShape:             "malformed enum declaration",
	SynAttributeMisplaced:       "attribute not allowed here",
	SynBadExternForm:            "malformed @extern attribute",
	ExpUnknownVersionID:         "unrecognized built-in #version identifier",
	ExpForeachNotAliases:        "#foreach source is not an alias-array",
	ExpBadStaticIf:              "malformed static conditional",
	NameUndefinedIdentifier:     "undefined identifier",
	NameModuleConflict:          "conflicting module declarations",
	NameDuplicateDecl:           "duplicate declaration in scope",
	CyclePropertyDependency:     "circular dependency in property resolution",
	TypeMismatch:                "incompatible types",
	TypeLvalueRequired:          "lvalue required",
	TypeInvalidCast:             "invalid cast",
	TypeAddressOfRvalue:         "cannot take address of a non-lvalue",
	TypeWrongArgCount:           "wrong number of arguments",
	TypeMissingDefaultArg:       "missing default argument",
	TypeNotCallable:             "value is not callable",
	TypeNoSuchMember:            "no such member",
	AssertFailed:                "static assertion failed",
	IRSealedBlockTarget:         "added a predecessor to an already sealed block",
	IRBlockAlreadyFinished:      "block already has a terminator",
	IRReturnInVoidFn:            "returned a value from a void function",
	IRUnsealedAtFinalize:        "block left unsealed at end of construction",
	ProjDuplicateModule:         "duplicate module declaration",
	ProjMissingModule:           "import refers to a missing module",
	ProjSelfImport:              "module imports itself",
	ProjImportCycle:             "import cycle between modules",
	ProjDependencyFailed:        "imported module failed to compile",
}

// ID renders the stage-prefixed code string, e.g. "SYN1100".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 1100:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 1100 && ic < 2000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("EXP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("NAM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CYC%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("AST%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IRB%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

// Title returns the human-readable description registered for c.
func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
