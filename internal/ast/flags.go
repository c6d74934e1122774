package ast

// Flags is the 16-bit flag word carried by every node header (§3, §4.3).
type Flags uint16

const (
	FlagLValue Flags = 1 << iota
	FlagIsType
	FlagIsGlobal
	FlagIsMember
	FlagHasAttributes
	// per-kind sub-flags, reused across Decl/Stmt/Expr/TypeNode as noted.
	FlagVariadicParam // DeclParam: `...` trailing parameter
	FlagIsUnion       // DeclStruct: struct vs. union shape
	FlagIsOpaque      // DeclStruct: forward-declared, no member list yet
	FlagIsInline      // DeclFunc: parsed `#inline`
	FlagIsExtern      // DeclFunc/DeclVar: body/initializer supplied externally
	FlagIsPub         // any Decl: `pub` visibility
	FlagIsMut         // DeclParam/DeclVar: `mut` binding
	FlagIsConst       // DeclVar: `const` binding
	FlagNeedsDeref    // ExprMember: implicit-this rewrite target is a pointer
	FlagErrorNode     // sentinel set on nodes synthesized to stop cascades
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// AnalysisState is the coarse, monotonically advancing per-node
// lifecycle enum of §3.
type AnalysisState uint8

const (
	StateUnprocessed AnalysisState = iota
	StateParseDone
	StateNameRegisterSelfDone
	StateNameRegisterNestedDone
	StateNameResolveDone
	StateTypeCheckDone
	StateIRGenDone
)

func (s AnalysisState) String() string {
	switch s {
	case StateUnprocessed:
		return "unprocessed"
	case StateParseDone:
		return "parse_done"
	case StateNameRegisterSelfDone:
		return "name_register_self_done"
	case StateNameRegisterNestedDone:
		return "name_register_nested_done"
	case StateNameResolveDone:
		return "name_resolve_done"
	case StateTypeCheckDone:
		return "type_check_done"
	case StateIRGenDone:
		return "ir_gen_done"
	default:
		return "invalid_state"
	}
}

// AtLeast reports whether s has advanced past or reached want, used by
// callers that must refuse to read a field not yet computed (§3's
// "no node is read at a level beyond its current state").
func (s AnalysisState) AtLeast(want AnalysisState) bool { return s >= want }

// PropKind names one of the tri-state properties tracked independently
// of the coarse AnalysisState, used by the analysis driver's
// cycle-detecting require_property (§4.5).
type PropKind uint8

const (
	PropNameRegisterSelf PropKind = iota
	PropNameRegisterNested
	PropNameResolve
	PropType
	PropIRGen
	numProps
)

// TriState is the per-property calculation status.
type TriState uint8

const (
	NotCalculated TriState = iota
	Calculating
	Calculated
)

const propBits = 2

// PropSet packs numProps tri-states into a 16-bit word, two bits each.
type PropSet uint16

func (p PropSet) Get(prop PropKind) TriState {
	shift := uint(prop) * propBits
	return TriState((p >> shift) & 0x3)
}

func (p PropSet) Set(prop PropKind, state TriState) PropSet {
	shift := uint(prop) * propBits
	mask := PropSet(0x3) << shift
	return (p &^ mask) | (PropSet(state) << shift)
}
