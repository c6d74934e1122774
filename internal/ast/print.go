package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/intern"
)

// Printer renders a subtree back to source text. It is deliberately
// whitespace-minimal: the round-trip property of §8 is stated modulo
// whitespace, so Printer favors a single canonical spacing over
// reproducing the original layout.
type Printer struct {
	Store  *Store
	Interp *intern.Table
}

func (p *Printer) name(id intern.ID) string {
	if id == intern.NoID {
		return "_"
	}
	s, ok := p.Interp.Lookup(id)
	if !ok {
		return "?"
	}
	return s
}

func (p *Printer) Expr(idx Index) string {
	if idx == Undefined {
		return ""
	}
	e := p.Store.Expr(idx)
	if e == nil {
		return "<!expr>"
	}
	switch e.Kind {
	case ExprNameUse:
		return p.name(e.NameID)
	case ExprIntLit:
		return strconv.FormatInt(e.IntValue, 10)
	case ExprUintLit:
		return strconv.FormatUint(e.UintValue, 10)
	case ExprFloatLit:
		return strconv.FormatFloat(e.FloatValue, 'g', -1, 64)
	case ExprBoolLit:
		return strconv.FormatBool(e.BoolValue)
	case ExprNullLit:
		return "null"
	case ExprThis:
		return "this"
	case ExprStringLit:
		return strconv.Quote(p.name(e.StringValue))
	case ExprBinary:
		return fmt.Sprintf("(%s %s %s)", p.Expr(e.LHS), binOpText[e.BinOp], p.Expr(e.RHS))
	case ExprUnary:
		switch e.UnOp {
		case UnDeref:
			return fmt.Sprintf("(*%s)", p.Expr(e.Operand))
		default:
			return fmt.Sprintf("(%s%s)", unOpText[e.UnOp], p.Expr(e.Operand))
		}
	case ExprAssign:
		return fmt.Sprintf("%s %s %s", p.Expr(e.LHS), assignOpText[e.AssignOp], p.Expr(e.RHS))
	case ExprCall:
		return fmt.Sprintf("%s(%s)", p.Expr(e.Callee), p.exprList(e.Args))
	case ExprIndex:
		return fmt.Sprintf("%s[%s]", p.Expr(e.Base), p.Expr(e.Subscript))
	case ExprMember:
		return fmt.Sprintf("%s.%s", p.Expr(e.Base), p.name(e.NameID))
	case ExprCast:
		return fmt.Sprintf("cast(%s) %s", p.Type(e.CastType), p.Expr(e.Operand))
	case ExprArrayLit:
		return fmt.Sprintf("[%s]", p.exprList(e.Args))
	default:
		return "<!expr>"
	}
}

func (p *Printer) exprList(sp arena.Span) string {
	items := p.Store.ItemsOf(sp)
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = p.Expr(it)
	}
	return strings.Join(parts, ", ")
}

var binOpText = map[BinaryOp]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%",
	BinShl: "<<", BinShr: ">>", BinBitAnd: "&", BinBitOr: "|", BinBitXor: "^",
	BinLogicalAnd: "&&", BinLogicalOr: "||", BinEq: "==", BinNotEq: "!=",
	BinLt: "<", BinLtEq: "<=", BinGt: ">", BinGtEq: ">=",
}

var unOpText = map[UnaryOp]string{
	UnNeg: "-", UnNot: "!", UnBitNot: "~", UnAddrOf: "&",
}

var assignOpText = map[AssignOp]string{
	AssignPlain: "=", AssignAdd: "+=", AssignSub: "-=", AssignMul: "*=",
	AssignDiv: "/=", AssignMod: "%=", AssignBitAnd: "&=", AssignBitOr: "|=",
	AssignBitXor: "^=", AssignShl: "<<=", AssignShr: ">>=",
}

func (p *Printer) Type(idx Index) string {
	if idx == Undefined {
		return ""
	}
	tn := p.Store.Type(idx)
	if tn == nil {
		return "<!type>"
	}
	switch tn.Kind {
	case TypeNameUse:
		return p.Expr(tn.NameUse)
	case TypeBasic:
		return basicText[tn.Basic]
	case TypePointer:
		return p.Type(tn.Elem) + "*"
	case TypeSlice:
		return p.Type(tn.Elem) + "[]"
	case TypeStaticArray:
		return fmt.Sprintf("%s[%s]", p.Type(tn.Elem), p.Expr(tn.ArrayLen))
	case TypeFuncSig:
		params := make([]string, 0, tn.Params.Len)
		for _, pt := range p.Store.ItemsOf(tn.Params) {
			params = append(params, p.Type(pt))
		}
		if tn.Variadic {
			params = append(params, "...")
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), p.Type(tn.ReturnType))
	case TypeStruct, TypeEnum:
		if d := p.Store.Decl(tn.Decl); d != nil {
			return p.name(d.Name)
		}
		return "<!named-type>"
	default:
		return "<!type>"
	}
}

var basicText = map[BasicKind]string{
	BasicNoreturn: "noreturn", BasicVoid: "void", BasicBool: "bool", BasicNull: "null",
	BasicI8: "i8", BasicI16: "i16", BasicI32: "i32", BasicI64: "i64",
	BasicU8: "u8", BasicU16: "u16", BasicU32: "u32", BasicU64: "u64",
	BasicF32: "f32", BasicF64: "f64",
}

func (p *Printer) Stmt(idx Index) string {
	st := p.Store.Stmt(idx)
	if st == nil {
		if d := p.Store.Decl(idx); d != nil {
			return p.Decl(idx) + ";"
		}
		return "<!stmt>"
	}
	switch st.Kind {
	case StmtBlock:
		var b strings.Builder
		b.WriteString("{ ")
		for _, item := range p.Store.ItemsOf(st.Items) {
			b.WriteString(p.Stmt(item))
			b.WriteString(" ")
		}
		b.WriteString("}")
		return b.String()
	case StmtExpr:
		return p.Expr(st.Expr) + ";"
	case StmtIf:
		s := fmt.Sprintf("if (%s) %s", p.Expr(st.Expr), p.Stmt(st.Then))
		if st.Else != Undefined {
			s += " else " + p.Stmt(st.Else)
		}
		return s
	case StmtWhile:
		return fmt.Sprintf("while (%s) %s", p.Expr(st.Expr), p.Stmt(st.Body))
	case StmtForIn:
		return fmt.Sprintf("for (%s in %s) %s", p.Decl(st.LoopVar), p.Expr(st.Iterable), p.Stmt(st.Body))
	case StmtBreak:
		return "break;"
	case StmtContinue:
		return "continue;"
	case StmtReturn:
		if st.Expr == Undefined {
			return "return;"
		}
		return "return " + p.Expr(st.Expr) + ";"
	default:
		return "<!stmt>"
	}
}

func (p *Printer) Decl(idx Index) string {
	d := p.Store.Decl(idx)
	if d == nil {
		return "<!decl>"
	}
	switch d.Kind {
	case DeclVar:
		s := fmt.Sprintf("%s %s", p.Type(d.Type), p.name(d.Name))
		if d.Init != Undefined {
			s += " = " + p.Expr(d.Init)
		}
		return s
	case DeclFunc:
		s := fmt.Sprintf("%s %s(%s)", p.Type(d.ReturnType), p.name(d.Name), p.declList(d.Params))
		if d.Body != Undefined {
			s += " " + p.Stmt(d.Body)
		} else {
			s += ";"
		}
		return s
	case DeclParam:
		return fmt.Sprintf("%s %s", p.Type(d.Type), p.name(d.Name))
	case DeclField:
		return fmt.Sprintf("%s %s", p.Type(d.Type), p.name(d.Name))
	case DeclAlias:
		return fmt.Sprintf("alias %s = %s", p.name(d.Name), p.Expr(d.Init))
	case DeclStruct:
		kw := "struct"
		if d.Flags.Has(FlagIsUnion) {
			kw = "union"
		}
		if d.Flags.Has(FlagIsOpaque) {
			return fmt.Sprintf("%s %s;", kw, p.name(d.Name))
		}
		return fmt.Sprintf("%s %s { %s }", kw, p.name(d.Name), p.declList(d.Members))
	case DeclModule:
		return fmt.Sprintf("module %s;", p.path(d.Path))
	case DeclImport:
		s := fmt.Sprintf("import %s", p.path(d.Path))
		if len(d.Path) == 0 || d.Path[len(d.Path)-1] != d.Name {
			s += " as " + p.name(d.Name)
		}
		return s + ";"
	case DeclTemplateParam:
		return p.name(d.Name)
	case DeclEnumType:
		if d.Flags.Has(FlagIsOpaque) {
			return fmt.Sprintf("enum %s;", p.name(d.Name))
		}
		s := "enum"
		if d.Name != intern.NoID {
			s += " " + p.name(d.Name)
		}
		if d.BaseType != Undefined {
			s += " : " + p.Type(d.BaseType)
		}
		return s + fmt.Sprintf(" { %s }", p.declList(d.Members))
	case DeclEnumConst:
		s := "enum"
		if d.Type != Undefined {
			s += " " + p.Type(d.Type)
		}
		return fmt.Sprintf("%s %s = %s;", s, p.name(d.Name), p.Expr(d.Init))
	case DeclEnumMember:
		if d.Init == Undefined {
			return p.name(d.Name)
		}
		return fmt.Sprintf("%s = %s", p.name(d.Name), p.Expr(d.Init))
	case DeclStaticIf:
		s := fmt.Sprintf("#if (%s) { %s }", p.Expr(d.Cond), p.declList(d.Then))
		if len(p.Store.ItemsOf(d.Else)) > 0 {
			s += fmt.Sprintf(" else { %s }", p.declList(d.Else))
		}
		return s
	case DeclStaticVersion:
		s := fmt.Sprintf("#version(%s) { %s }", p.name(d.VersionID), p.declList(d.Then))
		if len(p.Store.ItemsOf(d.Else)) > 0 {
			s += fmt.Sprintf(" else { %s }", p.declList(d.Else))
		}
		return s
	case DeclStaticForeach:
		return fmt.Sprintf("#foreach(%s, %s in %s) { %s }", p.name(d.KeyName), p.name(d.ValueName), p.Expr(d.Iterable), p.declList(d.ForBody))
	case DeclStaticAssert:
		if d.Message == Undefined {
			return fmt.Sprintf("#assert(%s);", p.Expr(d.Cond))
		}
		return fmt.Sprintf("#assert(%s, %s);", p.Expr(d.Cond), p.Expr(d.Message))
	default:
		return "<!decl>"
	}
}

func (p *Printer) path(ids []intern.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = p.name(id)
	}
	return strings.Join(parts, ".")
}

func (p *Printer) declList(sp arena.Span) string {
	items := p.Store.ItemsOf(sp)
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = p.Decl(it)
	}
	return strings.Join(parts, ", ")
}
