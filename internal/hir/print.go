//nolint:errcheck // Type assertions are checked by construction
package hir

import (
	"fmt"
	"io"
	"strings"
)

// Printer dumps HIR to a stable text form. The output doubles as the
// fingerprint input, so changing it invalidates cached summaries.
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new HIR printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Dump writes fn to w.
func Dump(w io.Writer, fn *Func) {
	NewPrinter(w).PrintFunc(fn)
}

// String renders the function as text.
func (f *Func) String() string {
	var sb strings.Builder
	Dump(&sb, f)
	return sb.String()
}

// Signature renders only the function header, e.g.
// `fn sum(arr: &[i32]) -> i32`.
func (f *Func) Signature() string {
	if f == nil {
		return "<nil func>"
	}
	var sb strings.Builder
	NewPrinter(&sb).printSignature(f)
	return sb.String()
}

// String renders the expression as text.
func (e *Expr) String() string {
	var sb strings.Builder
	NewPrinter(&sb).printExpr(e)
	return sb.String()
}

// PrintFunc prints a function.
func (p *Printer) PrintFunc(f *Func) {
	if f == nil {
		p.printf("<nil func>\n")
		return
	}
	p.printSignature(f)
	p.printf(" {\n")
	p.indent++
	p.printBlock(f.Body)
	p.indent--
	p.printf("}\n")
}

func (p *Printer) printSignature(f *Func) {
	p.printf("fn %s", f.Name)
	if len(f.Lifetimes) > 0 {
		p.printf("<")
		for i, lt := range f.Lifetimes {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("'%s", lt)
		}
		p.printf(">")
	}
	p.printf("(")
	for i, param := range f.Params {
		if i > 0 {
			p.printf(", ")
		}
		p.printf("%s: %s", param.Name, param.Type)
	}
	p.printf(") -> %s", f.Result)
}

func (p *Printer) printBlock(b *Block) {
	if b == nil {
		return
	}
	for i := range b.Stmts {
		p.printStmt(&b.Stmts[i])
	}
}

func (p *Printer) printNested(b *Block) {
	p.printf(" {\n")
	p.indent++
	p.printBlock(b)
	p.indent--
	p.printIndent()
	p.printf("}")
}

func (p *Printer) printStmt(s *Stmt) {
	p.printIndent()
	p.printStmtInline(s)
	p.printf("\n")
}

func (p *Printer) printStmtInline(s *Stmt) {
	switch s.Kind {
	case StmtVarDecl:
		data := s.Data.(VarDeclData)
		p.printf("let %s: %s", data.Name, data.Type)
		if data.Init != nil {
			p.printf(" = ")
			p.printExpr(data.Init)
		}
		p.printf(";")
	case StmtAssign:
		data := s.Data.(AssignData)
		p.printf("%s = ", data.Target)
		p.printExpr(data.Value)
		p.printf(";")
	case StmtDerefAssign:
		data := s.Data.(DerefAssignData)
		p.printf("*")
		p.printExpr(data.Target)
		p.printf(" = ")
		p.printExpr(data.Value)
		p.printf(";")
	case StmtIndexAssign:
		data := s.Data.(IndexAssignData)
		p.printExpr(data.Array)
		p.printf("[")
		p.printExpr(data.Index)
		p.printf("] = ")
		p.printExpr(data.Value)
		p.printf(";")
	case StmtFieldAssign:
		data := s.Data.(FieldAssignData)
		p.printExpr(data.Object)
		if data.Through {
			p.printf("->%s = ", data.Field)
		} else {
			p.printf(".%s = ", data.Field)
		}
		p.printExpr(data.Value)
		p.printf(";")
	case StmtIf:
		data := s.Data.(IfData)
		p.printf("if ")
		p.printExpr(data.Cond)
		p.printNested(data.Then)
		if data.Else != nil {
			p.printf(" else")
			p.printNested(data.Else)
		}
	case StmtWhile:
		data := s.Data.(WhileData)
		p.printf("while ")
		p.printExpr(data.Cond)
		p.printNested(data.Body)
	case StmtFor:
		data := s.Data.(ForData)
		p.printf("for (")
		if data.Init != nil {
			p.printStmtInline(data.Init)
		} else {
			p.printf(";")
		}
		p.printf(" ")
		p.printExpr(data.Cond)
		p.printf("; ")
		if data.Post != nil {
			p.printStmtInline(data.Post)
		}
		p.printf(")")
		p.printNested(data.Body)
	case StmtSwitch:
		data := s.Data.(SwitchData)
		p.printf("switch ")
		p.printExpr(data.Cond)
		p.printf(" {\n")
		p.indent++
		for _, c := range data.Cases {
			p.printIndent()
			p.printf("case ")
			p.printExpr(c.Value)
			p.printf(":\n")
			p.indent++
			p.printBlock(&Block{Stmts: c.Body})
			p.indent--
		}
		if data.Default != nil {
			p.printIndent()
			p.printf("default:\n")
			p.indent++
			p.printBlock(data.Default)
			p.indent--
		}
		p.indent--
		p.printIndent()
		p.printf("}")
	case StmtReturn:
		data := s.Data.(ReturnData)
		p.printf("return")
		if data.Value != nil {
			p.printf(" ")
			p.printExpr(data.Value)
		}
		p.printf(";")
	case StmtBreak:
		p.printf("break;")
	case StmtContinue:
		p.printf("continue;")
	case StmtFree:
		data := s.Data.(FreeData)
		p.printf("free(")
		p.printExpr(data.Pointer)
		p.printf(");")
	case StmtExpr:
		data := s.Data.(ExprStmtData)
		p.printExpr(data.Expr)
		p.printf(";")
	default:
		p.printf("<%s>;", s.Kind)
	}
}

func (p *Printer) printExpr(e *Expr) {
	if e == nil {
		p.printf("<nil>")
		return
	}

	switch e.Kind {
	case ExprIntLit:
		p.printf("%d", e.Data.(IntLitData).Value)
	case ExprStringLit:
		p.printf("%q", e.Data.(StringLitData).Value)
	case ExprCharLit:
		p.printf("%q", rune(e.Data.(CharLitData).Value))
	case ExprNull:
		p.printf("NULL")
	case ExprVar:
		p.printf("%s", e.Data.(VarData).Name)
	case ExprUnary:
		data := e.Data.(UnaryData)
		switch data.Op {
		case UnaryPostInc, UnaryPostDec:
			p.printExpr(data.Operand)
			p.printf("%s", strings.TrimPrefix(data.Op.String(), "post"))
		default:
			p.printf("%s", strings.TrimSuffix(data.Op.String(), "pre"))
			p.printExpr(data.Operand)
		}
	case ExprBinary:
		data := e.Data.(BinaryData)
		p.printf("(")
		p.printExpr(data.Left)
		p.printf(" %s ", data.Op)
		p.printExpr(data.Right)
		p.printf(")")
	case ExprDeref:
		p.printf("*")
		p.printExpr(e.Data.(DerefData).Inner)
	case ExprAddrOf:
		p.printf("&")
		p.printExpr(e.Data.(AddrOfData).Inner)
	case ExprCall:
		data := e.Data.(CallData)
		p.printf("%s(", data.Func)
		p.printArgs(data.Args)
		p.printf(")")
	case ExprField:
		data := e.Data.(FieldData)
		p.printExpr(data.Object)
		p.printf(".%s", data.Field)
	case ExprPtrField:
		data := e.Data.(FieldData)
		p.printExpr(data.Object)
		p.printf("->%s", data.Field)
	case ExprIndex:
		data := e.Data.(IndexData)
		p.printExpr(data.Array)
		p.printf("[")
		p.printExpr(data.Index)
		p.printf("]")
	case ExprSliceIndex:
		data := e.Data.(IndexData)
		p.printExpr(data.Array)
		p.printf("[")
		p.printExpr(data.Index)
		p.printf(" as usize]")
	case ExprCast:
		data := e.Data.(CastData)
		p.printf("(%s)", data.Target)
		p.printExpr(data.Inner)
	case ExprSizeof:
		p.printf("sizeof(%s)", e.Data.(SizeofData).Of)
	case ExprMalloc:
		p.printf("malloc(")
		p.printExpr(e.Data.(MallocData).Size)
		p.printf(")")
	case ExprCalloc:
		data := e.Data.(CallocData)
		p.printf("calloc(")
		p.printExpr(data.Count)
		p.printf(", sizeof(%s))", data.Elem)
	case ExprRealloc:
		data := e.Data.(ReallocData)
		p.printf("realloc(")
		p.printExpr(data.Pointer)
		p.printf(", ")
		p.printExpr(data.Size)
		p.printf(")")
	case ExprMethodCall:
		data := e.Data.(MethodCallData)
		p.printExpr(data.Receiver)
		p.printf(".%s(", data.Method)
		p.printArgs(data.Args)
		p.printf(")")
	case ExprIsNotNull:
		p.printExpr(e.Data.(IsNotNullData).Inner)
		p.printf(" != NULL")
	case ExprSubslice:
		data := e.Data.(SubsliceData)
		if data.Mutable {
			p.printf("&mut ")
		} else {
			p.printf("&")
		}
		p.printExpr(data.Array)
		p.printf("[")
		if data.From != nil {
			if lit, ok := data.From.Data.(IntLitData); !ok || lit.Value != 0 {
				p.printExpr(data.From)
			}
		}
		p.printf("..]")
	default:
		p.printf("<%s>", e.Kind)
	}
}

func (p *Printer) printArgs(args []*Expr) {
	for i, arg := range args {
		if i > 0 {
			p.printf(", ")
		}
		p.printExpr(arg)
	}
}

func (p *Printer) printIndent() {
	for range p.indent {
		p.printf("  ")
	}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}
