package fixture

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paiml/decy-sub003/internal/hir"
)

var unaryOps = map[string]hir.UnaryOp{
	"-":        hir.UnaryNeg,
	"neg":      hir.UnaryNeg,
	"!":        hir.UnaryNot,
	"not":      hir.UnaryNot,
	"~":        hir.UnaryBitNot,
	"bitnot":   hir.UnaryBitNot,
	"pre_inc":  hir.UnaryPreInc,
	"pre_dec":  hir.UnaryPreDec,
	"post_inc": hir.UnaryPostInc,
	"post_dec": hir.UnaryPostDec,
}

// ErrNodeShape reports a node with no kind key or with several.
var ErrNodeShape = errors.New("node must have exactly one kind key")

// converter tracks the position in the document for error messages.
type converter struct {
	path []string
}

func (c *converter) push(format string, args ...any) { c.path = append(c.path, fmt.Sprintf(format, args...)) }
func (c *converter) pop()                            { c.path = c.path[:len(c.path)-1] }

func (c *converter) errorf(format string, args ...any) error {
	return fmt.Errorf("%s: %s", strings.Join(c.path, "."), fmt.Sprintf(format, args...))
}

func (c *converter) wrap(err error) error {
	return fmt.Errorf("%s: %w", strings.Join(c.path, "."), err)
}

// Build converts a decoded document into HIR functions.
func (f *File) Build() ([]*hir.Func, error) {
	out := make([]*hir.Func, 0, len(f.Functions))
	seen := make(map[string]bool, len(f.Functions))
	for i := range f.Functions {
		c := &converter{}
		c.push("functions[%d]", i)
		fn, err := c.function(&f.Functions[i])
		if err != nil {
			return nil, err
		}
		if seen[fn.Name] {
			return nil, c.errorf("duplicate function %q", fn.Name)
		}
		seen[fn.Name] = true
		out = append(out, fn)
	}
	return out, nil
}

func (c *converter) typ(s string) (hir.Type, error) {
	if strings.TrimSpace(s) == "" {
		return hir.Void(), nil
	}
	t, err := hir.ParseType(s)
	if err != nil {
		return hir.Type{}, c.wrap(err)
	}
	return t, nil
}

func (c *converter) function(n *FuncNode) (*hir.Func, error) {
	if n.Name == "" {
		return nil, c.errorf("function name is required")
	}
	c.path[len(c.path)-1] = n.Name
	result, err := c.typ(n.Returns)
	if err != nil {
		return nil, err
	}
	params := make([]hir.Param, 0, len(n.Params))
	for i, p := range n.Params {
		c.push("params[%d]", i)
		if p.Name == "" {
			return nil, c.errorf("parameter name is required")
		}
		t, err := c.typ(p.Type)
		if err != nil {
			return nil, err
		}
		if t.Kind == hir.TypeVoid {
			return nil, c.errorf("parameter %s has no type", p.Name)
		}
		params = append(params, hir.Param{Name: p.Name, Type: t})
		c.pop()
	}
	body, err := c.stmts("body", n.Body)
	if err != nil {
		return nil, err
	}
	return hir.NewFunc(n.Name, result, params, body...), nil
}

func (c *converter) stmts(field string, nodes []StmtNode) ([]hir.Stmt, error) {
	out := make([]hir.Stmt, 0, len(nodes))
	for i := range nodes {
		c.push("%s[%d]", field, i)
		s, err := c.stmt(&nodes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		c.pop()
	}
	return out, nil
}

func (c *converter) stmtPtr(field string, n *StmtNode) (*hir.Stmt, error) {
	if n == nil {
		return nil, nil
	}
	c.push("%s", field)
	defer c.pop()
	s, err := c.stmt(n)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func (c *converter) stmt(n *StmtNode) (hir.Stmt, error) {
	if countSet(n.Decl != nil, n.Assign != nil, n.DerefAssign != nil, n.IndexAssign != nil,
		n.FieldAssign != nil, n.If != nil, n.While != nil, n.For != nil, n.Switch != nil,
		n.Return != nil, n.Free != nil, n.Expr != nil, n.Break, n.Continue) != 1 {
		return hir.Stmt{}, c.wrap(ErrNodeShape)
	}

	switch {
	case n.Decl != nil:
		if n.Decl.Name == "" {
			return hir.Stmt{}, c.errorf("decl name is required")
		}
		t, err := c.typ(n.Decl.Type)
		if err != nil {
			return hir.Stmt{}, err
		}
		init, err := c.optExpr("init", n.Decl.Init)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.Decl(n.Decl.Name, t, init), nil

	case n.Assign != nil:
		if n.Assign.Target == "" {
			return hir.Stmt{}, c.errorf("assign target is required")
		}
		v, err := c.expr("value", n.Assign.Value)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.Assign(n.Assign.Target, v), nil

	case n.DerefAssign != nil:
		target, value, err := c.pair("target", n.DerefAssign.Target, "value", n.DerefAssign.Value)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.DerefAssign(target, value), nil

	case n.IndexAssign != nil:
		arr, idx, err := c.pair("array", n.IndexAssign.Array, "index", n.IndexAssign.Index)
		if err != nil {
			return hir.Stmt{}, err
		}
		v, err := c.expr("value", n.IndexAssign.Value)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.IndexAssign(arr, idx, v), nil

	case n.FieldAssign != nil:
		obj, v, err := c.pair("object", n.FieldAssign.Object, "value", n.FieldAssign.Value)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.FieldAssign(obj, n.FieldAssign.Field, v, n.FieldAssign.Arrow), nil

	case n.If != nil:
		cond, err := c.expr("cond", n.If.Cond)
		if err != nil {
			return hir.Stmt{}, err
		}
		then, err := c.stmts("then", n.If.Then)
		if err != nil {
			return hir.Stmt{}, err
		}
		var els []hir.Stmt
		if n.If.Else != nil {
			if els, err = c.stmts("else", n.If.Else); err != nil {
				return hir.Stmt{}, err
			}
		}
		return hir.If(cond, then, els), nil

	case n.While != nil:
		cond, err := c.expr("cond", n.While.Cond)
		if err != nil {
			return hir.Stmt{}, err
		}
		body, err := c.stmts("body", n.While.Body)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.While(cond, body...), nil

	case n.For != nil:
		init, err := c.stmtPtr("init", n.For.Init)
		if err != nil {
			return hir.Stmt{}, err
		}
		cond, err := c.optExpr("cond", n.For.Cond)
		if err != nil {
			return hir.Stmt{}, err
		}
		post, err := c.stmtPtr("post", n.For.Post)
		if err != nil {
			return hir.Stmt{}, err
		}
		body, err := c.stmts("body", n.For.Body)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.For(init, cond, post, body...), nil

	case n.Switch != nil:
		return c.switchStmt(n.Switch)

	case n.Return != nil:
		v, err := c.optExpr("return", &n.Return.ExprNode)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.Return(v), nil

	case n.Free != nil:
		p, err := c.expr("free", n.Free)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.Free(p), nil

	case n.Expr != nil:
		e, err := c.expr("expr", n.Expr)
		if err != nil {
			return hir.Stmt{}, err
		}
		return hir.ExprStmt(e), nil

	case n.Break:
		return hir.Break(), nil
	default:
		return hir.Continue(), nil
	}
}

func (c *converter) switchStmt(n *SwitchNode) (hir.Stmt, error) {
	cond, err := c.expr("cond", n.Cond)
	if err != nil {
		return hir.Stmt{}, err
	}
	data := hir.SwitchData{Cond: cond}
	for i := range n.Cases {
		c.push("cases[%d]", i)
		v, err := c.expr("value", n.Cases[i].Value)
		if err != nil {
			return hir.Stmt{}, err
		}
		body, err := c.stmts("body", n.Cases[i].Body)
		if err != nil {
			return hir.Stmt{}, err
		}
		data.Cases = append(data.Cases, hir.SwitchCase{Value: v, Body: body})
		c.pop()
	}
	if n.Default != nil {
		body, err := c.stmts("default", n.Default)
		if err != nil {
			return hir.Stmt{}, err
		}
		data.Default = hir.NewBlock(body...)
	}
	return hir.Stmt{Kind: hir.StmtSwitch, Data: data}, nil
}

func (c *converter) pair(fa string, a *ExprNode, fb string, b *ExprNode) (*hir.Expr, *hir.Expr, error) {
	ea, err := c.expr(fa, a)
	if err != nil {
		return nil, nil, err
	}
	eb, err := c.expr(fb, b)
	if err != nil {
		return nil, nil, err
	}
	return ea, eb, nil
}

// optExpr converts n, returning nil for an absent or empty node.
func (c *converter) optExpr(field string, n *ExprNode) (*hir.Expr, error) {
	if n == nil || n.count() == 0 {
		return nil, nil
	}
	return c.expr(field, n)
}

func (n *ExprNode) count() int {
	return countSet(n.Int != nil, n.String != nil, n.Char != nil, n.NullPtr, n.Var != "",
		n.Unary != nil, n.Binary != nil, n.Deref != nil, n.AddrOf != nil, n.Call != nil,
		n.Field != nil, n.Index != nil, n.Cast != nil, n.Sizeof != "", n.Malloc != nil,
		n.Calloc != nil, n.Realloc != nil, n.NotNull != nil, n.Method != nil)
}

func (c *converter) exprs(field string, nodes []ExprNode) ([]*hir.Expr, error) {
	out := make([]*hir.Expr, 0, len(nodes))
	for i := range nodes {
		e, err := c.expr(fmt.Sprintf("%s[%d]", field, i), &nodes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *converter) expr(field string, n *ExprNode) (*hir.Expr, error) {
	c.push("%s", field)
	defer c.pop()
	if n == nil {
		return nil, c.errorf("expression is required")
	}
	if n.count() != 1 {
		return nil, c.wrap(ErrNodeShape)
	}

	switch {
	case n.Int != nil:
		return hir.IntLit(*n.Int), nil
	case n.String != nil:
		return hir.StringLit(*n.String), nil
	case n.Char != nil:
		if len(*n.Char) != 1 {
			return nil, c.errorf("char literal %q must be one byte", *n.Char)
		}
		return hir.CharLit((*n.Char)[0]), nil
	case n.NullPtr:
		return hir.Null(), nil
	case n.Var != "":
		return hir.Var(n.Var), nil

	case n.Unary != nil:
		op, ok := unaryOps[n.Unary.Op]
		if !ok {
			return nil, c.errorf("unknown unary operator %q", n.Unary.Op)
		}
		operand, err := c.expr("operand", n.Unary.Operand)
		if err != nil {
			return nil, err
		}
		return hir.Unary(op, operand), nil

	case n.Binary != nil:
		op, ok := hir.ParseBinaryOp(n.Binary.Op)
		if !ok {
			return nil, c.errorf("unknown binary operator %q", n.Binary.Op)
		}
		l, r, err := c.pair("left", n.Binary.Left, "right", n.Binary.Right)
		if err != nil {
			return nil, err
		}
		return hir.Binary(op, l, r), nil

	case n.Deref != nil:
		inner, err := c.expr("deref", n.Deref)
		if err != nil {
			return nil, err
		}
		return hir.Deref(inner), nil

	case n.AddrOf != nil:
		inner, err := c.expr("addr_of", n.AddrOf)
		if err != nil {
			return nil, err
		}
		return hir.AddrOf(inner), nil

	case n.Call != nil:
		if n.Call.Func == "" {
			return nil, c.errorf("call needs a function name")
		}
		args, err := c.exprs("args", n.Call.Args)
		if err != nil {
			return nil, err
		}
		return hir.Call(n.Call.Func, args...), nil

	case n.Field != nil:
		obj, err := c.expr("object", n.Field.Object)
		if err != nil {
			return nil, err
		}
		if n.Field.Arrow {
			return hir.PtrField(obj, n.Field.Name), nil
		}
		return hir.Field(obj, n.Field.Name), nil

	case n.Index != nil:
		arr, idx, err := c.pair("array", n.Index.Array, "index", n.Index.Index)
		if err != nil {
			return nil, err
		}
		return hir.Index(arr, idx), nil

	case n.Cast != nil:
		t, err := c.typ(n.Cast.Type)
		if err != nil {
			return nil, err
		}
		inner, err := c.expr("expr", n.Cast.Expr)
		if err != nil {
			return nil, err
		}
		return hir.Cast(t, inner), nil

	case n.Sizeof != "":
		t, err := c.typ(n.Sizeof)
		if err != nil {
			return nil, err
		}
		return hir.Sizeof(t), nil

	case n.Malloc != nil:
		size, err := c.expr("malloc", n.Malloc)
		if err != nil {
			return nil, err
		}
		return hir.Malloc(size), nil

	case n.Calloc != nil:
		count, err := c.expr("count", n.Calloc.Count)
		if err != nil {
			return nil, err
		}
		t, err := c.typ(n.Calloc.Type)
		if err != nil {
			return nil, err
		}
		return hir.Calloc(count, t), nil

	case n.Realloc != nil:
		p, size, err := c.pair("pointer", n.Realloc.Pointer, "size", n.Realloc.Size)
		if err != nil {
			return nil, err
		}
		return hir.Realloc(p, size), nil

	case n.NotNull != nil:
		inner, err := c.expr("not_null", n.NotNull)
		if err != nil {
			return nil, err
		}
		return hir.IsNotNull(inner), nil

	default:
		recv, err := c.expr("receiver", n.Method.Receiver)
		if err != nil {
			return nil, err
		}
		args, err := c.exprs("args", n.Method.Args)
		if err != nil {
			return nil, err
		}
		return hir.MethodCall(recv, n.Method.Name, args...), nil
	}
}
