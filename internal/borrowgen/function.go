package borrowgen

import (
	"github.com/paiml/decy-sub003/internal/dataflow"
	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/lifetime"
	"github.com/paiml/decy-sub003/internal/ownership"
)

// TransformFunction returns a new function with safe parameter types and a
// body rewritten to match. fn is not modified.
//
// Beyond the per-parameter mapping it:
//   - drops the length parameter that follows a trusted slice parameter
//     (`int *arr, int len`) and rewrites its reads to `arr.len()`, unless
//     the body assigns to it;
//   - turns `*(p + i)` and `*p` on trusted slice variables into indexing;
//   - retypes trusted array-derived locals as slice references borrowing
//     `&arr[k..]` from their base array;
//   - retypes a pointer result when every return yields the same rewritten
//     parameter, adding an explicit lifetime when elision cannot tie the
//     result to that parameter.
//
// Array pointers that are advanced or re-pointed keep their raw type and
// their pointer arithmetic.
func (g *Generator) TransformFunction(fn *hir.Func, inf ownership.Inferences) *hir.Func {
	if fn == nil {
		return nil
	}
	graph := dataflow.Analyze(fn)
	slices := g.trustedSlices(inf)

	lengthOf := make(map[string]string) // length param -> slice param
	for _, ap := range graph.ArrayParameters() {
		if ap.LengthParam == "" || !slices[ap.Name] || graph.IsModified(ap.LengthParam) {
			continue
		}
		if _, ok := fn.Param(ap.Name); ok {
			lengthOf[ap.LengthParam] = ap.Name
		}
	}

	params := make([]hir.Param, 0, len(fn.Params))
	for _, p := range fn.Params {
		if _, dropped := lengthOf[p.Name]; dropped {
			continue
		}
		params = append(params, hir.Param{Name: p.Name, Type: g.TransformType(p.Type, p.Name, inf)})
	}

	rw := &hir.Rewriter{
		Expr: func(e *hir.Expr) *hir.Expr { return rewriteExpr(e, slices, lengthOf) },
		Stmt: func(s hir.Stmt) hir.Stmt { return g.rewriteStmt(s, slices, inf) },
	}

	out := &hir.Func{
		Name:   fn.Name,
		Result: g.resultType(fn, params),
		Params: params,
		Body:   rw.Block(fn.Body),
	}
	return lifetime.Annotate(out).Apply(out)
}

func (g *Generator) trustedSlices(inf ownership.Inferences) map[string]bool {
	out := make(map[string]bool)
	for name := range inf {
		in, ok := inf.Trusted(name, g.threshold)
		if !ok {
			continue
		}
		if ap, isArray := in.Kind.(ownership.ArrayPointer); isArray && !ap.Rebased {
			out[name] = true
		}
	}
	return out
}

func rewriteExpr(e *hir.Expr, slices map[string]bool, lengthOf map[string]string) *hir.Expr {
	switch e.Kind {
	case hir.ExprVar:
		if arr, ok := lengthOf[e.Data.(hir.VarData).Name]; ok {
			return hir.MethodCall(hir.Var(arr), "len")
		}
	case hir.ExprDeref:
		if base, idx, ok := sliceElement(e.Data.(hir.DerefData).Inner, slices); ok {
			return hir.SliceIndex(hir.Var(base), idx)
		}
	}
	return e
}

func (g *Generator) rewriteStmt(s hir.Stmt, slices map[string]bool, inf ownership.Inferences) hir.Stmt {
	switch d := s.Data.(type) {
	case hir.DerefAssignData:
		if base, idx, ok := sliceElement(d.Target, slices); ok {
			return hir.IndexAssign(hir.Var(base), idx, d.Value)
		}
	case hir.VarDeclData:
		if slices[d.Name] {
			d.Type = g.TransformType(d.Type, d.Name, inf)
			if ap, ok := inf[d.Name].Kind.(ownership.ArrayPointer); ok && ap.BaseArray != d.Name {
				d.Init = hir.Subslice(hir.Var(ap.BaseArray), hir.IntLit(ap.BaseIndex), ap.Mutable)
			}
			s.Data = d
		}
	}
	return s
}

// sliceElement matches `p`, `p + i` and `i + p` for a slice variable p and
// returns the element index being addressed. Subtraction is left alone: a
// negative offset has no safe slice equivalent.
func sliceElement(e *hir.Expr, slices map[string]bool) (string, *hir.Expr, bool) {
	if e == nil {
		return "", nil, false
	}
	if name, ok := e.VarName(); ok && slices[name] {
		return name, hir.IntLit(0), true
	}
	if e.Kind != hir.ExprBinary {
		return "", nil, false
	}
	bin := e.Data.(hir.BinaryData)
	if bin.Op != hir.BinAdd {
		return "", nil, false
	}
	if name, ok := bin.Left.VarName(); ok && slices[name] {
		return name, bin.Right, true
	}
	if name, ok := bin.Right.VarName(); ok && slices[name] {
		return name, bin.Left, true
	}
	return "", nil, false
}

// resultType retypes a pointer result only when every return statement
// yields the same parameter and that parameter was rewritten; the returned
// reference then borrows from that parameter.
func (g *Generator) resultType(fn *hir.Func, params []hir.Param) hir.Type {
	if !fn.Result.IsPointer() {
		return fn.Result
	}
	returned := ""
	consistent := true
	hir.WalkStmts(fn.Stmts(), func(s *hir.Stmt) {
		d, ok := s.Data.(hir.ReturnData)
		if !ok || !consistent {
			return
		}
		name, isVar := d.Value.VarName()
		if !isVar || (returned != "" && returned != name) {
			consistent = false
			return
		}
		returned = name
	})
	if !consistent || returned == "" {
		return fn.Result
	}
	orig, ok := fn.Param(returned)
	if !ok {
		return fn.Result
	}
	for _, p := range params {
		if p.Name != returned || p.Type.Equal(orig.Type) {
			continue
		}
		if p.Type.Kind == hir.TypeReference && p.Type.Pointee().Kind == hir.TypeSlice {
			// A slice cannot stand in for a single-element pointer result.
			return fn.Result
		}
		return p.Type
	}
	return fn.Result
}
