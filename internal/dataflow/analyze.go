package dataflow

import (
	"sort"

	"github.com/paiml/decy-sub003/internal/hir"
)

// Analyze builds the dataflow graph for fn. It never fails: constructs it
// does not understand contribute no facts.
func Analyze(fn *hir.Func) *Graph {
	g := &Graph{
		fn:      fn,
		vars:    make(map[string]*Var),
		written: make(map[string]bool),
		indexed: make(map[string]bool),
		arith:   make(map[string]bool),
		moved:   make(map[string]bool),
		freed:   make(map[string]bool),
	}
	if fn == nil {
		return g
	}

	for _, p := range fn.Params {
		if p.Type.IsPointerLike() {
			g.vars[p.Name] = &Var{Name: p.Name, Type: p.Type, Kind: NodeParameter}
		}
	}

	stmts := fn.Stmts()
	hir.WalkStmts(stmts, g.collectDecl)
	g.resolveArrayBases()
	hir.WalkStmts(stmts, g.collectUses)

	for _, v := range g.vars {
		sort.Strings(v.Deps)
	}
	return g
}

// collectDecl records pointer and array locals. The first declaration of a
// name wins; later shadowing declarations add no node.
func (g *Graph) collectDecl(s *hir.Stmt) {
	d, ok := s.Data.(hir.VarDeclData)
	if !ok {
		return
	}
	if _, seen := g.vars[d.Name]; seen {
		return
	}
	if !d.Type.IsPointerLike() && d.Type.Kind != hir.TypeArray {
		return
	}

	v := &Var{Name: d.Name, Type: d.Type, Init: d.Init}
	switch {
	case d.Type.Kind == hir.TypeArray:
		v.Kind = NodeStackArray
	case d.Init == nil:
		v.Kind = NodeUninitialized
	case isArrayAllocation(d.Init):
		v.Kind = NodeArrayAllocation
	case d.Init.IsAllocation():
		v.Kind = NodeAllocation
	default:
		v.Kind = NodeAssignment
	}
	v.Deps = readVars(d.Init)
	g.vars[d.Name] = v
}

func (g *Graph) resolveArrayBases() {
	for _, v := range g.vars {
		if v.Kind != NodeAssignment || !v.Type.IsPointer() {
			continue
		}
		base, idx, ok := arrayOrigin(v.Init)
		if !ok || base == v.Name {
			continue
		}
		if b, tracked := g.vars[base]; tracked && b.Kind.IsArray() {
			v.ArrayBase = base
			v.BaseIndex = idx
		}
	}
}

// arrayOrigin matches `arr`, `(T*)arr` and `&arr[k]` with a literal k.
func arrayOrigin(e *hir.Expr) (string, int64, bool) {
	for e != nil && e.Kind == hir.ExprCast {
		e = e.Data.(hir.CastData).Inner
	}
	if e == nil {
		return "", 0, false
	}
	switch e.Kind {
	case hir.ExprVar:
		return e.Data.(hir.VarData).Name, 0, true
	case hir.ExprAddrOf:
		inner := e.Data.(hir.AddrOfData).Inner
		if inner == nil || inner.Kind != hir.ExprIndex {
			return "", 0, false
		}
		idx := inner.Data.(hir.IndexData)
		name, ok := idx.Array.VarName()
		if !ok || idx.Index == nil || idx.Index.Kind != hir.ExprIntLit {
			return "", 0, false
		}
		return name, idx.Index.Data.(hir.IntLitData).Value, true
	}
	return "", 0, false
}

// isArrayAllocation matches `malloc(n * sizeof(T))`, `malloc(sizeof(T) * n)`
// and any calloc.
func isArrayAllocation(e *hir.Expr) bool {
	for e != nil && e.Kind == hir.ExprCast {
		e = e.Data.(hir.CastData).Inner
	}
	if e == nil {
		return false
	}
	switch e.Kind {
	case hir.ExprCalloc:
		return true
	case hir.ExprMalloc:
		size := e.Data.(hir.MallocData).Size
		if size == nil || size.Kind != hir.ExprBinary {
			return false
		}
		bin := size.Data.(hir.BinaryData)
		if bin.Op != hir.BinMul {
			return false
		}
		return isSizeof(bin.Left) || isSizeof(bin.Right)
	}
	return false
}

func isSizeof(e *hir.Expr) bool {
	return e != nil && e.Kind == hir.ExprSizeof
}

func (g *Graph) collectUses(s *hir.Stmt) {
	switch d := s.Data.(type) {
	case hir.AssignData:
		g.written[d.Target] = true
		g.moved[d.Target] = true
		if v, ok := g.vars[d.Target]; ok {
			v.Deps = appendUnique(v.Deps, readVars(d.Value)...)
			// `T *p; p = malloc(...)` allocates just like an initializer.
			if v.Kind == NodeUninitialized {
				switch {
				case isArrayAllocation(d.Value):
					v.Kind = NodeArrayAllocation
				case d.Value.IsAllocation():
					v.Kind = NodeAllocation
				}
			}
		}
	case hir.DerefAssignData:
		if base, ok := hir.BaseVar(d.Target); ok {
			g.written[base] = true
			if d.Target.Kind == hir.ExprBinary {
				g.arith[base] = true
			}
		}
	case hir.IndexAssignData:
		if base, ok := hir.BaseVar(d.Array); ok {
			g.written[base] = true
			g.indexed[base] = true
		}
	case hir.FieldAssignData:
		if base, ok := fieldWriteBase(d); ok {
			g.written[base] = true
		}
	case hir.FreeData:
		if base, ok := hir.BaseVar(d.Pointer); ok {
			g.freed[base] = true
		}
	}

	for _, e := range s.Exprs() {
		hir.WalkExpr(e, g.collectExpr)
	}
}

func fieldWriteBase(d hir.FieldAssignData) (string, bool) {
	if d.Object == nil {
		return "", false
	}
	if d.Through {
		return hir.BaseVar(d.Object)
	}
	switch d.Object.Kind {
	case hir.ExprDeref:
		return hir.BaseVar(d.Object.Data.(hir.DerefData).Inner)
	case hir.ExprIndex:
		return hir.BaseVar(d.Object.Data.(hir.IndexData).Array)
	}
	return "", false
}

func (g *Graph) collectExpr(e *hir.Expr) bool {
	switch d := e.Data.(type) {
	case hir.IndexData:
		if e.Kind == hir.ExprIndex {
			if name, ok := d.Array.VarName(); ok {
				g.indexed[name] = true
			}
		}
	case hir.BinaryData:
		if d.Op == hir.BinAdd || d.Op == hir.BinSub {
			g.markArith(d.Left)
			g.markArith(d.Right)
		}
	case hir.UnaryData:
		if d.Op.IsIncDec() {
			if name, ok := d.Operand.VarName(); ok {
				g.written[name] = true
				g.moved[name] = true
				g.markArith(d.Operand)
			}
		}
	}
	return true
}

func (g *Graph) markArith(e *hir.Expr) {
	name, ok := e.VarName()
	if !ok {
		return
	}
	if v, tracked := g.vars[name]; tracked && v.Type.IsPointer() {
		g.arith[name] = true
	}
}

func readVars(e *hir.Expr) []string {
	var out []string
	hir.WalkExpr(e, func(x *hir.Expr) bool {
		if name, ok := x.VarName(); ok {
			out = appendUnique(out, name)
		}
		return true
	})
	return out
}

func appendUnique(dst []string, names ...string) []string {
	for _, n := range names {
		found := false
		for _, d := range dst {
			if d == n {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, n)
		}
	}
	return dst
}
