package dataflow_test

import (
	"reflect"
	"testing"

	"github.com/paiml/decy-sub003/internal/dataflow"
	"github.com/paiml/decy-sub003/internal/hir"
)

func intPtr() hir.Type { return hir.PointerTo(hir.Int()) }

func ptr(s hir.Stmt) *hir.Stmt { return &s }

func TestArrayBaseFromDecay(t *testing.T) {
	fn := hir.NewFunc("f", hir.Int(), nil,
		hir.Decl("arr", hir.ArrayOf(hir.Int(), 10), nil),
		hir.Decl("p", intPtr(), hir.Var("arr")),
		hir.Decl("q", intPtr(), hir.AddrOf(hir.Index(hir.Var("arr"), hir.IntLit(3)))),
		hir.Decl("r", intPtr(), hir.Var("p")),
		hir.Return(hir.Deref(hir.Var("p"))),
	)
	g := dataflow.Analyze(fn)

	if base, ok := g.ArrayBaseFor("p"); !ok || base != "arr" {
		t.Errorf("expected p derived from arr, got %q, %v", base, ok)
	}
	if base, ok := g.ArrayBaseFor("q"); !ok || base != "arr" {
		t.Errorf("expected q derived from arr, got %q, %v", base, ok)
	}
	if idx := g.ArrayBaseIndex("q"); idx != 3 {
		t.Errorf("expected base index 3, got %d", idx)
	}
	if _, ok := g.ArrayBaseFor("r"); ok {
		t.Errorf("r copies a pointer, not an array")
	}
	if _, ok := g.ArrayBaseFor("missing"); ok {
		t.Errorf("unknown names have no array base")
	}
	if elem, ok := g.ArrayElemType("p"); !ok || elem.Kind != hir.TypeInt {
		t.Errorf("expected int element type, got %s, %v", elem, ok)
	}
	if got, want := g.Variables(), []string{"arr", "p", "q", "r"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestIsModified(t *testing.T) {
	fn := hir.NewFunc("f", hir.Void(), []hir.Param{
		{Name: "a", Type: intPtr()},
		{Name: "b", Type: intPtr()},
		{Name: "c", Type: intPtr()},
		{Name: "d", Type: hir.PointerTo(hir.StructNamed("Node"))},
		{Name: "e", Type: intPtr()},
		{Name: "ro", Type: intPtr()},
	},
		hir.DerefAssign(hir.Var("a"), hir.IntLit(1)),
		hir.If(hir.Var("ro"), []hir.Stmt{hir.IndexAssign(hir.Var("b"), hir.IntLit(0), hir.IntLit(2))}, nil),
		hir.While(hir.Var("ro"), hir.DerefAssign(hir.Binary(hir.BinAdd, hir.Var("c"), hir.IntLit(1)), hir.IntLit(3))),
		hir.FieldAssign(hir.Var("d"), "next", hir.Null(), true),
		hir.ExprStmt(hir.Unary(hir.UnaryPostInc, hir.Var("e"))),
		hir.ExprStmt(hir.Call("printf", hir.StringLit("%d"), hir.Deref(hir.Var("ro")))),
	)
	g := dataflow.Analyze(fn)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if !g.IsModified(name) {
			t.Errorf("expected %s modified", name)
		}
	}
	if g.IsModified("ro") {
		t.Errorf("ro is only read")
	}
	if !g.HasPointerArithmetic("c") || !g.HasPointerArithmetic("e") {
		t.Errorf("expected pointer arithmetic on c and e")
	}
	if !g.IsIndexed("b") {
		t.Errorf("expected b indexed")
	}
}

func TestAllocationKinds(t *testing.T) {
	fn := hir.NewFunc("f", hir.Void(), []hir.Param{{Name: "n", Type: hir.Int()}},
		hir.Decl("one", intPtr(), hir.Malloc(hir.Sizeof(hir.Int()))),
		hir.Decl("many", intPtr(), hir.Malloc(hir.Binary(hir.BinMul, hir.Var("n"), hir.Sizeof(hir.Int())))),
		hir.Decl("zeroed", intPtr(), hir.Cast(intPtr(), hir.Calloc(hir.Var("n"), hir.Int()))),
		hir.Decl("later", intPtr(), nil),
		hir.Assign("later", hir.Malloc(hir.Sizeof(hir.Int()))),
		hir.Free(hir.Var("one")),
	)
	g := dataflow.Analyze(fn)

	tests := map[string]dataflow.NodeKind{
		"one":    dataflow.NodeAllocation,
		"many":   dataflow.NodeArrayAllocation,
		"zeroed": dataflow.NodeArrayAllocation,
		"later":  dataflow.NodeAllocation,
	}
	for name, want := range tests {
		if got := g.NodeKindOf(name); got != want {
			t.Errorf("%s: expected %s, got %s", name, want, got)
		}
	}
	if !g.IsFreed("one") || g.IsFreed("many") {
		t.Errorf("expected only one freed")
	}
	if g.IsTracked("n") {
		t.Errorf("integer parameters are not tracked")
	}
}

func TestIsArrayParameter(t *testing.T) {
	fn := hir.NewFunc("sum", hir.Int(), []hir.Param{
		{Name: "arr", Type: intPtr()},
		{Name: "len", Type: hir.Int()},
		{Name: "node", Type: hir.PointerTo(hir.StructNamed("Node"))},
		{Name: "count", Type: hir.Int()},
		{Name: "out", Type: intPtr()},
	},
		hir.Decl("total", hir.Int(), hir.IntLit(0)),
		hir.For(
			ptr(hir.Decl("i", hir.Int(), hir.IntLit(0))),
			hir.Binary(hir.BinLt, hir.Var("i"), hir.Var("len")),
			ptr(hir.ExprStmt(hir.Unary(hir.UnaryPostInc, hir.Var("i")))),
			hir.Assign("total", hir.Binary(hir.BinAdd, hir.Var("total"), hir.Index(hir.Var("arr"), hir.Var("i")))),
		),
		hir.DerefAssign(hir.Var("out"), hir.Var("total")),
		hir.Return(hir.Var("total")),
	)
	g := dataflow.Analyze(fn)

	if ok, known := g.IsArrayParameter("arr"); !ok || !known {
		t.Errorf("expected arr to be an array parameter, got %v, %v", ok, known)
	}
	if ok, known := g.IsArrayParameter("node"); ok || !known {
		t.Errorf("struct pointers are never arrays, got %v, %v", ok, known)
	}
	if ok, known := g.IsArrayParameter("len"); ok || !known {
		t.Errorf("non-pointer parameters are never arrays, got %v, %v", ok, known)
	}
	if ok, known := g.IsArrayParameter("out"); ok || !known {
		t.Errorf("out has no array evidence, got %v, %v", ok, known)
	}
	if _, known := g.IsArrayParameter("total"); known {
		t.Errorf("locals are not parameters")
	}
	if !g.HasSizeParameter("arr") {
		t.Errorf("expected len to count as a size parameter")
	}
	want := []dataflow.ArrayParam{{Name: "arr", LengthParam: "len"}}
	if got := g.ArrayParameters(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPointerArithmeticWeakensArrayEvidence(t *testing.T) {
	fn := hir.NewFunc("walk", hir.Void(), []hir.Param{
		{Name: "p", Type: intPtr()},
		{Name: "x", Type: hir.Int()},
	},
		hir.ExprStmt(hir.Unary(hir.UnaryPostInc, hir.Var("p"))),
	)
	g := dataflow.Analyze(fn)
	if ok, _ := g.IsArrayParameter("p"); ok {
		t.Errorf("an int follower alone with pointer walking is not enough evidence")
	}
}

func TestAnalyzeNilFunc(t *testing.T) {
	g := dataflow.Analyze(nil)
	if len(g.Variables()) != 0 {
		t.Errorf("expected empty graph")
	}
	if _, known := g.IsArrayParameter("x"); known {
		t.Errorf("expected unknown parameter")
	}
}

func TestIsReassigned(t *testing.T) {
	fn := hir.NewFunc("f", hir.Void(), []hir.Param{{Name: "out", Type: intPtr()}},
		hir.Decl("arr", hir.ArrayOf(hir.Int(), 4), nil),
		hir.Decl("walk", intPtr(), hir.Var("arr")),
		hir.Decl("moved", intPtr(), hir.Var("arr")),
		hir.Decl("fixed", intPtr(), hir.Var("arr")),
		hir.ExprStmt(hir.Unary(hir.UnaryPostInc, hir.Var("walk"))),
		hir.Assign("moved", hir.AddrOf(hir.Index(hir.Var("arr"), hir.IntLit(2)))),
		hir.DerefAssign(hir.Binary(hir.BinAdd, hir.Var("fixed"), hir.IntLit(1)), hir.IntLit(7)),
		hir.DerefAssign(hir.Var("out"), hir.IntLit(1)),
	)
	g := dataflow.Analyze(fn)
	for name, want := range map[string]bool{"walk": true, "moved": true, "fixed": false, "out": false} {
		if got := g.IsReassigned(name); got != want {
			t.Errorf("IsReassigned(%s) = %v, want %v", name, got, want)
		}
	}
	if !g.HasPointerArithmetic("fixed") {
		t.Errorf("offset writes still count as pointer arithmetic")
	}
}
