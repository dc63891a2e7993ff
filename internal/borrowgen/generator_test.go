package borrowgen_test

import (
	"strings"
	"testing"

	"github.com/paiml/decy-sub003/internal/borrowgen"
	"github.com/paiml/decy-sub003/internal/dataflow"
	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/ownership"
)

func intPtr() hir.Type { return hir.PointerTo(hir.Int()) }

func ptr(s hir.Stmt) *hir.Stmt { return &s }

func inferAll(fn *hir.Func) ownership.Inferences {
	return ownership.Infer(dataflow.Analyze(fn), fn, ownership.NewRuleBased())
}

func single(name string, k ownership.Kind, conf float64) ownership.Inferences {
	return ownership.Inferences{name: {Variable: name, Kind: k, Confidence: conf}}
}

func TestTransformTypeKinds(t *testing.T) {
	g := borrowgen.NewGenerator()
	tests := []struct {
		kind ownership.Kind
		want string
	}{
		{ownership.Owning{}, "Box<i32>"},
		{ownership.ImmutableBorrow{}, "&i32"},
		{ownership.MutableBorrow{}, "&mut i32"},
		{ownership.ArrayPointer{BaseArray: "arr", ElementType: hir.Int()}, "&[i32]"},
		{ownership.ArrayPointer{BaseArray: "arr", ElementType: hir.Int(), Mutable: true}, "&mut [i32]"},
		{ownership.Unknown{}, "*mut i32"},
	}
	for _, tt := range tests {
		got := g.TransformType(intPtr(), "p", single("p", tt.kind, 0.9))
		if got.String() != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.kind, tt.want, got)
		}
	}
}

func TestTransformTypeIdentityCases(t *testing.T) {
	g := borrowgen.NewGenerator()
	inf := single("p", ownership.MutableBorrow{}, 0.9)

	if got := g.TransformType(hir.Int(), "p", inf); got.String() != "i32" {
		t.Errorf("non-pointer types pass through, got %s", got)
	}
	if got := g.TransformType(intPtr(), "q", inf); got.String() != "*mut i32" {
		t.Errorf("missing inference keeps raw pointer, got %s", got)
	}
	ref := hir.RefTo(hir.Int(), false)
	if got := g.TransformType(ref, "p", inf); !got.Equal(ref) {
		t.Errorf("references are already safe, got %s", got)
	}
}

func TestTransformTypeThreshold(t *testing.T) {
	g := borrowgen.NewGenerator()
	low := g.TransformType(intPtr(), "p", single("p", ownership.MutableBorrow{}, 0.25))
	if low.String() != "*mut i32" {
		t.Errorf("confidence 0.25 must fall back to the raw pointer, got %s", low)
	}
	high := g.TransformType(intPtr(), "p", single("p", ownership.MutableBorrow{}, 0.8))
	if high.String() != "&mut i32" {
		t.Errorf("confidence 0.8 must be trusted, got %s", high)
	}

	strict := borrowgen.NewGenerator(borrowgen.WithThreshold(0.9))
	if strict.Threshold() != 0.9 {
		t.Errorf("expected threshold 0.9, got %v", strict.Threshold())
	}
	if got := strict.TransformType(intPtr(), "p", single("p", ownership.MutableBorrow{}, 0.8)); got.String() != "*mut i32" {
		t.Errorf("expected raw pointer under strict threshold, got %s", got)
	}
}

func TestTransformTypeNestedPointer(t *testing.T) {
	g := borrowgen.NewGenerator()
	got := g.TransformType(hir.MustParseType("int**"), "pp", single("pp", ownership.MutableBorrow{}, 0.9))
	if got.String() != "&mut *mut i32" {
		t.Errorf("only the outer layer is rewritten, got %s", got)
	}
}

func TestReadOnlyParameterBecomesReference(t *testing.T) {
	fn := hir.NewFunc("read_only", hir.Int(),
		[]hir.Param{{Name: "data", Type: intPtr()}},
		hir.Return(hir.Deref(hir.Var("data"))),
	)
	g := borrowgen.NewGenerator()
	got := g.TransformType(intPtr(), "data", inferAll(fn))
	if got.String() != "&i32" {
		t.Errorf("expected &i32, got %s", got)
	}
}

func TestTransformParametersPreservesOrder(t *testing.T) {
	fn := hir.NewFunc("copy", hir.Void(), []hir.Param{
		{Name: "data", Type: intPtr()},
		{Name: "data2", Type: intPtr()},
	},
		hir.DerefAssign(hir.Var("data"), hir.Deref(hir.Var("data2"))),
	)
	g := borrowgen.NewGenerator()
	params := g.TransformParameters(fn.Params, inferAll(fn))
	if len(params) != 2 || params[0].Name != "data" || params[1].Name != "data2" {
		t.Fatalf("unexpected params %v", params)
	}
	if params[0].Type.String() != "&mut i32" || params[1].Type.String() != "&i32" {
		t.Errorf("expected [&mut i32, &i32], got [%s, %s]", params[0].Type, params[1].Type)
	}
	out := g.TransformFunction(fn, inferAll(fn))
	if len(out.Params) != 2 || out.Params[0].Type.String() != "&mut i32" || out.Params[1].Type.String() != "&i32" {
		t.Errorf("TransformFunction disagrees with TransformParameters: %v", out.Params)
	}
}

func TestUnknownParameterKeepsRawPointer(t *testing.T) {
	fn := hir.NewFunc("f", hir.Void(), []hir.Param{{Name: "p", Type: intPtr()}})
	out := borrowgen.NewGenerator().TransformFunction(fn, single("p", ownership.Unknown{}, 0.25))
	if out.Params[0].Type.String() != "*mut i32" {
		t.Errorf("expected raw pointer, got %s", out.Params[0].Type)
	}
}

func sumFunc() *hir.Func {
	return hir.NewFunc("sum", hir.Int(), []hir.Param{
		{Name: "arr", Type: intPtr()},
		{Name: "len", Type: hir.Int()},
	},
		hir.Decl("total", hir.Int(), hir.IntLit(0)),
		hir.For(
			ptr(hir.Decl("i", hir.Int(), hir.IntLit(0))),
			hir.Binary(hir.BinLt, hir.Var("i"), hir.Var("len")),
			ptr(hir.ExprStmt(hir.Unary(hir.UnaryPostInc, hir.Var("i")))),
			hir.Assign("total", hir.Binary(hir.BinAdd, hir.Var("total"), hir.Deref(hir.Binary(hir.BinAdd, hir.Var("arr"), hir.Var("i"))))),
			hir.DerefAssign(hir.Binary(hir.BinAdd, hir.Var("arr"), hir.Var("i")), hir.IntLit(0)),
		),
		hir.Return(hir.Var("total")),
	)
}

func TestArrayParameterCollapsesLength(t *testing.T) {
	fn := sumFunc()
	before := fn.String()
	inf := single("arr", ownership.ArrayPointer{BaseArray: "arr", ElementType: hir.Int(), Mutable: true}, 0.9)

	out := borrowgen.NewGenerator().TransformFunction(fn, inf)

	if fn.String() != before {
		t.Fatalf("input function was modified")
	}
	if len(out.Params) != 1 || out.Params[0].Type.String() != "&mut [i32]" {
		t.Fatalf("expected single &mut [i32] parameter, got %v", out.Params)
	}
	text := out.String()
	for _, want := range []string{"(i < arr.len())", "arr[i as usize]", "arr[i] = 0;"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "*(arr") {
		t.Errorf("pointer arithmetic survived:\n%s", text)
	}
}

func TestModifiedLengthParameterIsKept(t *testing.T) {
	fn := hir.NewFunc("drain", hir.Void(), []hir.Param{
		{Name: "buf", Type: intPtr()},
		{Name: "len", Type: hir.Int()},
	},
		hir.While(hir.Var("len"),
			hir.IndexAssign(hir.Var("buf"), hir.Var("len"), hir.IntLit(0)),
			hir.Assign("len", hir.Binary(hir.BinSub, hir.Var("len"), hir.IntLit(1))),
		),
	)
	inf := single("buf", ownership.ArrayPointer{BaseArray: "buf", ElementType: hir.Int(), Mutable: true}, 0.9)
	out := borrowgen.NewGenerator().TransformFunction(fn, inf)
	if len(out.Params) != 2 {
		t.Errorf("assigned length parameter must be kept, got %v", out.Params)
	}
}

func TestUntrustedArrayKeepsLength(t *testing.T) {
	inf := single("arr", ownership.ArrayPointer{BaseArray: "arr", ElementType: hir.Int()}, 0.3)
	out := borrowgen.NewGenerator().TransformFunction(sumFunc(), inf)
	if len(out.Params) != 2 || out.Params[0].Type.String() != "*mut i32" {
		t.Errorf("expected untouched signature, got %v", out.Params)
	}
	if !strings.Contains(out.String(), "*(arr + i)") {
		t.Errorf("expected pointer arithmetic to survive:\n%s", out)
	}
}

func TestArrayDerivedLocalIsRetyped(t *testing.T) {
	fn := hir.NewFunc("f", hir.Int(), nil,
		hir.Decl("arr", hir.ArrayOf(hir.Int(), 10), nil),
		hir.Decl("p", intPtr(), hir.Var("arr")),
		hir.Return(hir.Deref(hir.Binary(hir.BinAdd, hir.Var("p"), hir.IntLit(1)))),
	)
	out := borrowgen.NewGenerator().TransformFunction(fn, inferAll(fn))
	text := out.String()
	if !strings.Contains(text, "let p: &[i32] = &arr[..];") {
		t.Errorf("expected slice-typed local:\n%s", text)
	}
	if !strings.Contains(text, "return p[1 as usize];") {
		t.Errorf("expected slice indexing:\n%s", text)
	}
}

func TestReturnTypeFollowsReturnedParameter(t *testing.T) {
	fn := hir.NewFunc("identity", intPtr(),
		[]hir.Param{{Name: "p", Type: intPtr()}},
		hir.Return(hir.Var("p")),
	)
	out := borrowgen.NewGenerator().TransformFunction(fn, single("p", ownership.ImmutableBorrow{}, 0.9))
	if out.Result.String() != "&i32" {
		t.Errorf("expected &i32 result, got %s", out.Result)
	}

	mixed := hir.NewFunc("pick", intPtr(),
		[]hir.Param{{Name: "a", Type: intPtr()}, {Name: "b", Type: intPtr()}},
		hir.If(hir.Var("a"), []hir.Stmt{hir.Return(hir.Var("a"))}, nil),
		hir.Return(hir.Var("b")),
	)
	inf := ownership.Inferences{
		"a": {Variable: "a", Kind: ownership.ImmutableBorrow{}, Confidence: 0.9},
		"b": {Variable: "b", Kind: ownership.ImmutableBorrow{}, Confidence: 0.9},
	}
	if got := borrowgen.NewGenerator().TransformFunction(mixed, inf).Result; got.String() != "*mut i32" {
		t.Errorf("mixed returns keep the raw result, got %s", got)
	}
}

func TestReadOnlyOffsetKeepsRawPointer(t *testing.T) {
	// int second(int *p) { return *(p + 1); }
	fn := hir.NewFunc("second", hir.Int(), []hir.Param{{Name: "p", Type: intPtr()}},
		hir.Return(hir.Deref(hir.Binary(hir.BinAdd, hir.Var("p"), hir.IntLit(1)))),
	)
	out := borrowgen.NewGenerator().TransformFunction(fn, inferAll(fn))
	if got := out.Signature(); got != "fn second(p: *mut i32) -> i32" {
		t.Errorf("unexpected signature %s", got)
	}
	if !strings.Contains(out.String(), "*(p + 1)") {
		t.Errorf("expected the offset read to survive:\n%s", out)
	}
}

func TestArrayDerivedLocalBorrowsFromBaseIndex(t *testing.T) {
	fn := hir.NewFunc("f", hir.Char(), nil,
		hir.Decl("arr", hir.ArrayOf(hir.Char(), 8), nil),
		hir.Decl("p", hir.PointerTo(hir.Char()), hir.AddrOf(hir.Index(hir.Var("arr"), hir.IntLit(2)))),
		hir.Return(hir.Deref(hir.Var("p"))),
	)
	text := borrowgen.NewGenerator().TransformFunction(fn, inferAll(fn)).String()
	if !strings.Contains(text, "let p: &[u8] = &arr[2..];") {
		t.Errorf("expected a subslice starting at the base index:\n%s", text)
	}
	if !strings.Contains(text, "return p[0 as usize];") {
		t.Errorf("expected slice indexing:\n%s", text)
	}

	written := hir.NewFunc("g", hir.Void(), nil,
		hir.Decl("arr", hir.ArrayOf(hir.Int(), 4), nil),
		hir.Decl("q", intPtr(), hir.AddrOf(hir.Index(hir.Var("arr"), hir.IntLit(1)))),
		hir.DerefAssign(hir.Var("q"), hir.IntLit(9)),
	)
	text = borrowgen.NewGenerator().TransformFunction(written, inferAll(written)).String()
	if !strings.Contains(text, "let q: &mut [i32] = &mut arr[1..];") {
		t.Errorf("expected a mutable subslice:\n%s", text)
	}
}

func TestWalkingPointerKeepsRawPointer(t *testing.T) {
	fn := hir.NewFunc("total", hir.Int(), nil,
		hir.Decl("arr", hir.ArrayOf(hir.Int(), 4), nil),
		hir.Decl("s", hir.Int(), hir.IntLit(0)),
		hir.Decl("p", intPtr(), hir.Var("arr")),
		hir.While(hir.Var("s"),
			hir.Assign("s", hir.Binary(hir.BinAdd, hir.Var("s"), hir.Deref(hir.Var("p")))),
			hir.ExprStmt(hir.Unary(hir.UnaryPostInc, hir.Var("p"))),
		),
		hir.Return(hir.Var("s")),
	)
	text := borrowgen.NewGenerator().TransformFunction(fn, inferAll(fn)).String()
	if !strings.Contains(text, "let p: *mut i32 = arr;") {
		t.Errorf("expected the walking pointer to stay raw:\n%s", text)
	}
	if strings.Contains(text, "p[") {
		t.Errorf("a walking pointer must not be indexed as a slice:\n%s", text)
	}

	param := hir.NewFunc("sum", hir.Int(), []hir.Param{
		{Name: "arr", Type: intPtr()},
		{Name: "len", Type: hir.Int()},
	},
		hir.Decl("s", hir.Int(), hir.IntLit(0)),
		hir.While(hir.Var("len"),
			hir.Assign("s", hir.Binary(hir.BinAdd, hir.Var("s"), hir.Deref(hir.Var("arr")))),
			hir.Assign("arr", hir.Binary(hir.BinAdd, hir.Var("arr"), hir.IntLit(1))),
		),
		hir.Return(hir.Var("s")),
	)
	out := borrowgen.NewGenerator().TransformFunction(param, inferAll(param))
	if got := out.Signature(); got != "fn sum(arr: *mut i32, len: i32) -> i32" {
		t.Errorf("a walked slice parameter keeps its pointer and length, got %s", got)
	}
}

func TestTwoReferenceParametersGetExplicitLifetime(t *testing.T) {
	// int *first(int *a, int *b) { return a; }
	fn := hir.NewFunc("first", intPtr(),
		[]hir.Param{{Name: "a", Type: intPtr()}, {Name: "b", Type: intPtr()}},
		hir.Return(hir.Var("a")),
	)
	out := borrowgen.NewGenerator().TransformFunction(fn, inferAll(fn))
	if got, want := out.Signature(), "fn first<'a>(a: &'a i32, b: &i32) -> &'a i32"; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	one := hir.NewFunc("identity", intPtr(),
		[]hir.Param{{Name: "p", Type: intPtr()}, {Name: "n", Type: hir.Int()}},
		hir.Return(hir.Var("p")),
	)
	if got := borrowgen.NewGenerator().TransformFunction(one, inferAll(one)).Signature(); got != "fn identity(p: &i32, n: i32) -> &i32" {
		t.Errorf("a single reference parameter needs no lifetime, got %s", got)
	}
}

func TestTransformFunctionNil(t *testing.T) {
	if borrowgen.NewGenerator().TransformFunction(nil, nil) != nil {
		t.Errorf("expected nil")
	}
}
