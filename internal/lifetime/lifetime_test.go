package lifetime

import (
	"reflect"
	"testing"

	"github.com/paiml/decy-sub003/internal/hir"
)

func ptr(s hir.Stmt) *hir.Stmt { return &s }

// nested:
//
//	int a;
//	if (a) { int b; while (b) { int c; } } else { int d; }
//	for (int i = 0; ...) { int e; }
func nested() *hir.Func {
	return hir.NewFunc("nested", hir.Void(), []hir.Param{{Name: "param", Type: hir.Int()}},
		hir.Decl("a", hir.Int(), nil),
		hir.If(hir.Var("a"),
			[]hir.Stmt{
				hir.Decl("b", hir.Int(), nil),
				hir.While(hir.Var("b"), hir.Decl("c", hir.Int(), nil)),
			},
			[]hir.Stmt{hir.Decl("d", hir.Int(), nil)},
		),
		hir.For(ptr(hir.Decl("i", hir.Int(), hir.IntLit(0))), hir.Var("i"), nil,
			hir.Decl("e", hir.Int(), nil),
		),
	)
}

func TestBuildScopeTree(t *testing.T) {
	tree := BuildScopeTree(nested())

	if tree.Len() != 5 {
		t.Fatalf("expected 5 scopes, got %d: %+v", tree.Len(), tree.Scopes())
	}
	root, _ := tree.Scope(RootScope)
	if root.HasParent || root.Kind != ScopeFunction {
		t.Errorf("unexpected root %+v", root)
	}
	if !reflect.DeepEqual(root.Variables, []string{"a"}) {
		t.Errorf("expected root to declare [a], got %v", root.Variables)
	}

	want := map[string]struct {
		kind  ScopeKind
		depth int
	}{
		"b": {ScopeThen, 1},
		"c": {ScopeLoop, 2},
		"d": {ScopeElse, 1},
		"i": {ScopeLoop, 1},
		"e": {ScopeLoop, 1},
	}
	for name, w := range want {
		id, ok := tree.ScopeOf(name)
		if !ok {
			t.Errorf("%s not declared", name)
			continue
		}
		s, _ := tree.Scope(id)
		if s.Kind != w.kind || s.Depth != w.depth {
			t.Errorf("%s: expected %s at depth %d, got %s at depth %d", name, w.kind, w.depth, s.Kind, s.Depth)
		}
	}
	if _, ok := tree.ScopeOf("param"); ok {
		t.Errorf("parameters are not scope variables")
	}

	for _, s := range tree.Scopes() {
		if s.HasParent {
			parent, _ := tree.Scope(s.Parent)
			if s.Depth != parent.Depth+1 {
				t.Errorf("scope %d depth %d, parent depth %d", s.ID, s.Depth, parent.Depth)
			}
		}
	}
}

func TestIsAncestor(t *testing.T) {
	tree := BuildScopeTree(nested())
	b, _ := tree.ScopeOf("b")
	c, _ := tree.ScopeOf("c")
	d, _ := tree.ScopeOf("d")

	if !tree.IsAncestor(RootScope, c) || !tree.IsAncestor(b, c) {
		t.Errorf("expected root and then-scope to enclose the loop")
	}
	if tree.IsAncestor(c, b) || tree.IsAncestor(b, b) || tree.IsAncestor(d, c) {
		t.Errorf("unexpected ancestry")
	}
}

func TestDanglingPointerFromBranch(t *testing.T) {
	// if (c) { int *x = malloc(4); } return x;
	fn := hir.NewFunc("leak", hir.PointerTo(hir.Int()), []hir.Param{{Name: "c", Type: hir.Int()}},
		hir.Decl("y", hir.Int(), hir.IntLit(0)),
		hir.If(hir.Var("c"), []hir.Stmt{
			hir.Decl("x", hir.PointerTo(hir.Int()), hir.Malloc(hir.Sizeof(hir.Int()))),
		}, nil),
		hir.Return(hir.Var("x")),
	)
	tree := BuildScopeTree(fn)
	lts := TrackLifetimes(fn, tree)

	if !lts["x"].Escapes || lts["x"].DeclaredIn == RootScope {
		t.Errorf("unexpected lifetime for x: %+v", lts["x"])
	}
	if lts["y"].Escapes {
		t.Errorf("y is never returned")
	}
	if got := DetectDanglingPointers(lts); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("expected [x], got %v", got)
	}
}

func TestReturnAtRootIsNotDangling(t *testing.T) {
	fn := hir.NewFunc("ok", hir.Int(), nil,
		hir.Decl("v", hir.Int(), hir.IntLit(1)),
		hir.If(hir.Var("v"), []hir.Stmt{hir.Return(hir.Var("v"))}, nil),
		hir.Return(hir.Binary(hir.BinAdd, hir.Var("v"), hir.IntLit(1))),
	)
	lts := TrackLifetimes(fn, BuildScopeTree(fn))
	if !lts["v"].Escapes {
		t.Errorf("expected v to escape")
	}
	if got := DetectDanglingPointers(lts); len(got) != 0 {
		t.Errorf("root-scope locals are never dangling, got %v", got)
	}
}

func TestNestedReturnEscapes(t *testing.T) {
	fn := hir.NewFunc("inner", hir.PointerTo(hir.Int()), nil,
		hir.While(hir.IntLit(1),
			hir.Decl("buf", hir.ArrayOf(hir.Int(), 4), nil),
			hir.Return(hir.AddrOf(hir.Index(hir.Var("buf"), hir.IntLit(0)))),
		),
	)
	lts := TrackLifetimes(fn, BuildScopeTree(fn))
	if got := DetectDanglingPointers(lts); !reflect.DeepEqual(got, []string{"buf"}) {
		t.Errorf("expected [buf], got %v", got)
	}
}

func TestDetectDanglingSorted(t *testing.T) {
	lts := map[string]VariableLifetime{
		"zeta":  {Name: "zeta", DeclaredIn: 2, Escapes: true},
		"alpha": {Name: "alpha", DeclaredIn: 1, Escapes: true},
		"root":  {Name: "root", DeclaredIn: 0, Escapes: true},
		"quiet": {Name: "quiet", DeclaredIn: 3},
	}
	if got := DetectDanglingPointers(lts); !reflect.DeepEqual(got, []string{"alpha", "zeta"}) {
		t.Errorf("expected [alpha zeta], got %v", got)
	}
}

func TestInferRelationships(t *testing.T) {
	fn := nested()
	tree := BuildScopeTree(fn)
	rels := InferRelationships(TrackLifetimes(fn, tree), tree)

	tests := []struct {
		a, b  string
		key   Pair
		rel   Relation
		found bool
	}{
		{"a", "b", Pair{"a", "b"}, Outlives, true},
		{"c", "a", Pair{"a", "c"}, Outlives, true},
		{"c", "b", Pair{"b", "c"}, Outlives, true},
		{"b", "d", Pair{"b", "d"}, Independent, true},
		{"d", "c", Pair{"c", "d"}, Independent, true},
		{"i", "e", Pair{}, 0, false},
	}
	for _, tt := range tests {
		key, rel, ok := rels.Between(tt.a, tt.b)
		if ok != tt.found || key != tt.key || rel != tt.rel {
			t.Errorf("Between(%s, %s) = %v %s %v; want %v %s %v", tt.a, tt.b, key, rel, ok, tt.key, tt.rel, tt.found)
		}
	}

	keys := rels.Sorted()
	for i := 1; i < len(keys); i++ {
		prev, cur := keys[i-1], keys[i]
		if prev.First > cur.First || (prev.First == cur.First && prev.Second >= cur.Second) {
			t.Errorf("keys not sorted: %v", keys)
			break
		}
	}
}

func TestNilTreeIsEmpty(t *testing.T) {
	fn := nested()
	lts := TrackLifetimes(fn, nil)
	if len(lts) != 0 {
		t.Errorf("expected no lifetimes without a tree, got %v", lts)
	}
	withTree := TrackLifetimes(fn, BuildScopeTree(fn))
	if rel := InferRelationships(withTree, nil); len(rel) != 0 {
		t.Errorf("expected no relations without a tree, got %v", rel)
	}
	var tree *ScopeTree
	if tree.Len() != 0 || tree.Scopes() != nil || tree.IsAncestor(RootScope, 1) {
		t.Errorf("a nil tree has no scopes")
	}
	if _, ok := tree.ScopeOf("a"); ok {
		t.Errorf("a nil tree declares nothing")
	}
}
