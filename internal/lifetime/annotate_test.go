package lifetime

import (
	"reflect"
	"testing"

	"github.com/paiml/decy-sub003/internal/hir"
)

func ref() hir.Type { return hir.RefTo(hir.Int(), false) }

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name   string
		fn     *hir.Func
		params []string
	}{
		{
			name: "single reference is elided",
			fn: hir.NewFunc("id", ref(), []hir.Param{{Name: "p", Type: ref()}, {Name: "n", Type: hir.Int()}},
				hir.Return(hir.Var("p"))),
		},
		{
			name: "value result",
			fn: hir.NewFunc("sum", hir.Int(), []hir.Param{{Name: "a", Type: ref()}, {Name: "b", Type: ref()}},
				hir.Return(hir.IntLit(0))),
		},
		{
			name: "tied to the returned parameter",
			fn: hir.NewFunc("first", ref(), []hir.Param{{Name: "a", Type: ref()}, {Name: "b", Type: ref()}},
				hir.Return(hir.Var("a"))),
			params: []string{"a"},
		},
		{
			name: "either parameter",
			fn: hir.NewFunc("pick", ref(), []hir.Param{{Name: "a", Type: ref()}, {Name: "b", Type: ref()}},
				hir.If(hir.Var("a"), []hir.Stmt{hir.Return(hir.Var("b"))}, nil),
				hir.Return(hir.Var("a"))),
			params: []string{"a", "b"},
		},
		{
			name: "unknown source ties all references",
			fn: hir.NewFunc("other", ref(), []hir.Param{{Name: "a", Type: ref()}, {Name: "b", Type: ref()}},
				hir.Return(hir.Call("lookup"))),
			params: []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		a := Annotate(tt.fn)
		if a.Needed() != (tt.params != nil) {
			t.Errorf("%s: Needed() = %v", tt.name, a.Needed())
			continue
		}
		if !reflect.DeepEqual(a.Params, tt.params) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.params, a.Params)
		}
		if err := Validate(a.Apply(tt.fn)); err != nil {
			t.Errorf("%s: annotated signature does not validate: %v", tt.name, err)
		}
	}
	if Annotate(nil).Needed() {
		t.Errorf("nil functions need nothing")
	}
}

func TestApplyLeavesInputAlone(t *testing.T) {
	fn := hir.NewFunc("first", ref(), []hir.Param{{Name: "a", Type: ref()}, {Name: "b", Type: ref()}},
		hir.Return(hir.Var("a")))
	out := Annotate(fn).Apply(fn)
	if got, want := out.Signature(), "fn first<'a>(a: &'a i32, b: &i32) -> &'a i32"; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if fn.Signature() != "fn first(a: &i32, b: &i32) -> &i32" {
		t.Errorf("input was modified: %s", fn.Signature())
	}
}

func TestValidate(t *testing.T) {
	bare := hir.NewFunc("first", ref(), []hir.Param{{Name: "a", Type: ref()}, {Name: "b", Type: ref()}})
	if err := Validate(bare); err == nil {
		t.Errorf("expected an elision error")
	}
	undeclared := hir.NewFunc("f", ref().WithLifetime("b"), []hir.Param{{Name: "a", Type: ref()}})
	if err := Validate(undeclared); err == nil {
		t.Errorf("expected an undeclared lifetime error")
	}
	if err := Validate(hir.NewFunc("g", ref(), []hir.Param{{Name: "a", Type: ref()}})); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
