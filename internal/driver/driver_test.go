package driver_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/paiml/decy-sub003/internal/diag"
	"github.com/paiml/decy-sub003/internal/driver"
	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/ownership"
	"github.com/paiml/decy-sub003/internal/trace"
)

func ptr(s hir.Stmt) *hir.Stmt { return &s }

func intPtr() hir.Type { return hir.PointerTo(hir.Int()) }

// sum reads arr[0..len) through pointer arithmetic.
func sum() *hir.Func {
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
		),
		hir.Return(hir.Var("total")),
	)
}

// pick returns a pointer declared inside the then branch.
func pick() *hir.Func {
	return hir.NewFunc("pick", intPtr(), []hir.Param{{Name: "c", Type: hir.Int()}},
		hir.If(hir.Var("c"), []hir.Stmt{
			hir.Decl("q", intPtr(), hir.Malloc(hir.Sizeof(hir.Int()))),
			hir.Return(hir.Var("q")),
		}, nil),
		hir.Return(hir.Null()),
	)
}

func first() *hir.Func {
	return hir.NewFunc("first", hir.Int(), []hir.Param{{Name: "pp", Type: hir.PointerTo(intPtr())}},
		hir.Return(hir.Deref(hir.Deref(hir.Var("pp")))),
	)
}

func hasCode(bag *diag.Bag, code diag.Code, variable string) bool {
	for _, d := range bag.Items() {
		if d.Code == code && d.Variable == variable {
			return true
		}
	}
	return false
}

func TestAnalyzeFuncFoldsLength(t *testing.T) {
	res, err := driver.AnalyzeFunc(context.Background(), sum(), driver.Options{})
	if err != nil {
		t.Fatalf("AnalyzeFunc: %v", err)
	}
	if got := res.Transformed.Signature(); got != "fn sum(arr: &[i32]) -> i32" {
		t.Errorf("unexpected signature %q", got)
	}
	if !hasCode(res.Diagnostics, diag.OwnLengthParamFolded, "len") {
		t.Errorf("expected a folded-length diagnostic, got %v", res.Diagnostics.Items())
	}
	if res.Classifier != "rules" || res.Threshold != 0.65 {
		t.Errorf("unexpected defaults %q %v", res.Classifier, res.Threshold)
	}
	if len(res.Timings.Stages) != 4 {
		t.Errorf("expected 4 timed stages, got %+v", res.Timings.Stages)
	}
}

func TestAnalyzeFuncReportsRiskyPointers(t *testing.T) {
	res, err := driver.AnalyzeFunc(context.Background(), pick(), driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Dangling) != 1 || res.Dangling[0] != "q" {
		t.Fatalf("expected q to dangle, got %v", res.Dangling)
	}
	if !hasCode(res.Diagnostics, diag.LifeDanglingPointer, "q") || !res.Diagnostics.HasWarnings() {
		t.Errorf("expected a dangling pointer warning, got %v", res.Diagnostics.Items())
	}

	res, err = driver.AnalyzeFunc(context.Background(), first(), driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(res.Diagnostics, diag.OwnUnknownPointer, "pp") {
		t.Errorf("expected pp to stay raw, got %v", res.Diagnostics.Items())
	}
	if res.Transformed.Params[0].Type.String() != "*mut *mut i32" {
		t.Errorf("double pointer must be kept, got %s", res.Transformed.Params[0].Type)
	}
}

func TestAnalyzeFuncThresholdOption(t *testing.T) {
	res, err := driver.AnalyzeFunc(context.Background(), sum(), driver.Options{Threshold: 0.99})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Transformed.Params) != 2 {
		t.Errorf("a strict threshold should keep the raw signature, got %s", res.Transformed.Signature())
	}
	if !hasCode(res.Diagnostics, diag.OwnLowConfidence, "arr") {
		t.Errorf("expected a low confidence note, got %v", res.Diagnostics.Items())
	}
}

func TestAnalyzeAllKeepsOrder(t *testing.T) {
	fns := []*hir.Func{sum(), pick(), first(), sum(), pick()}
	results, err := driver.AnalyzeAll(context.Background(), fns, driver.Options{
		Jobs:       2,
		Classifier: ownership.DefaultEnsemble(),
	})
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	for i, res := range results {
		if res.Func != fns[i] {
			t.Errorf("result %d belongs to %s", i, res.Func.Name)
		}
	}
	if results[0].Transformed.String() != results[3].Transformed.String() {
		t.Errorf("identical inputs produced different output")
	}
}

func TestAnalyzeAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := driver.AnalyzeAll(ctx, []*hir.Func{sum(), pick()}, driver.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := driver.AnalyzeAll(context.Background(), []*hir.Func{nil}, driver.Options{}); err == nil {
		t.Errorf("expected an error for a nil function")
	}
}

func TestEventsEndWithDone(t *testing.T) {
	events := make(chan driver.Event, 64)
	if _, err := driver.AnalyzeAll(context.Background(), []*hir.Func{sum(), pick()}, driver.Options{Events: events}); err != nil {
		t.Fatal(err)
	}
	close(events)

	last := map[string]driver.Event{}
	for ev := range events {
		if prev, ok := last[ev.Func]; ok && prev.Done {
			t.Errorf("%s: event after done: %+v", ev.Func, ev)
		}
		last[ev.Func] = ev
	}
	for _, name := range []string{"sum", "pick"} {
		if ev := last[name]; !ev.Done || ev.Stage != driver.StageDone {
			t.Errorf("%s: expected a final done event, got %+v", name, ev)
		}
	}
}

func TestBatchEventsCarryBatchIndex(t *testing.T) {
	cache, err := driver.OpenDiskCache(t.TempDir(), "decy-own")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := driver.Batch(context.Background(), []*hir.Func{pick()}, driver.Options{Cache: cache}); err != nil {
		t.Fatal(err)
	}

	events := make(chan driver.Event, 64)
	fns := []*hir.Func{sum(), pick(), sum()}
	if _, err := driver.Batch(context.Background(), fns, driver.Options{Cache: cache, Events: events, Jobs: 2}); err != nil {
		t.Fatal(err)
	}
	close(events)

	last := map[int]driver.Event{}
	for ev := range events {
		if ev.Func != fns[ev.Index].Name {
			t.Errorf("event %+v does not match function %d", ev, ev.Index)
		}
		last[ev.Index] = ev
	}
	want := []driver.Stage{driver.StageDone, driver.StageCached, driver.StageDone}
	for i, stage := range want {
		if ev, ok := last[i]; !ok || !ev.Done || ev.Stage != stage {
			t.Errorf("function %d: expected final %v, got %+v", i, stage, ev)
		}
	}
}

func TestAnalyzeFuncReportsRebasedPointer(t *testing.T) {
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
	res, err := driver.AnalyzeFunc(context.Background(), fn, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(res.Diagnostics, diag.OwnRebasedPointer, "p") {
		t.Errorf("expected a rebased pointer warning, got %v", res.Diagnostics.Items())
	}
}

func TestAnalyzeFuncReportsExplicitLifetime(t *testing.T) {
	fn := hir.NewFunc("first", intPtr(),
		[]hir.Param{{Name: "a", Type: intPtr()}, {Name: "b", Type: intPtr()}},
		hir.Return(hir.Var("a")),
	)
	res, err := driver.AnalyzeFunc(context.Background(), fn, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(res.Diagnostics, diag.LifeExplicit, "") {
		t.Errorf("expected an explicit lifetime note, got %v", res.Diagnostics.Items())
	}
	if hasCode(res.Diagnostics, diag.LifeInfo, "") {
		t.Errorf("annotated signature should validate, got %v", res.Diagnostics.Items())
	}
}

func TestTraceCoversStages(t *testing.T) {
	rec := trace.NewRecorder(trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), rec)
	if _, err := driver.AnalyzeAll(ctx, []*hir.Func{sum()}, driver.Options{}); err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, ev := range rec.Events() {
		seen[ev.Scope.String()+":"+ev.Name] = true
	}
	for _, want := range []string{"driver:analyze", "func:sum", "stage:dataflow", "stage:lifetime", "var:arr"} {
		if !seen[want] {
			t.Errorf("missing trace event %s", want)
		}
	}
}

func TestBatchUsesCache(t *testing.T) {
	cache, err := driver.OpenDiskCache(t.TempDir(), "decy-own")
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.Options{Cache: cache, Jobs: 2}
	fns := []*hir.Func{sum(), pick()}

	cold, err := driver.Batch(context.Background(), fns, opts)
	if err != nil {
		t.Fatalf("cold batch: %v", err)
	}
	warm, err := driver.Batch(context.Background(), fns, opts)
	if err != nil {
		t.Fatalf("warm batch: %v", err)
	}
	for i := range fns {
		if cold[i].Cached || !warm[i].Cached {
			t.Errorf("%s: cached flags cold=%v warm=%v", fns[i].Name, cold[i].Cached, warm[i].Cached)
		}
		if cold[i].Rust != warm[i].Rust || len(cold[i].Variables) != len(warm[i].Variables) {
			t.Errorf("%s: cached summary differs", fns[i].Name)
		}
	}

	ens, err := driver.Batch(context.Background(), fns[:1], driver.Options{Cache: cache, Classifier: ownership.DefaultEnsemble()})
	if err != nil {
		t.Fatal(err)
	}
	if ens[0].Cached {
		t.Errorf("a different classifier must not hit the cache")
	}
}

func TestSummarize(t *testing.T) {
	res, err := driver.AnalyzeFunc(context.Background(), sum(), driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s := driver.Summarize(res)
	if s.Original != "fn sum(arr: *mut i32, len: i32) -> i32" {
		t.Errorf("unexpected original %q", s.Original)
	}
	if len(s.Variables) != 1 || !s.Variables[0].Trusted || s.Variables[0].SafeType != "&[i32]" {
		t.Errorf("unexpected variables %+v", s.Variables)
	}
	if !strings.Contains(s.Rust, "arr.len()") {
		t.Errorf("expected rewritten body:\n%s", s.Rust)
	}
	if len(s.Fingerprint) != 16 {
		t.Errorf("unexpected fingerprint %q", s.Fingerprint)
	}
}

func TestKeyFor(t *testing.T) {
	fp, err := hir.FingerprintOf(sum())
	if err != nil {
		t.Fatal(err)
	}
	a := driver.KeyFor(fp, "rules", 0.65)
	if a != driver.KeyFor(fp, "rules", 0.65) {
		t.Errorf("keys must be stable")
	}
	if a == driver.KeyFor(fp, "rules", 0.7) || a == driver.KeyFor(fp, "ensemble", 0.65) {
		t.Errorf("keys must depend on the settings")
	}
}
