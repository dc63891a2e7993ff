package driver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/paiml/decy-sub003/internal/borrowgen"
	"github.com/paiml/decy-sub003/internal/dataflow"
	"github.com/paiml/decy-sub003/internal/diag"
	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/lifetime"
	"github.com/paiml/decy-sub003/internal/observ"
	"github.com/paiml/decy-sub003/internal/ownership"
	"github.com/paiml/decy-sub003/internal/trace"
)

// Result holds every artifact of analyzing one function.
type Result struct {
	Func        *hir.Func
	Fingerprint hir.Fingerprint
	Graph       *dataflow.Graph
	Classifier  string
	Threshold   float64
	Inferences  ownership.Inferences
	Transformed *hir.Func
	Scopes      *lifetime.ScopeTree
	Lifetimes   map[string]lifetime.VariableLifetime
	Relations   lifetime.Relations
	Dangling    []string
	Diagnostics *diag.Bag
	Timings     observ.Report
}

// AnalyzeFunc runs the full pipeline on fn. The only errors are a nil
// function and cancellation of ctx; the analyses themselves never fail.
func AnalyzeFunc(ctx context.Context, fn *hir.Func, opts Options) (*Result, error) {
	if fn == nil {
		return nil, fmt.Errorf("analyze: nil function")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracer := trace.FromContext(ctx)
	fnSpan := trace.Begin(tracer, trace.ScopeFunc, fn.Name, trace.CurrentSpan(ctx))
	parent := fnSpan.ID()

	fp, err := hir.FingerprintOf(fn)
	if err != nil {
		fnSpan.End("fingerprint failed")
		return nil, fmt.Errorf("analyze %s: %w", fn.Name, err)
	}

	c := opts.classifier()
	res := &Result{
		Func:        fn,
		Fingerprint: fp,
		Classifier:  c.Name(),
		Threshold:   opts.threshold(),
		Diagnostics: diag.NewBag(opts.MaxDiagnostics),
	}
	timer := observ.NewTimer()
	stage := func(s Stage, run func() string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		opts.emit(fn.Name, s)
		span := trace.Begin(tracer, trace.ScopeStage, s.String(), parent)
		note := run()
		timer.Record(s.String(), span.End(note), note)
		return nil
	}

	steps := []struct {
		stage Stage
		run   func() string
	}{
		{StageDataflow, func() string {
			res.Graph = dataflow.Analyze(fn)
			return strconv.Itoa(len(res.Graph.Variables())) + " pointers"
		}},
		{StageInfer, func() string {
			res.Inferences = ownership.Infer(res.Graph, fn, c)
			traceDecisions(tracer, parent, res)
			return strconv.Itoa(len(res.Inferences)) + " inferences"
		}},
		{StageGenerate, func() string {
			gen := borrowgen.NewGenerator(borrowgen.WithThreshold(res.Threshold))
			res.Transformed = gen.TransformFunction(fn, res.Inferences)
			return res.Transformed.Signature()
		}},
		{StageLifetime, func() string {
			res.Scopes = lifetime.BuildScopeTree(fn)
			res.Lifetimes = lifetime.TrackLifetimes(fn, res.Scopes)
			res.Relations = lifetime.InferRelationships(res.Lifetimes, res.Scopes)
			res.Dangling = lifetime.DetectDanglingPointers(res.Lifetimes)
			return strconv.Itoa(res.Scopes.Len()) + " scopes"
		}},
	}
	for _, st := range steps {
		if err := stage(st.stage, st.run); err != nil {
			fnSpan.End("cancelled")
			return nil, err
		}
	}

	collectDiagnostics(res)
	res.Timings = timer.Report()
	opts.emit(fn.Name, StageDone)
	fnSpan.WithExtra("diagnostics", strconv.Itoa(res.Diagnostics.Len())).End("")
	return res, nil
}

func traceDecisions(t trace.Tracer, parent uint64, res *Result) {
	if !t.Level().ShouldEmit(trace.ScopeVar) {
		return
	}
	for _, name := range sortedNames(res.Inferences) {
		trace.Point(t, trace.ScopeVar, name, res.Inferences[name].Reason, parent)
	}
}

// collectDiagnostics records the findings a caller should review: pointers
// left raw, inferences the threshold discarded, folded length parameters,
// explicit lifetimes and locals that escape from nested scopes.
func collectDiagnostics(res *Result) {
	bag := res.Diagnostics
	fn := res.Func.Name
	for _, name := range sortedNames(res.Inferences) {
		inf := res.Inferences[name]
		_, unknown := inf.Kind.(ownership.Unknown)
		ap, isArray := inf.Kind.(ownership.ArrayPointer)
		switch {
		case isArray && ap.Rebased && inf.Confidence >= res.Threshold:
			bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.OwnRebasedPointer,
				Func:     fn,
				Variable: name,
				Message:  fmt.Sprintf("%s moves through %s, raw pointer kept", name, ap.BaseArray),
				Notes:    []string{inf.Reason},
			})
		case unknown:
			bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.OwnUnknownPointer,
				Func:     fn,
				Variable: name,
				Message:  fmt.Sprintf("no safe type for %s, raw pointer kept", name),
				Notes:    []string{inf.Reason},
			})
		case inf.Confidence < res.Threshold:
			bag.Add(diag.Diagnostic{
				Severity: diag.SevInfo,
				Code:     diag.OwnLowConfidence,
				Func:     fn,
				Variable: name,
				Message: fmt.Sprintf("%s inferred at %.0f%%, below threshold %.0f%%, raw pointer kept",
					ownership.KindName(inf.Kind), inf.Confidence*100, res.Threshold*100),
				Notes: []string{inf.Reason},
			})
		}
	}

	kept := make(map[string]bool, len(res.Transformed.Params))
	for _, p := range res.Transformed.Params {
		kept[p.Name] = true
	}
	for _, ap := range res.Graph.ArrayParameters() {
		if ap.LengthParam == "" || kept[ap.LengthParam] {
			continue
		}
		bag.Add(diag.Diagnostic{
			Severity: diag.SevInfo,
			Code:     diag.OwnLengthParamFolded,
			Func:     fn,
			Variable: ap.LengthParam,
			Message:  fmt.Sprintf("length parameter %s replaced by %s.len()", ap.LengthParam, ap.Name),
		})
	}

	if lts := res.Transformed.Lifetimes; len(lts) > 0 {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevInfo,
			Code:     diag.LifeExplicit,
			Func:     fn,
			Message:  fmt.Sprintf("result lifetime cannot be elided, signature declares '%s", lts[0]),
		})
	}
	if err := lifetime.Validate(res.Transformed); err != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevWarning,
			Code:     diag.LifeInfo,
			Func:     fn,
			Message:  err.Error(),
		})
	}

	for _, name := range res.Dangling {
		lt := res.Lifetimes[name]
		kind := "nested"
		if s, ok := res.Scopes.Scope(lt.DeclaredIn); ok {
			kind = s.Kind.String()
		}
		bag.Add(diag.Diagnostic{
			Severity: diag.SevWarning,
			Code:     diag.LifeDanglingPointer,
			Func:     fn,
			Variable: name,
			Message:  fmt.Sprintf("%s is declared in a %s scope but escapes through return", name, kind),
		})
	}
	bag.Sort()
}
