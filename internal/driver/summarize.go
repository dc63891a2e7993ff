package driver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/paiml/decy-sub003/internal/borrowgen"
	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/report"
	"github.com/paiml/decy-sub003/internal/trace"
)

// Summarize flattens a Result into its serializable summary.
func Summarize(res *Result) report.Summary {
	s := report.Summary{
		Func:        res.Func.Name,
		Fingerprint: res.Fingerprint.Hex(),
		Classifier:  res.Classifier,
		Threshold:   res.Threshold,
		Original:    res.Func.Signature(),
		Signature:   res.Transformed.Signature(),
		Rust:        res.Transformed.String(),
		Dangling:    res.Dangling,
		Timings:     res.Timings,
	}

	gen := borrowgen.NewGenerator(borrowgen.WithThreshold(res.Threshold))
	for _, name := range sortedNames(res.Inferences) {
		inf := res.Inferences[name]
		t, _ := res.Graph.TypeOf(name)
		safe := gen.TransformType(t, name, res.Inferences)
		s.Variables = append(s.Variables, report.Variable{
			Name:       name,
			Kind:       inf.Kind.String(),
			Confidence: inf.Confidence,
			Trusted:    !safe.Equal(t),
			Type:       t.String(),
			SafeType:   safe.String(),
			Reason:     inf.Reason,
		})
	}

	for _, p := range res.Relations.Sorted() {
		s.Relations = append(s.Relations, report.Relation{
			First:    p.First,
			Second:   p.Second,
			Relation: res.Relations[p].String(),
		})
	}

	for _, d := range res.Diagnostics.Items() {
		s.Diagnostics = append(s.Diagnostics, report.Finding{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Variable: d.Variable,
			Message:  d.Message,
			Notes:    d.Notes,
		})
	}
	return s
}

// Batch summarizes every function, serving unchanged functions from
// opts.Cache when it is set. summaries[i] belongs to fns[i].
func Batch(ctx context.Context, fns []*hir.Func, opts Options) ([]report.Summary, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "batch", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span.ID())

	opts.Classifier = opts.classifier()
	summaries := make([]report.Summary, len(fns))
	keys := make([]CacheKey, len(fns))
	var pending []int

	for i, fn := range fns {
		if fn == nil {
			span.End("failed")
			return nil, fmt.Errorf("batch: function %d is nil", i)
		}
		if opts.Cache == nil {
			pending = append(pending, i)
			continue
		}
		fp, err := hir.FingerprintOf(fn)
		if err != nil {
			span.End("failed")
			return nil, fmt.Errorf("batch %s: %w", fn.Name, err)
		}
		keys[i] = KeyFor(fp, opts.Classifier.Name(), opts.threshold())
		cached, ok, err := opts.Cache.Get(keys[i])
		if err != nil {
			// A corrupt entry is recomputed and overwritten.
			trace.Point(trace.FromContext(ctx), trace.ScopeFunc, fn.Name, err.Error(), span.ID())
		}
		if ok {
			cached.Cached = true
			summaries[i] = cached
			opts.at(i).emit(fn.Name, StageCached)
			continue
		}
		pending = append(pending, i)
	}

	todo := make([]*hir.Func, len(pending))
	for j, i := range pending {
		todo[j] = fns[i]
	}
	sub := opts
	sub.positions = pending
	results, err := AnalyzeAll(ctx, todo, sub)
	if err != nil {
		span.End("failed")
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(workers(opts.Jobs, len(pending)))
	for j, i := range pending {
		summaries[i] = Summarize(results[j])
		if opts.Cache == nil {
			continue
		}
		s := summaries[i]
		key := keys[i]
		g.Go(func() error {
			if err := opts.Cache.Put(key, &s); err != nil {
				return fmt.Errorf("cache %s: %w", s.Func, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("failed")
		return nil, err
	}
	span.End(fmt.Sprintf("%d analyzed, %d cached", len(pending), len(fns)-len(pending)))
	return summaries, nil
}
