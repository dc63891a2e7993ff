package driver

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/ownership"
	"github.com/paiml/decy-sub003/internal/trace"
)

func workers(jobs, n int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

// AnalyzeAll runs AnalyzeFunc on every function with at most opts.Jobs
// running at once. results[i] belongs to fns[i]. The first error cancels
// the remaining work. A non-nil opts.Events must be drained by the caller.
func AnalyzeAll(ctx context.Context, fns []*hir.Func, opts Options) ([]*Result, error) {
	results := make([]*Result, len(fns))
	if len(fns) == 0 {
		return results, nil
	}
	for i, fn := range fns {
		if fn == nil {
			return nil, fmt.Errorf("analyze: function %d is nil", i)
		}
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "analyze", trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span.ID())

	// Share one classifier instance so the ensemble is built once.
	opts.Classifier = opts.classifier()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(opts.Jobs, len(fns)))
	for i, fn := range fns {
		fo := opts.at(i)
		fo.emit(fn.Name, StageQueued)
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := AnalyzeFunc(gctx, fn, fo)
			if err != nil {
				return err
			}
			// each goroutine owns its index
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func sortedNames(in ownership.Inferences) []string {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
