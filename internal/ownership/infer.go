package ownership

import (
	"fmt"
	"math"

	"github.com/paiml/decy-sub003/internal/dataflow"
	"github.com/paiml/decy-sub003/internal/hir"
)

// ArrayDerivedConfidence is assigned to pointers initialized straight from an
// array; the dataflow fact is structural, not statistical.
const ArrayDerivedConfidence = 0.95

// Infer decides an ownership kind for every pointer-typed parameter and local
// the graph tracks. Parameters are visited first in declaration order, then
// locals in name order, so the result is deterministic for a given input.
func Infer(g *dataflow.Graph, fn *hir.Func, c Classifier) Inferences {
	out := make(Inferences)
	if fn != nil {
		for _, p := range fn.Params {
			if p.Type.IsPointerLike() {
				out[p.Name] = inferOne(p.Name, p.Type, g, fn, c)
			}
		}
	}
	for _, name := range g.Variables() {
		if _, done := out[name]; done {
			continue
		}
		t, _ := g.TypeOf(name)
		if !t.IsPointerLike() {
			continue
		}
		out[name] = inferOne(name, t, g, fn, c)
	}
	return out
}

func inferOne(name string, t hir.Type, g *dataflow.Graph, fn *hir.Func, c Classifier) Inference {
	if base, ok := g.ArrayBaseFor(name); ok {
		elem, found := g.ArrayElemType(name)
		if !found {
			elem = t.Pointee()
		}
		reason := fmt.Sprintf("%s: array-derived pointer from %s (enables safe slice indexing)", name, base)
		if g.IsReassigned(name) {
			reason = fmt.Sprintf("%s: array-derived pointer from %s is advanced or re-pointed (raw pointer kept)", name, base)
		}
		return Inference{
			Variable: name,
			Kind: ArrayPointer{
				BaseArray:   base,
				ElementType: elem,
				BaseIndex:   g.ArrayBaseIndex(name),
				Mutable:     g.IsModified(name),
				Rebased:     g.IsReassigned(name),
			},
			Confidence: ArrayDerivedConfidence,
			Reason:     reason,
		}
	}

	features := Extract(name, g, fn)
	pred := c.Classify(features)
	return Inference{
		Variable:   name,
		Kind:       kindFor(name, t, pred.Ownership, g.IsReassigned(name)),
		Confidence: clamp01(pred.Confidence),
		Reason:     fmt.Sprintf("%s: %s: %s (confidence %.0f%%)", name, c.Name(), pred.Ownership, math.Round(pred.Confidence*100)),
	}
}

// kindFor maps a classifier vote to a kind. Slices are anchored to the
// variable itself; Vec, Shared and RawPointer have no safe counterpart here.
func kindFor(name string, t hir.Type, o InferredOwnership, rebased bool) Kind {
	switch o {
	case Owned:
		return Owning{}
	case Borrowed:
		return ImmutableBorrow{}
	case BorrowedMut:
		return MutableBorrow{}
	case Slice, SliceMut:
		return ArrayPointer{
			BaseArray:   name,
			ElementType: t.Pointee(),
			Mutable:     o == SliceMut,
			Rebased:     rebased,
		}
	default:
		return Unknown{}
	}
}
