package ownership

import (
	"math"

	"fortio.org/safecast"

	"github.com/paiml/decy-sub003/internal/dataflow"
	"github.com/paiml/decy-sub003/internal/hir"
)

// AllocationKind is where a pointer's storage comes from.
type AllocationKind uint8

const (
	AllocUnknown AllocationKind = iota
	AllocStack
	AllocHeap
	AllocParameter
)

func (k AllocationKind) String() string {
	switch k {
	case AllocStack:
		return "stack"
	case AllocHeap:
		return "heap"
	case AllocParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// Features is the fixed-shape evidence record a Classifier consumes.
type Features struct {
	PointerDepth      uint8
	ConstQualified    bool
	WriteCount        uint32
	HasSizeParam      bool
	ArrayDecay        bool
	AllocationSite    AllocationKind
	DeallocationCount uint8
	ArithmeticOps     bool
	IndexedAccess     bool
	ArrayAllocation   bool
}

// Extract summarizes what the graph knows about one variable. Unknown names
// yield a zero-depth record with AllocUnknown.
func Extract(variable string, g *dataflow.Graph, fn *hir.Func) Features {
	var f Features

	t, isParam := declaredType(variable, g, fn)
	f.PointerDepth = depthOf(t)
	f.ConstQualified = t.Kind == hir.TypeReference && !t.Mutable

	if g.IsModified(variable) {
		f.WriteCount = 1
	}
	if g.IsFreed(variable) {
		f.DeallocationCount = 1
	}
	f.ArithmeticOps = g.HasPointerArithmetic(variable)
	f.IndexedAccess = g.IsIndexed(variable)
	f.HasSizeParam = g.HasSizeParameter(variable)

	_, derived := g.ArrayBaseFor(variable)
	isArrayParam, _ := g.IsArrayParameter(variable)
	f.ArrayDecay = derived || isArrayParam

	switch kind := g.NodeKindOf(variable); {
	case isParam:
		f.AllocationSite = AllocParameter
	case derived:
		f.AllocationSite = AllocStack
	case kind == dataflow.NodeAllocation:
		f.AllocationSite = AllocHeap
	case kind == dataflow.NodeArrayAllocation:
		f.AllocationSite = AllocHeap
		f.ArrayAllocation = true
	default:
		f.AllocationSite = AllocUnknown
	}
	return f
}

func declaredType(variable string, g *dataflow.Graph, fn *hir.Func) (hir.Type, bool) {
	if fn != nil {
		if p, ok := fn.Param(variable); ok {
			return p.Type, true
		}
	}
	t, _ := g.TypeOf(variable)
	return t, false
}

func depthOf(t hir.Type) uint8 {
	d, err := safecast.Conv[uint8](t.Depth())
	if err != nil {
		return math.MaxUint8
	}
	return d
}
