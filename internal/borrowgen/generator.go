// Package borrowgen rewrites raw pointer types into safe reference, box and
// slice types according to ownership inferences. Inferences below the
// generator's confidence threshold are ignored and the raw pointer is kept.
package borrowgen

import (
	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/ownership"
)

// DefaultThreshold is the minimum confidence an inference needs before the
// generator acts on it.
const DefaultThreshold = 0.65

// Generator applies ownership inferences to types and functions.
// It holds no per-call state and is safe for concurrent use.
type Generator struct {
	threshold float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithThreshold sets the confidence threshold.
func WithThreshold(t float64) Option {
	return func(g *Generator) {
		g.threshold = t
	}
}

// NewGenerator creates a generator with DefaultThreshold unless overridden.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Threshold returns the configured confidence threshold.
func (g *Generator) Threshold() float64 { return g.threshold }

// TransformType returns the safe type for variable. Non-pointer types, names
// without an inference, untrusted inferences, Unknown and rebased array
// pointers all return t as is.
//
// Only the outermost pointer layer is rewritten: `int **pp` judged a mutable
// borrow becomes `&mut *mut i32`.
func (g *Generator) TransformType(t hir.Type, variable string, inf ownership.Inferences) hir.Type {
	if !t.IsPointer() {
		return t
	}
	in, ok := inf.Trusted(variable, g.threshold)
	if !ok {
		return t
	}
	pointee := t.Pointee()
	switch k := in.Kind.(type) {
	case ownership.Owning:
		return hir.BoxOf(pointee)
	case ownership.ImmutableBorrow:
		return hir.RefTo(pointee, false)
	case ownership.MutableBorrow:
		return hir.RefTo(pointee, true)
	case ownership.ArrayPointer:
		if k.Rebased {
			return t
		}
		elem := pointee
		if elem.Kind == hir.TypeVoid {
			elem = k.ElementType
		}
		return hir.RefTo(hir.SliceOf(elem), k.Mutable)
	}
	return t
}

// TransformParameters maps each parameter through TransformType, keeping
// order and names.
func (g *Generator) TransformParameters(params []hir.Param, inf ownership.Inferences) []hir.Param {
	if params == nil {
		return nil
	}
	out := make([]hir.Param, len(params))
	for i, p := range params {
		out[i] = hir.Param{Name: p.Name, Type: g.TransformType(p.Type, p.Name, inf)}
	}
	return out
}
