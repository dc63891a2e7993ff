package ownership

import (
	"fmt"

	"github.com/paiml/decy-sub003/internal/hir"
)

// Kind is the final ownership decision for a pointer. The set is closed:
// Owning, ImmutableBorrow, MutableBorrow, ArrayPointer and Unknown.
type Kind interface {
	fmt.Stringer
	isKind()
}

// Owning means the pointer uniquely owns a heap allocation.
type Owning struct{}

// ImmutableBorrow means the pointer is only read through.
type ImmutableBorrow struct{}

// MutableBorrow means the pointer is written through but owns nothing.
type MutableBorrow struct{}

// ArrayPointer means the pointer addresses elements of BaseArray starting at
// BaseIndex. Mutable is set when any element is written through it. Rebased
// is set when the pointer itself is advanced or re-pointed; it then has no
// fixed anchor and no slice can stand in for it.
type ArrayPointer struct {
	BaseArray   string
	ElementType hir.Type
	BaseIndex   int64
	Mutable     bool
	Rebased     bool
}

// Unknown means evidence was insufficient; the raw pointer is kept.
type Unknown struct{}

func (Owning) isKind()          {}
func (ImmutableBorrow) isKind() {}
func (MutableBorrow) isKind()   {}
func (ArrayPointer) isKind()    {}
func (Unknown) isKind()         {}

func (Owning) String() string          { return "Owning" }
func (ImmutableBorrow) String() string { return "ImmutableBorrow" }
func (MutableBorrow) String() string   { return "MutableBorrow" }
func (Unknown) String() string         { return "Unknown" }

func (a ArrayPointer) String() string {
	mut := ""
	if a.Mutable {
		mut = "mut "
	}
	walk := ""
	if a.Rebased {
		walk = ", rebased"
	}
	return fmt.Sprintf("ArrayPointer(%s%s[%d..]: %s%s)", mut, a.BaseArray, a.BaseIndex, a.ElementType, walk)
}

// KindName returns the variant name without payload.
func KindName(k Kind) string {
	switch k.(type) {
	case Owning:
		return "Owning"
	case ImmutableBorrow:
		return "ImmutableBorrow"
	case MutableBorrow:
		return "MutableBorrow"
	case ArrayPointer:
		return "ArrayPointer"
	default:
		return "Unknown"
	}
}

// Inference is the decision recorded for one variable.
type Inference struct {
	Variable   string
	Kind       Kind
	Confidence float64
	Reason     string
}

// Inferences maps variable names to their inference.
type Inferences map[string]Inference

// Trusted reports whether the inference for name exists and clears threshold.
func (in Inferences) Trusted(name string, threshold float64) (Inference, bool) {
	inf, ok := in[name]
	if !ok || inf.Confidence < threshold {
		return Inference{}, false
	}
	return inf, true
}
