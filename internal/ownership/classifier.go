package ownership

import "fmt"

// InferredOwnership is a classifier's vote for a pointer's safe representation.
type InferredOwnership uint8

const (
	RawPointer InferredOwnership = iota
	Owned
	Borrowed
	BorrowedMut
	Vec
	Slice
	SliceMut
	Shared
)

func (o InferredOwnership) String() string {
	switch o {
	case Owned:
		return "Owned"
	case Borrowed:
		return "Borrowed"
	case BorrowedMut:
		return "BorrowedMut"
	case Vec:
		return "Vec"
	case Slice:
		return "Slice"
	case SliceMut:
		return "SliceMut"
	case Shared:
		return "Shared"
	case RawPointer:
		return "RawPointer"
	default:
		return fmt.Sprintf("InferredOwnership(%d)", uint8(o))
	}
}

// ParseInferredOwnership is the inverse of String.
func ParseInferredOwnership(s string) (InferredOwnership, error) {
	for o := RawPointer; o <= Shared; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return RawPointer, fmt.Errorf("unknown ownership %q", s)
}

// Prediction is a classifier result. Confidence is in [0, 1].
type Prediction struct {
	Ownership  InferredOwnership
	Confidence float64
}

// Classifier maps features to a prediction. Implementations must be pure and
// safe for concurrent use; the orchestrator holds them behind this interface
// so alternative strategies can be swapped in.
type Classifier interface {
	Classify(f Features) Prediction
	Name() string
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ByName returns the built-in classifier registered under name.
func ByName(name string) (Classifier, error) {
	switch name {
	case "", "rules":
		return NewRuleBased(), nil
	case "ensemble":
		return DefaultEnsemble(), nil
	default:
		return nil, fmt.Errorf("unknown classifier %q (expected: rules|ensemble)", name)
	}
}
