package ownership

// RuleWeights are the base confidences of the rule-based classifier and the
// bonuses added when independent features agree.
type RuleWeights struct {
	Contradiction float64 // const reference that is written through
	HeapArray     float64
	Heap          float64
	FreeBonus     float64
	ArrayDecay    float64
	SizeParam     float64
	SizeBonus     float64
	IndexBonus    float64
	ReadOnly      float64
	ConstBonus    float64
	ParamBonus    float64
	Written       float64
	Fallback      float64
}

// DefaultRuleWeights returns the weights used by NewRuleBased.
func DefaultRuleWeights() RuleWeights {
	return RuleWeights{
		Contradiction: 0.20,
		HeapArray:     0.90,
		Heap:          0.85,
		FreeBonus:     0.10,
		ArrayDecay:    0.75,
		SizeParam:     0.55,
		SizeBonus:     0.10,
		IndexBonus:    0.05,
		ReadOnly:      0.75,
		ConstBonus:    0.10,
		ParamBonus:    0.05,
		Written:       0.75,
		Fallback:      0.30,
	}
}

// RuleBased is a deterministic classifier. The most specific matching rule
// decides the ownership; bonuses for agreeing evidence raise the confidence.
type RuleBased struct {
	name string
	w    RuleWeights
}

// NewRuleBased creates a classifier with DefaultRuleWeights.
func NewRuleBased() *RuleBased {
	return &RuleBased{name: "rules", w: DefaultRuleWeights()}
}

// NewRuleBasedWithWeights creates a named classifier with custom weights.
func NewRuleBasedWithWeights(name string, w RuleWeights) *RuleBased {
	return &RuleBased{name: name, w: w}
}

// ConservativeRuleWeights discounts borrow and slice evidence so that only
// strongly corroborated pointers clear the default threshold.
func ConservativeRuleWeights() RuleWeights {
	w := DefaultRuleWeights()
	w.ArrayDecay = 0.65
	w.SizeParam = 0.40
	w.ReadOnly = 0.60
	w.Written = 0.55
	w.Fallback = 0.40
	return w
}

// Name implements Classifier.
func (c *RuleBased) Name() string { return c.name }

// Classify implements Classifier.
func (c *RuleBased) Classify(f Features) Prediction {
	w := c.w
	written := f.WriteCount > 0
	arrayEvidence := f.ArrayDecay || f.HasSizeParam || f.ArrayAllocation

	switch {
	case f.ConstQualified && written:
		return Prediction{Ownership: RawPointer, Confidence: w.Contradiction}

	case f.AllocationSite == AllocHeap && arrayEvidence:
		return Prediction{Ownership: Vec, Confidence: clamp01(w.HeapArray)}

	case f.AllocationSite == AllocHeap:
		conf := w.Heap
		if f.DeallocationCount > 0 {
			conf += w.FreeBonus
		}
		return Prediction{Ownership: Owned, Confidence: clamp01(conf)}

	case f.ArrayDecay:
		conf := w.ArrayDecay
		if f.HasSizeParam {
			conf += w.SizeBonus
		}
		if f.IndexedAccess {
			conf += w.IndexBonus
		}
		return Prediction{Ownership: sliceKind(written), Confidence: clamp01(conf)}

	case f.HasSizeParam && f.PointerDepth == 1:
		conf := w.SizeParam
		if f.IndexedAccess {
			conf += w.SizeBonus + w.IndexBonus
		}
		return Prediction{Ownership: sliceKind(written), Confidence: clamp01(conf)}

	case f.PointerDepth == 1 && !written && !f.ArithmeticOps:
		conf := w.ReadOnly
		if f.ConstQualified {
			conf += w.ConstBonus
		}
		if f.AllocationSite == AllocParameter {
			conf += w.ParamBonus
		}
		return Prediction{Ownership: Borrowed, Confidence: clamp01(conf)}

	case f.PointerDepth == 1 && !f.ArithmeticOps:
		conf := w.Written
		if f.AllocationSite == AllocParameter {
			conf += w.ParamBonus
		}
		return Prediction{Ownership: BorrowedMut, Confidence: clamp01(conf)}
	}
	return Prediction{Ownership: RawPointer, Confidence: w.Fallback}
}

func sliceKind(written bool) InferredOwnership {
	if written {
		return SliceMut
	}
	return Slice
}
