package ownership

import "strings"

// Member is a weighted classifier inside an Ensemble.
type Member struct {
	Classifier Classifier
	Weight     float64
}

// Ensemble combines several classifiers by confidence-weighted voting.
// The winning ownership's confidence is its share of the total weighted
// confidence, scaled by how confident its own voters were.
type Ensemble struct {
	members []Member
}

// NewEnsemble builds an ensemble. Members with a non-positive weight or a nil
// classifier are ignored.
func NewEnsemble(members ...Member) *Ensemble {
	e := &Ensemble{}
	for _, m := range members {
		if m.Classifier != nil && m.Weight > 0 {
			e.members = append(e.members, m)
		}
	}
	return e
}

// DefaultEnsemble pairs the default rules with a conservative variant.
func DefaultEnsemble() *Ensemble {
	return NewEnsemble(
		Member{Classifier: NewRuleBased(), Weight: 1.0},
		Member{Classifier: NewRuleBasedWithWeights("rules-conservative", ConservativeRuleWeights()), Weight: 0.5},
	)
}

// Name implements Classifier.
func (e *Ensemble) Name() string {
	names := make([]string, len(e.members))
	for i, m := range e.members {
		names[i] = m.Classifier.Name()
	}
	return "ensemble(" + strings.Join(names, ",") + ")"
}

// Classify implements Classifier. An empty ensemble predicts RawPointer with
// zero confidence.
func (e *Ensemble) Classify(f Features) Prediction {
	if len(e.members) == 0 {
		return Prediction{Ownership: RawPointer}
	}

	var votes [Shared + 1]float64
	var weights [Shared + 1]float64
	total := 0.0
	for _, m := range e.members {
		p := m.Classifier.Classify(f)
		if p.Ownership > Shared {
			continue
		}
		votes[p.Ownership] += m.Weight * p.Confidence
		weights[p.Ownership] += m.Weight
		total += m.Weight * p.Confidence
	}
	if total == 0 {
		return Prediction{Ownership: RawPointer}
	}

	// Ties go to the lower enum value, so RawPointer wins any tie it is in.
	best := RawPointer
	for o := RawPointer; o <= Shared; o++ {
		if votes[o] > votes[best] {
			best = o
		}
	}
	agreement := votes[best] / total
	ownConfidence := votes[best] / weights[best]
	return Prediction{Ownership: best, Confidence: clamp01(agreement * ownConfidence)}
}
