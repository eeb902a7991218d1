package erp

import (
	"math"
	"math/rand"
)

// Multinomial is a categorical ERP over {1, ..., len(Weights)}, proportional
// to the (not necessarily normalized) Weights. Values are stored as the
// 1-based category index's exact float64 representation; use IntValue to
// decode.
type Multinomial struct {
	Weights []float64
}

// NewMultinomial constructs a Multinomial ERP. All-zero (or all-nonpositive)
// weights are rejected as a ConfigurationError: there is no category to
// sample from.
func NewMultinomial(weights []float64) (Multinomial, error) {
	if sumPositive(weights) <= 0 {
		return Multinomial{}, &ConfigurationError{Kind: KindMultinomial, Reason: "weights must contain at least one positive entry"}
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return Multinomial{Weights: w}, nil
}

// Kind implements Dist.
func (Multinomial) Kind() Kind { return KindMultinomial }

// Sample implements Dist.
func (m Multinomial) Sample(rng *rand.Rand) float64 {
	return float64(SampleWeightedIndex(m.Weights, rng))
}

// LogProb implements Dist.
func (m Multinomial) LogProb(x float64) float64 {
	idx := IntValue(x)
	if float64(idx) != x {
		return math.Inf(-1)
	}
	return LogProbWeightedIndex(m.Weights, idx)
}

// Propose implements the default multinomial kernel: resample from the prior
// conditional on the value actually changing, by zeroing the current
// category's weight before drawing. If only one category carries positive
// weight there is nothing else to propose, and Propose is a no-op.
func (m Multinomial) Propose(rng *rand.Rand, old float64) (newValue, fwdLogProb, rvsLogProb float64) {
	oldIdx := IntValue(old)

	excluding := func(skip int) []float64 {
		w := make([]float64, len(m.Weights))
		copy(w, m.Weights)
		if skip >= 1 && skip <= len(w) {
			w[skip-1] = 0
		}
		return w
	}

	withoutOld := excluding(oldIdx)
	if sumPositive(withoutOld) <= 0 {
		return old, 0, 0
	}

	newIdx := SampleWeightedIndex(withoutOld, rng)
	fwdLogProb = LogProbWeightedIndex(withoutOld, newIdx)

	withoutNew := excluding(newIdx)
	rvsLogProb = LogProbWeightedIndex(withoutNew, oldIdx)

	return float64(newIdx), fwdLogProb, rvsLogProb
}
