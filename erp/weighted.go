package erp

import (
	"math"
	"math/rand"
)

// SampleWeightedIndex draws a 1-based index into weights with probability
// proportional to weights[i-1]. Weights need not be normalized. It is shared
// by KindMultinomial sampling and the MH chain's depth-biased variable
// selection (§4.E), following the cumulative-weight walk used by gonum's
// stat/sampleuv.Weighted.Take, simplified here since the core always samples
// with replacement (it never needs to zero out a taken weight).
func SampleWeightedIndex(weights []float64, rng *rand.Rand) int {
	total := sumPositive(weights)
	r := f64(rng)() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		r -= w
		if r < 0 {
			return i + 1
		}
	}
	// Floating point slop: fall back to the last positive-weight index.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i + 1
		}
	}
	panic("erp: SampleWeightedIndex called with no positive weight")
}

// LogProbWeightedIndex returns log(weights[idx-1] / sum(weights)) for the
// 1-based idx, matching the normalization SampleWeightedIndex samples under.
func LogProbWeightedIndex(weights []float64, idx int) float64 {
	total := sumPositive(weights)
	if idx < 1 || idx > len(weights) || weights[idx-1] <= 0 {
		return math.Inf(-1)
	}
	return math.Log(weights[idx-1] / total)
}

func sumPositive(weights []float64) float64 {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	return total
}
