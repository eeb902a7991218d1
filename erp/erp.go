// Package erp implements the four elementary random procedures (ERPs) the
// inference core knows about: flip, uniform, multinomial and gaussian. Each
// is a tagged variant of the Dist interface exposing sampling, log-density,
// and a default Metropolis-Hastings proposal kernel, following the same
// struct-per-distribution shape as gonum's stat/distuv package (Bernoulli,
// Uniform, Categorical, Normal) but narrowed to exactly the four kinds this
// core supports and their single-site propose kernels.
package erp

import "math/rand"

// Kind identifies which of the four ERP families a Dist belongs to.
type Kind int

// The four supported ERP kinds.
const (
	KindFlip Kind = iota
	KindUniform
	KindMultinomial
	KindGaussian
)

func (k Kind) String() string {
	switch k {
	case KindFlip:
		return "flip"
	case KindUniform:
		return "uniform"
	case KindMultinomial:
		return "multinomial"
	case KindGaussian:
		return "gaussian"
	default:
		return "unknown"
	}
}

// Dist is an elementary random procedure: a distribution with a known
// sampler, log-density, and single-site proposal kernel. Values are encoded
// as float64 regardless of kind; BoolValue and IntValue decode a flip's or
// multinomial's float64 encoding back to its natural Go type.
type Dist interface {
	// Kind reports which ERP family this value belongs to.
	Kind() Kind

	// Sample draws a fresh value from the distribution's prior, using rng
	// (or the global generator if rng is nil).
	Sample(rng *rand.Rand) float64

	// LogProb computes log P(x | params) under this distribution's current
	// parameters. It returns math.Inf(-1) for values outside the support.
	LogProb(x float64) float64

	// Propose implements the distribution's default single-variable
	// Metropolis-Hastings kernel: given the current value, it returns a new
	// value together with the forward log-probability of proposing new
	// from old, and the reverse log-probability of proposing old from new.
	Propose(rng *rand.Rand, old float64) (newValue, fwdLogProb, rvsLogProb float64)
}

// BoolValue decodes a KindFlip value (nonzero is true).
func BoolValue(v float64) bool { return v != 0 }

// FlipEncode encodes a boolean as the float64 a KindFlip Dist stores.
func FlipEncode(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// IntValue decodes a KindMultinomial value (a 1-based category index stored
// as its exact float64 representation) back to an int.
func IntValue(v float64) int { return int(v) }

func f64(rng *rand.Rand) func() float64 {
	if rng != nil {
		return rng.Float64
	}
	return rand.Float64
}

func normf64(rng *rand.Rand) func() float64 {
	if rng != nil {
		return rng.NormFloat64
	}
	return rand.NormFloat64
}
