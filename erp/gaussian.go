package erp

import (
	"math"
	"math/rand"
)

const logSqrt2Pi = 0.918938533204672741780329736405617639861397473637783412817151

// Gaussian is a univariate normal ERP, following the Mu/Sigma/Source field
// naming gonum's stat/distuv.Normal uses.
type Gaussian struct {
	Mu, Sigma float64
}

// NewGaussian constructs a Gaussian ERP. A non-positive Sigma is rejected as
// a ConfigurationError per the core's boundary behaviors: an ERP call site
// is never allowed to define a degenerate normal.
func NewGaussian(mu, sigma float64) (Gaussian, error) {
	if sigma <= 0 {
		return Gaussian{}, &ConfigurationError{Kind: KindGaussian, Reason: "sigma must be positive"}
	}
	return Gaussian{Mu: mu, Sigma: sigma}, nil
}

// Kind implements Dist.
func (Gaussian) Kind() Kind { return KindGaussian }

// Sample implements Dist.
func (g Gaussian) Sample(rng *rand.Rand) float64 {
	return g.Mu + g.Sigma*normf64(rng)()
}

// LogProb implements Dist using the closed-form normal log-density.
func (g Gaussian) LogProb(x float64) float64 {
	z := (x - g.Mu) / g.Sigma
	return -0.5*z*z - math.Log(g.Sigma) - logSqrt2Pi
}

// Propose implements the default gaussian kernel: resample independently
// from the prior.
func (g Gaussian) Propose(rng *rand.Rand, old float64) (newValue, fwdLogProb, rvsLogProb float64) {
	newValue = g.Sample(rng)
	return newValue, g.LogProb(newValue), g.LogProb(old)
}
