package erp

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestFlipLogProbBoundary(t *testing.T) {
	f := NewFlip(0)
	if !math.IsInf(f.LogProb(1), -1) {
		t.Errorf("flip(0) should make true impossible, got logprob %v", f.LogProb(1))
	}
	f = NewFlip(1)
	if !math.IsInf(f.LogProb(0), -1) {
		t.Errorf("flip(1) should make false impossible, got logprob %v", f.LogProb(0))
	}
}

func TestFlipProposeFlipsBit(t *testing.T) {
	f := NewFlip(0.5)
	rng := rand.New(rand.NewSource(1))
	newV, fwd, rvs := f.Propose(rng, 0)
	if newV != 1 || fwd != 0 || rvs != 0 {
		t.Errorf("Propose(0) = %v, %v, %v, want 1, 0, 0", newV, fwd, rvs)
	}
	newV, _, _ = f.Propose(rng, 1)
	if newV != 0 {
		t.Errorf("Propose(1) = %v, want 0", newV)
	}
}

func TestUniformDegenerate(t *testing.T) {
	u := NewUniform(3, 3)
	if !math.IsInf(u.LogProb(3), 1) {
		t.Errorf("degenerate uniform LogProb(a) should be +Inf, got %v", u.LogProb(3))
	}
	if !math.IsInf(u.LogProb(4), -1) {
		t.Errorf("degenerate uniform LogProb(outside) should be -Inf, got %v", u.LogProb(4))
	}
}

func TestUniformLogProb(t *testing.T) {
	u := NewUniform(2, 4)
	want := -math.Log(2)
	if got := u.LogProb(3); !scalar.EqualWithinAbsOrRel(got, want, 1e-12, 1e-12) {
		t.Errorf("LogProb(3) = %v, want %v", got, want)
	}
	if !math.IsInf(u.LogProb(5), -1) {
		t.Errorf("LogProb outside range should be -Inf")
	}
}

func TestGaussianRejectsNonPositiveSigma(t *testing.T) {
	if _, err := NewGaussian(0, 0); err == nil {
		t.Errorf("NewGaussian(0, 0) should return a ConfigurationError")
	}
	if _, err := NewGaussian(0, -1); err == nil {
		t.Errorf("NewGaussian(0, -1) should return a ConfigurationError")
	}
}

func TestGaussianLogProbAtMean(t *testing.T) {
	g, err := NewGaussian(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := -logSqrt2Pi
	if got := g.LogProb(0); !scalar.EqualWithinAbsOrRel(got, want, 1e-12, 1e-12) {
		t.Errorf("LogProb(0) = %v, want %v", got, want)
	}
}

func TestMultinomialRejectsAllZeroWeights(t *testing.T) {
	if _, err := NewMultinomial([]float64{0, 0, 0}); err == nil {
		t.Errorf("NewMultinomial with all-zero weights should return a ConfigurationError")
	}
}

func TestMultinomialLogProb(t *testing.T) {
	m, err := NewMultinomial([]float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	want := math.Log(2.0 / 6.0)
	if got := m.LogProb(2); !scalar.EqualWithinAbsOrRel(got, want, 1e-12, 1e-12) {
		t.Errorf("LogProb(2) = %v, want %v", got, want)
	}
}

func TestMultinomialProposeAlwaysChangesValue(t *testing.T) {
	m, err := NewMultinomial([]float64{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		newV, _, _ := m.Propose(rng, 1)
		if newV == 1 {
			t.Errorf("Propose should never return the excluded old value, got %v", newV)
		}
	}
}

func TestMultinomialProposeSingleCategoryIsNoop(t *testing.T) {
	m, err := NewMultinomial([]float64{1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	newV, fwd, rvs := m.Propose(rng, 1)
	if newV != 1 || fwd != 0 || rvs != 0 {
		t.Errorf("Propose with a single positive-weight category should be a no-op, got %v, %v, %v", newV, fwd, rvs)
	}
}

func TestSampleWeightedIndexDistribution(t *testing.T) {
	weights := []float64{1, 3}
	rng := rand.New(rand.NewSource(7))
	counts := [3]int{}
	const n = 100000
	for i := 0; i < n; i++ {
		counts[SampleWeightedIndex(weights, rng)]++
	}
	frac2 := float64(counts[2]) / n
	if math.Abs(frac2-0.75) > 0.02 {
		t.Errorf("empirical P(index=2) = %v, want close to 0.75", frac2)
	}
}
