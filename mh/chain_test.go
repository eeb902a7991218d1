package mh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/probmc/tracemh/trace"
)

func biasedCoinModel(args interface{}) interface{} {
	trace.PushAddress(1)
	b := trace.Flip(0.3)
	trace.PopAddress()
	if b {
		trace.Factor(0)
	} else {
		trace.Factor(0)
	}
	return b
}

func TestChainStepPreservesTraceInvariantsOnReject(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	chain, err := NewChain(biasedCoinModel, nil, 1, rng)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	before := chain.Trace.Logposterior()
	for i := 0; i < 50; i++ {
		if _, err := chain.Step(false); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if math.IsInf(chain.Trace.Logposterior(), -1) {
		t.Fatalf("chain settled on a zero-probability trace")
	}
	_ = before
}

func TestChainStepMixesTowardBias(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	chain, err := NewChain(biasedCoinModel, nil, 1, rng)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	const n = 20000
	heads := 0
	for i := 0; i < n; i++ {
		if _, err := chain.Step(false); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if chain.Trace.ReturnValue().(bool) {
			heads++
		}
	}

	frac := float64(heads) / float64(n)
	if math.Abs(frac-0.3) > 0.05 {
		t.Errorf("fraction heads = %v, want close to 0.3", frac)
	}
}

func gaussianPosteriorModel(args interface{}) interface{} {
	trace.PushAddress(1)
	x := trace.Gaussian(0, 1)
	trace.PopAddress()
	trace.Factor(-0.5 * (x - 2) * (x - 2))
	return x
}

func TestChainStepConvergesToGaussianPosteriorMean(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	chain, err := NewChain(gaussianPosteriorModel, nil, 1, rng)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	const burnin = 2000
	for i := 0; i < burnin; i++ {
		if _, err := chain.Step(false); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		if _, err := chain.Step(false); err != nil {
			t.Fatalf("Step: %v", err)
		}
		sum += chain.Trace.ReturnValue().(float64)
	}

	mean := sum / n
	if math.Abs(mean-1.0) > 0.15 {
		t.Errorf("posterior mean estimate = %v, want close to 1.0 (prior N(0,1) times likelihood N(2,1))", mean)
	}
}

const logSqrt2Pi = 0.918938533204672741780329736405617639861397473637783412817151

func gaussianLogPDF(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return -0.5*z*z - math.Log(sigma) - logSqrt2Pi
}

// gaussianMeanPosteriorModel mirrors the analytic scenario spec'd for a
// Gaussian-mean posterior: prior x ~ N(0,1), observation 1.2 ~ N(x, 0.5). The
// closed-form posterior mean is (0/1 + 1.2/0.25) / (1/1 + 1/0.25) = 0.96.
func gaussianMeanPosteriorModel(args interface{}) interface{} {
	trace.PushAddress(1)
	x := trace.Gaussian(0, 1)
	trace.PopAddress()
	trace.Factor(gaussianLogPDF(1.2, x, 0.5))
	return x
}

func TestChainStepMatchesGaussianMeanPosteriorAnalytic(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	chain, err := NewChain(gaussianMeanPosteriorModel, nil, 1, rng)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	const burnin = 2000
	for i := 0; i < burnin; i++ {
		if _, err := chain.Step(false); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	const n = 30000
	sum := 0.0
	for i := 0; i < n; i++ {
		if _, err := chain.Step(false); err != nil {
			t.Fatalf("Step: %v", err)
		}
		sum += chain.Trace.ReturnValue().(float64)
	}

	mean := sum / n
	if math.Abs(mean-0.96) > 0.05 {
		t.Errorf("posterior mean estimate = %v, want close to the analytic value 0.96", mean)
	}
}

func bimodalControlFlowModel(args interface{}) interface{} {
	trace.PushAddress(1)
	b := trace.Flip(0.5)
	trace.PopAddress()
	if b {
		trace.PushAddress(2)
		defer trace.PopAddress()
		return trace.Gaussian(5, 0.1)
	}
	trace.PushAddress(3)
	defer trace.PopAddress()
	return trace.Gaussian(-5, 0.1)
}

func TestChainStepBimodalControlFlowRuns(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	chain, err := NewChain(bimodalControlFlowModel, nil, 1, rng)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	modeCount := map[bool]int{}
	for i := 0; i < 2000; i++ {
		if _, err := chain.Step(false); err != nil {
			t.Fatalf("Step: %v", err)
		}
		modeCount[chain.Trace.ReturnValue().(float64) > 0] += 1
	}
	if modeCount[true] == 0 || modeCount[false] == 0 {
		t.Errorf("expected chain to visit both modes over 2000 steps, got counts %v", modeCount)
	}
}

func TestChainStepDepthBiasedSelectionRuns(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	chain, err := NewChain(gaussianPosteriorModel, nil, 1, rng)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	for i := 0; i < 200; i++ {
		if _, err := chain.Step(true); err != nil {
			t.Fatalf("Step(depthBiased): %v", err)
		}
	}
}

func TestSelectVariablePrefersShallowerOverDeeperWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	records := []*trace.Record{
		{Depth: 1},
		{Depth: 10}, {Depth: 10}, {Depth: 10}, {Depth: 10}, {Depth: 10},
		{Depth: 10}, {Depth: 10}, {Depth: 10}, {Depth: 10}, {Depth: 10},
	}

	const n = 20000
	shallowCount := 0
	for i := 0; i < n; i++ {
		k, _ := selectVariable(records, true, rng)
		if k == 1 {
			shallowCount++
		}
	}

	// exp(-1) weight for the one shallow record vs. 10*exp(-10) total weight
	// for the deep records: the shallow record should be selected on nearly
	// every draw (its weight is ~8100x any single deep record's).
	frac := float64(shallowCount) / n
	if frac < 0.99 {
		t.Errorf("depth-biased selection picked the shallow record %v of the time, want > 0.99", frac)
	}
}
