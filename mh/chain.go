// Package mh implements the lightweight Metropolis-Hastings sampler built on
// package trace: a single chain that proposes a single-variable change and
// replays the trace to accept or reject it, the parallel-tempered variant of
// that chain, and the outer driver loops (MH, MHPT) that run a chain to
// completion and emit samples. The acceptance rule is grounded directly on
// gonum's stat/samplemv.MetropolisHastings, generalized from a fixed-density
// target/proposal pair to the lightweight (structure-changing) setting: the
// newlogprob/oldlogprob terms package trace accumulates during Run correct
// for random choices the proposal's control-flow edit created or destroyed.
package mh

import (
	"math"
	"math/rand"

	"github.com/probmc/tracemh/erp"
	"github.com/probmc/tracemh/trace"
)

// Chain is one Markov chain: a trace and the likelihood temperature that
// scales its acceptance ratio (effective_logposterior = logprior +
// loglikelihood/temperature).
type Chain struct {
	Trace       *trace.Trace
	Temperature float64

	rng *rand.Rand
}

// NewChain builds a chain by constructing an initial trace via rejection
// sampling (§4.E "build initial trace via rejection sampling; adopt
// temperature").
func NewChain(program trace.Program, args interface{}, temperature float64, rng *rand.Rand) (*Chain, error) {
	tr := trace.New(program, rng)
	if err := tr.Init(args); err != nil {
		return nil, err
	}
	return &Chain{Trace: tr, Temperature: temperature, rng: rng}, nil
}

// Step performs one Metropolis-Hastings step (§4.E): it copies the current
// trace, proposes a change to a single randomly selected variable, replays
// the trace, and accepts or rejects according to the lightweight MH ratio.
// It returns whether the proposal was accepted; a non-nil error is always
// fatal (an InvariantViolation or ConfigurationError surfaced from Run, or a
// ConfigurationError when the trace has no random choices to change).
func (c *Chain) Step(depthBiased bool) (accepted bool, err error) {
	cand := c.Trace.Copy()
	records := cand.Records()
	n := len(records)
	if n == 0 {
		return false, &ConfigurationError{Reason: "trace has no random choices to propose a change to"}
	}

	k, fwdVarChoiceLP := selectVariable(records, depthBiased, c.rng)
	rec := records[k-1]
	oldValue := rec.Value

	newValue, fwdlp, rvslp := rec.Dist.Propose(c.rng, oldValue)
	rec.Value = newValue
	rec.LogP = rec.Dist.LogProb(newValue)

	cand.SetPropVarIndex(rec.Index)
	runErr := cand.Run()
	cand.ClearPropVarIndex()

	if runErr != nil {
		if _, ok := runErr.(*trace.ImpossibleTraceError); ok {
			cand.FreeMemory()
			return false, nil
		}
		return false, runErr
	}

	fwdlp += fwdVarChoiceLP + cand.NewLogProb()

	newRecords := cand.Records()
	rvsVarChoiceLP := reverseVarChoiceLP(newRecords, depthBiased, rec.Index)
	rvslp += rvsVarChoiceLP + cand.OldLogProb()

	oldPost := c.Trace.Logprior() + c.Trace.Loglikelihood()/c.Temperature
	newPost := cand.Logprior() + cand.Loglikelihood()/c.Temperature
	delta := (newPost - oldPost) + rvslp - fwdlp

	if math.Log(randFloat64(c.rng)) < delta {
		old := c.Trace
		c.Trace = cand
		old.FreeMemory()
		return true, nil
	}
	cand.FreeMemory()
	return false, nil
}

// selectVariable draws the 1-based index of the record to propose a change
// to (§4.E step 2): uniformly, or with probability proportional to
// exp(-depth) when depthBiased. It returns the index together with the
// forward variable-choice log-probability charged against the proposal.
func selectVariable(records []*trace.Record, depthBiased bool, rng *rand.Rand) (k int, fwdVarChoiceLP float64) {
	n := len(records)
	if !depthBiased {
		k = rng.Intn(n) + 1
		return k, -math.Log(float64(n))
	}
	weights := depthWeights(records)
	k = erp.SampleWeightedIndex(weights, rng)
	return k, erp.LogProbWeightedIndex(weights, k)
}

// reverseVarChoiceLP computes the reverse variable-choice log-probability
// (§4.E step 5): the probability the same ordinal index k would have been
// selected in records, under the same selection mode. For depth-biased
// selection this is evaluated at whatever depth the record occupying
// position targetIndex now has; reused records never change depth, so this
// is ordinarily the depth the variable was selected at in the forward
// direction too.
func reverseVarChoiceLP(records []*trace.Record, depthBiased bool, targetIndex int) float64 {
	n := len(records)
	if !depthBiased {
		return -math.Log(float64(n))
	}
	weights := depthWeights(records)
	return erp.LogProbWeightedIndex(weights, targetIndex)
}

func depthWeights(records []*trace.Record) []float64 {
	weights := make([]float64, len(records))
	for i, r := range records {
		weights[i] = math.Exp(-float64(r.Depth))
	}
	return weights
}

func randFloat64(rng *rand.Rand) float64 {
	if rng != nil {
		return rng.Float64()
	}
	return rand.Float64()
}
