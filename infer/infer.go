// Package infer provides the two non-Markov-chain entry points named in
// §4.G: drawing a single trace from the prior, unconditioned by any
// likelihood, and drawing a single trace conditioned on that likelihood via
// rejection sampling. Both are thin wrappers over package trace; package mh
// builds on the same trace.Trace type to run the Markov chain itself.
package infer

import (
	"math/rand"

	"github.com/probmc/tracemh/trace"
)

// ForwardSample runs program once and returns the resulting trace without
// regard to any Factor/Likelihood contributions (§4.G): it is a single
// unconditioned ancestral sample, useful for prior predictive checks. Unlike
// RejectionSample it does not retry on a -Inf posterior; an
// ImpossibleTraceError is returned to the caller as-is.
func ForwardSample(program trace.Program, args interface{}, rng *rand.Rand) (*trace.Trace, error) {
	tr := trace.New(program, rng)
	if err := tr.RunOnce(args); err != nil {
		return nil, err
	}
	return tr, nil
}

// RejectionSample runs program repeatedly until it produces a trace with
// nonzero joint probability, and returns that trace (§4.G). It is the
// standard way to build the initial trace for a Markov chain outside of
// package mh's own NewChain, and the mechanism NewChain itself uses.
func RejectionSample(program trace.Program, args interface{}, rng *rand.Rand) (*trace.Trace, error) {
	tr := trace.New(program, rng)
	if err := tr.Init(args); err != nil {
		return nil, err
	}
	return tr, nil
}
