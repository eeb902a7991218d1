package trace

import (
	"fmt"
	"math"

	"github.com/probmc/tracemh/address"
	"github.com/probmc/tracemh/erp"
)

// currentTrace and currentStack are the process-wide active trace and
// address stack described in the core's design notes:
// a single piece of state installed by Run for its duration, read and
// written by the ERP dispatch functions below. The core is single-threaded
// and synchronous (§5), so this is safe without further synchronization;
// switching traces requires first completing any in-progress Run.
var (
	currentTrace *Trace
	currentStack *address.Stack
)

func requireActive() {
	if currentTrace == nil || currentStack == nil {
		panic("trace: ERP or address call made outside of Run")
	}
}

// Flip samples (or replays) a Bernoulli choice at the current address.
func Flip(p float64) bool {
	return erp.BoolValue(lookupOrSample(erp.NewFlip(p)))
}

// Uniform samples (or replays) a continuous choice on [lo, hi] at the
// current address.
func Uniform(lo, hi float64) float64 {
	return lookupOrSample(erp.NewUniform(lo, hi))
}

// Multinomial samples (or replays) a categorical choice over
// {1, ..., len(weights)} at the current address.
func Multinomial(weights []float64) int {
	dist, err := erp.NewMultinomial(weights)
	if err != nil {
		requireActive()
		abortRun(err)
	}
	return erp.IntValue(lookupOrSample(dist))
}

// Gaussian samples (or replays) a normal choice at the current address.
func Gaussian(mu, sigma float64) float64 {
	dist, err := erp.NewGaussian(mu, sigma)
	if err != nil {
		requireActive()
		abortRun(err)
	}
	return lookupOrSample(dist)
}

// Factor adds x to the running trace's loglikelihood. It is the mechanism by
// which a generative procedure declares an observation or soft constraint.
func Factor(x float64) {
	requireActive()
	if math.IsNaN(x) {
		abortRun(&InvariantViolationError{Reason: "NaN factor contribution"})
	}
	currentTrace.loglikelihood += x
}

// Likelihood is a synonym for Factor.
func Likelihood(lp float64) { Factor(lp) }

// ThrowZeroProbabilityError aborts the current run as an ImpossibleTrace,
// for generative procedures that want to declare a hard constraint without
// routing it through Factor(math.Inf(-1)).
func ThrowZeroProbabilityError() {
	requireActive()
	abortRun(&ImpossibleTraceError{Addr: currentStack.Current(), Reason: "explicit throwZeroProbabilityError"})
}

// PushAddress enters a lexical site on the active trace's address stack.
func PushAddress(siteID int) {
	requireActive()
	currentStack.Push(siteID)
}

// PopAddress leaves the most recently entered lexical site.
func PopAddress() {
	requireActive()
	currentStack.Pop()
}

// SetAddressLoopIndex sets the loop-index field of the top address frame.
// Callers whose lexical site is revisited by an enclosing repetition must
// call this before each iteration; the core cannot infer loop boundaries
// (see DESIGN.md, Open Question decisions).
func SetAddressLoopIndex(i int) {
	requireActive()
	currentStack.SetLoopIndex(i)
}

// WithAddress is the scoped counterpart to PushAddress/PopAddress: it pushes
// siteID, runs fn, and guarantees the pop on every exit path including a
// panic (such as an ImpossibleTrace abort) unwinding through fn.
func WithAddress(siteID int, fn func()) {
	requireActive()
	currentStack.WithFrame(siteID, fn)
}

// lookupOrSample is the core ERP dispatch described in §4.C/§4.D: it either
// returns the value of an existing record at the current address (updating
// its parameters and log-density to dist), or creates a fresh record by
// sampling from dist.
func lookupOrSample(dist erp.Dist) float64 {
	requireActive()

	addr := currentStack.Current()
	depth := currentStack.Depth()
	kind := dist.Kind()

	existing, ok := currentTrace.records[addr]
	if ok && existing.reachable {
		abortRun(&InvariantViolationError{Reason: fmt.Sprintf("duplicate address %s visited twice in one run", addr)})
	}

	reused := ok && existing.Kind() == kind

	var rec *Record
	if reused {
		rec = existing
		rec.Dist = dist
		rec.LogP = dist.LogProb(rec.Value)
	} else {
		v := dist.Sample(currentTrace.rng)
		rec = &Record{Addr: addr, Dist: dist, Value: v, Depth: depth}
		rec.LogP = dist.LogProb(v)
		currentTrace.records[addr] = rec
	}

	if math.IsNaN(rec.LogP) {
		abortRun(&InvariantViolationError{Reason: fmt.Sprintf("NaN log-probability at %s", addr)})
	}
	if math.IsInf(rec.LogP, -1) {
		abortRun(&ImpossibleTraceError{Addr: addr, Reason: fmt.Sprintf("%s assigned zero probability to its sampled value", kind)})
	}

	rec.reachable = true
	rec.Index = len(currentTrace.execOrder) + 1
	currentTrace.execOrder = append(currentTrace.execOrder, rec)
	currentTrace.logprior += rec.LogP

	// Structural-consistency invariant (§8 property 2): a record in the
	// frozen prefix of a proposal replay (Index <= propVarIndex) must keep
	// its value through this run. The reuse branch above never writes
	// rec.Value, and the one record actually under proposal has its Value
	// set by mh.Chain.Step before Run is called; a prefix position that was
	// not reused (its address or kind no longer matches) is a violation.
	if !reused && rec.Index <= currentTrace.propVarIndex {
		abortRun(&InvariantViolationError{Reason: fmt.Sprintf("record at %s in the frozen prefix of a proposal replay was not reused", addr)})
	}

	if !reused {
		currentTrace.newlogprob += rec.LogP
	}

	return rec.Value
}
