// Package trace implements the structured ERP trace: a hierarchical record
// of random choices, addressed by structural path, that can be re-executed
// against a changed generative procedure while reusing as much of the prior
// execution as possible. It is the data structure the lightweight
// Metropolis-Hastings sampler in package mh is built on.
package trace

import (
	"math"
	"math/rand"
	"time"

	"github.com/probmc/tracemh/address"
)

// Program is a generative procedure: a callable taking user-supplied
// arguments and returning a value of the user's choice. Inside, it calls the
// package-level ERP functions (Flip, Uniform, Multinomial, Gaussian, Factor,
// Likelihood) and address-stack helpers (PushAddress, PopAddress,
// SetAddressLoopIndex) exported by this package. Those calls resolve to
// whichever *Trace is currently running Program, via the process-wide active
// trace described in dispatch.go.
type Program func(args interface{}) interface{}

// Trace is the structured collection of ERP records produced by repeatedly
// running a Program. A trace is created and initialized by rejection
// sampling (see RejectionSample) and is thereafter copied on every proposal
// attempt by package mh; the loser of each proposal is discarded.
type Trace struct {
	program Program
	args    interface{}

	records   map[address.Path]*Record
	execOrder []*Record

	logprior      float64
	loglikelihood float64
	newlogprob    float64
	oldlogprob    float64

	returnValue interface{}

	// propVarIndex is the sequential index (1-based) of the record under
	// proposal during a replay; 0 means "not a proposal replay". Any record
	// whose Index is <= propVarIndex during such a replay must be reused
	// verbatim (checked by lookupOrSample in dispatch.go).
	propVarIndex int

	rng *rand.Rand

	replayTime time.Duration
}

// New creates an uninitialized Trace over program. Call Init (or
// RejectionSample directly) before using it.
func New(program Program, rng *rand.Rand) *Trace {
	return &Trace{
		program: program,
		records: make(map[address.Path]*Record),
		rng:     rng,
	}
}

// Init stores args for use by program and performs the initial rejection
// sample: it repeats Run until the resulting trace has nonzero joint
// probability. Init returns only fatal errors (ConfigurationError,
// InvariantViolation); an endless string of ImpossibleTrace runs is retried
// internally and never surfaced.
func (t *Trace) Init(args interface{}) error {
	t.args = args
	return t.RejectionSample()
}

// RunOnce stores args and runs program exactly once, returning whatever Run
// returns including an ImpossibleTraceError — unlike Init/RejectionSample, it
// never retries. It backs package infer's ForwardSample: an unconditioned
// ancestral sample does not reject on a -Inf posterior, since there is
// nothing to condition on in the first place.
func (t *Trace) RunOnce(args interface{}) error {
	t.args = args
	return t.Run()
}

// RejectionSample repeats Run on this trace until Logposterior() > -Inf,
// discarding each impossible attempt and retrying. It is also how a Trace is
// first populated after New, and how package infer implements
// RejectionSample at the driver level.
func (t *Trace) RejectionSample() error {
	for {
		t.records = make(map[address.Path]*Record)
		err := t.Run()
		if err == nil {
			if !math.IsInf(t.Logposterior(), -1) {
				return nil
			}
			continue
		}
		if _, ok := err.(*ImpossibleTraceError); ok {
			continue
		}
		return err
	}
}

// Records returns the records visited by the most recently completed run, in
// the order they were visited. The returned slice must not be mutated.
func (t *Trace) Records() []*Record { return t.execOrder }

// ReturnValue returns the value program returned on the most recent run.
func (t *Trace) ReturnValue() interface{} { return t.returnValue }

// Logprior returns the sum of LogP over records visited by the most recent
// run.
func (t *Trace) Logprior() float64 { return t.logprior }

// Loglikelihood returns the sum of explicit Factor/Likelihood contributions
// declared during the most recent run.
func (t *Trace) Loglikelihood() float64 { return t.loglikelihood }

// Logposterior returns Logprior() + Loglikelihood().
func (t *Trace) Logposterior() float64 { return t.logprior + t.loglikelihood }

// NewLogProb returns the sum of LogP over records freshly sampled (not
// reused) on the most recent run.
func (t *Trace) NewLogProb() float64 { return t.newlogprob }

// OldLogProb returns the sum of LogP over records that were present before
// the most recent run but are now unreachable (reused from the previous run
// but not revisited).
func (t *Trace) OldLogProb() float64 { return t.oldlogprob }

// ReplayTime returns the cumulative wall-clock time spent inside Run across
// the lifetime of this trace, for verbose reporting (§7).
func (t *Trace) ReplayTime() time.Duration { return t.replayTime }

// SetPropVarIndex puts the trace into proposal-replay mode: any record
// visited with Index <= idx during the next Run must be reused verbatim from
// the pre-run state. Package mh calls this immediately before Run when
// replaying a single-variable change.
func (t *Trace) SetPropVarIndex(idx int) { t.propVarIndex = idx }

// ClearPropVarIndex leaves proposal-replay mode.
func (t *Trace) ClearPropVarIndex() { t.propVarIndex = 0 }

// Copy returns a deep, independent duplicate of t: records are cloned so
// that mutating either trace's record values or parameters never aliases the
// other. Copy is how package mh obtains the speculative trace for one MH
// step; the loser of the step is discarded (FreeMemory drops its records at
// that release point).
func (t *Trace) Copy() *Trace {
	cp := &Trace{
		program:       t.program,
		args:          t.args,
		records:       make(map[address.Path]*Record, len(t.records)),
		logprior:      t.logprior,
		loglikelihood: t.loglikelihood,
		newlogprob:    t.newlogprob,
		oldlogprob:    t.oldlogprob,
		returnValue:   t.returnValue,
		rng:           t.rng,
		replayTime:    t.replayTime,
	}
	cp.execOrder = make([]*Record, len(t.execOrder))
	for i, r := range t.execOrder {
		nr := r.clone()
		cp.records[nr.Addr] = nr
		cp.execOrder[i] = nr
	}
	return cp
}

// FreeMemory releases this trace's records. It is a scoped release: call it
// on the rejected trace of every MH step once the winner has been chosen, per
// the resource policy in §5.
func (t *Trace) FreeMemory() {
	t.records = nil
	t.execOrder = nil
}

// Run executes program against the trace's stored args, replacing the
// trace's summary statistics and execution order. The per-call reuse/fresh
// decision is made by lookupOrSample in dispatch.go.
func (t *Trace) Run() (err error) {
	start := time.Now()
	defer func() { t.replayTime += time.Since(start) }()

	for _, r := range t.records {
		r.reachable = false
	}

	t.logprior = 0
	t.loglikelihood = 0
	t.newlogprob = 0
	t.oldlogprob = 0
	t.execOrder = t.execOrder[:0]

	stack := address.New()

	prevActive, prevStack := currentTrace, currentStack
	currentTrace, currentStack = t, stack
	defer func() { currentTrace, currentStack = prevActive, prevStack }()

	defer func() {
		if rec := recover(); rec != nil {
			abort, ok := rec.(runAbort)
			if !ok {
				panic(rec)
			}
			err = abort.err
		}
	}()

	t.returnValue = t.program(t.args)

	if !stack.Empty() {
		return &InvariantViolationError{Reason: "address stack non-empty at run end"}
	}

	for addr, r := range t.records {
		if r.reachable {
			continue
		}
		t.oldlogprob += r.LogP
		delete(t.records, addr)
	}

	return nil
}

// abortRun unwinds the current Run call with err, to be recovered at the top
// of Run. It is used by the ERP dispatch functions in dispatch.go.
func abortRun(err error) {
	panic(runAbort{err: err})
}
