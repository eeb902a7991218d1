package trace

import (
	"fmt"

	"github.com/probmc/tracemh/address"
)

// ImpossibleTraceError signals a run that assigned zero probability to its
// own execution: an ERP's log-density evaluated to -Inf, or the procedure
// called ThrowZeroProbabilityError directly. It is recovered locally by
// RejectionSample (which retries) and by Chain.Step (which treats the
// proposal as rejected with probability 1); see package mh.
type ImpossibleTraceError struct {
	Addr   address.Path
	Reason string
}

func (e *ImpossibleTraceError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("trace: impossible trace: %s", e.Reason)
	}
	return fmt.Sprintf("trace: impossible trace at %s: %s", e.Addr, e.Reason)
}

// InvariantViolationError signals a bug in the generative procedure itself,
// or in the core's own bookkeeping: the address stack was non-empty at run
// end, two ERP calls produced the same address in one run, a record within
// the frozen prefix of a proposal replay was not reused, or a log-probability
// or factor evaluated to NaN.
// Unlike ImpossibleTraceError this is always fatal and is surfaced to the
// caller rather than recovered.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("trace: invariant violation: %s", e.Reason)
}

// runAbort is the internal panic payload run() uses to unwind out of an
// arbitrarily deep call into the user's generative procedure. Only this
// package recovers it; any other panic propagates as a genuine crash.
type runAbort struct {
	err error
}
