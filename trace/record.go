package trace

import (
	"github.com/probmc/tracemh/address"
	"github.com/probmc/tracemh/erp"
)

// Record is one random-choice entry in a structured trace: the address that
// names it, the distribution (kind + parameters) it was drawn from, its
// current value, the stack depth it was created at, its log-density under
// its current distribution, and its position in the most recent run's
// execution order.
type Record struct {
	Addr  address.Path
	Dist  erp.Dist
	Value float64
	Depth int
	LogP  float64

	// Index is the sequential position (1-based) this record was visited at
	// during the most recent run. It identifies the proposal site and gates
	// reuse during a proposal replay (see Trace.SetPropVarIndex).
	Index int

	// reachable is reset to false at the start of every run and set to true
	// when the record is visited; a record left false at run end belonged to
	// a branch the procedure no longer takes and is dropped.
	reachable bool
}

// Kind reports the ERP kind this record was sampled from.
func (r *Record) Kind() erp.Kind { return r.Dist.Kind() }

func (r *Record) clone() *Record {
	cp := *r
	return &cp
}
