package mh

import "time"

// Result carries the acceptance and timing statistics a verbose driver
// reports on completion (§7): total time, the fraction of it spent inside
// trace replay, and the acceptance ratio. It is a typed counterpart to
// "verbose drivers print acceptance ratios, total time, and trace-replay
// time percentage on normal completion" so a caller can log or report these
// in its own format rather than scraping stdout.
type Result struct {
	Proposed   int64
	Accepted   int64
	TotalTime  time.Duration
	ReplayTime time.Duration
}

// AcceptanceRatio returns Accepted/Proposed, or 0 if no steps were taken.
func (r Result) AcceptanceRatio() float64 {
	if r.Proposed == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(r.Proposed)
}

// ReplayFraction returns the share of TotalTime spent inside trace replay.
func (r Result) ReplayFraction() float64 {
	if r.TotalTime == 0 {
		return 0
	}
	return float64(r.ReplayTime) / float64(r.TotalTime)
}
