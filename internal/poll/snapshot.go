// Package poll collects load-average metrics from a roster of hosts.
// Each run produces one immutable Snapshot: every roster entry is
// attempted exactly once, and a host that can't be reached is recorded
// as a failure instead of aborting the run.
package poll

import "time"

// Result is the outcome of polling one host: a metric value or a
// failure, never both, never neither.
type Result struct {
	Host  string
	Value string // extracted load-average figures, e.g. "0.12, 0.34, 0.56"
	Err   error  // non-nil when execution or extraction failed
}

// Failed reports whether collection for this host failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Snapshot is the complete set of results for one run, in roster order.
// It is built fresh on every run and never patched.
type Snapshot struct {
	Taken   time.Time
	Results []Result
}

// Len returns the number of roster entries in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Results)
}

// Lookup returns the result for a host, if present.
func (s *Snapshot) Lookup(host string) (Result, bool) {
	for _, r := range s.Results {
		if r.Host == host {
			return r, true
		}
	}
	return Result{}, false
}

// FailedCount returns how many hosts failed this run.
func (s *Snapshot) FailedCount() int {
	n := 0
	for _, r := range s.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}
