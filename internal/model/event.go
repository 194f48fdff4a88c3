package model

import (
	"fmt"
	"strings"
)

// Event is a progress notice from a running job. Exactly one event per
// sub-job carries an Outcome, and it is the last one for that sub-job.
type Event struct {
	JobID   string
	Item    int
	Total   int
	Title   string
	Percent float64
	Phase   Phase
	Message string
	Err     error
	Outcome *Outcome
}

// Terminal returns true for the closing event of a sub-job
func (e Event) Terminal() bool {
	return e.Outcome != nil
}

// Outcome is the result of one sub-job
type Outcome struct {
	Item       int
	URL        string
	Title      string
	Status     Status
	OutputPath string
	Err        error
	Warnings   []string
}

// Summary collects the outcomes of a job in item order
type Summary struct {
	JobID    string
	Outcomes []Outcome
}

// Add appends an outcome
func (s *Summary) Add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
}

// Count returns how many outcomes have the given status
func (s Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Failed returns true when no item produced output
func (s Summary) Failed() bool {
	for _, o := range s.Outcomes {
		if o.Status.HasOutput() {
			return false
		}
	}
	return true
}

// String renders counts, skipping zero buckets
func (s Summary) String() string {
	var parts []string
	for _, st := range []Status{StatusSucceeded, StatusDegraded, StatusFailed, StatusCancelled} {
		if n := s.Count(st); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	if len(parts) == 0 {
		return "nothing downloaded"
	}
	return strings.Join(parts, ", ")
}
