package model

// Phase is the pipeline step a sub-job is in
type Phase string

const (
	PhaseDiscovering      Phase = "discovering"
	PhaseDownloadingVideo Phase = "downloading-video"
	PhaseDownloadingAudio Phase = "downloading-audio"
	PhaseMerging          Phase = "merging"
	PhaseConverting       Phase = "converting"
	PhaseTagging          Phase = "tagging"
	PhaseDone             Phase = "done"
	PhaseFailed           Phase = "failed"
)

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}

// IsActive returns true while work is still happening
func (p Phase) IsActive() bool {
	return p != "" && !p.IsFinished()
}

// IsFinished returns true for the two terminal phases
func (p Phase) IsFinished() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Status is the final result of one sub-job
type Status string

const (
	// StatusSucceeded means the output is complete
	StatusSucceeded Status = "succeeded"

	// StatusDegraded means the output exists but a non-fatal step failed
	StatusDegraded Status = "degraded"

	// StatusFailed means no output was produced
	StatusFailed Status = "failed"

	// StatusCancelled means the user stopped the job
	StatusCancelled Status = "cancelled"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// HasOutput returns true when a file was delivered to the destination
func (s Status) HasOutput() bool {
	return s == StatusSucceeded || s == StatusDegraded
}

// Phase maps a final status to the terminal phase reported for it
func (s Status) Phase() Phase {
	if s.HasOutput() {
		return PhaseDone
	}
	return PhaseFailed
}
