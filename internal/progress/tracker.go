package progress

import (
	"github.com/ytget/ytdx/internal/model"
)

// Tracker thresholds
const (
	MaxRunningPercent = 99.0
	MinPercentStep    = 0.5
)

// Tracker emits the events of one sub-job and keeps its percentage monotonic
type Tracker struct {
	sink      Sink
	jobID     string
	item      int
	total     int
	title     string
	last      float64
	lastPhase model.Phase
	finished  bool
}

// NewTracker creates a tracker for item (0-based) of total
func NewTracker(sink Sink, jobID string, item, total int) *Tracker {
	return &Tracker{sink: sink, jobID: jobID, item: item, total: total}
}

// SetTitle sets the title attached to later events
func (t *Tracker) SetTitle(title string) {
	t.title = title
}

// Percent returns the last reported percentage
func (t *Tracker) Percent() float64 {
	return t.last
}

// Update reports phase at percent. Lower values are raised to the last
// reported one; tiny increments within the same phase are skipped.
func (t *Tracker) Update(phase model.Phase, percent float64, message string) {
	if t.finished {
		return
	}
	if percent > MaxRunningPercent {
		percent = MaxRunningPercent
	}
	if percent < t.last {
		percent = t.last
	}
	if phase == t.lastPhase && percent-t.last < MinPercentStep && message == "" {
		return
	}
	t.last = percent
	t.lastPhase = phase
	t.sink.Emit(t.event(phase, message))
}

// Band returns a byte-progress callback that maps completion onto [lo, hi]
func (t *Tracker) Band(phase model.Phase, lo, hi float64) func(done, total int64) {
	return func(done, total int64) {
		if total <= 0 {
			t.Update(phase, lo, "")
			return
		}
		frac := float64(done) / float64(total)
		if frac > 1 {
			frac = 1
		}
		t.Update(phase, lo+(hi-lo)*frac, "")
	}
}

// Finish emits the terminal event for o. Later calls are ignored.
func (t *Tracker) Finish(o model.Outcome) {
	if t.finished {
		return
	}
	t.finished = true
	if o.Title == "" {
		o.Title = t.title
	}
	o.Item = t.item

	phase := o.Status.Phase()
	if o.Status.HasOutput() {
		t.last = 100
	}
	e := t.event(phase, "")
	e.Err = o.Err
	e.Outcome = &o
	t.sink.Emit(e)
}

func (t *Tracker) event(phase model.Phase, message string) model.Event {
	return model.Event{
		JobID:   t.jobID,
		Item:    t.item,
		Total:   t.total,
		Title:   t.title,
		Percent: t.last,
		Phase:   phase,
		Message: message,
	}
}
