package progress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytdx/internal/model"
)

type recorder struct {
	events []model.Event
}

func (r *recorder) Emit(e model.Event) { r.events = append(r.events, e) }

func TestChannelDropsOnlyNonTerminal(t *testing.T) {
	c := NewChannel(2)

	c.Emit(model.Event{Percent: 1})
	c.Emit(model.Event{Percent: 2})
	c.Emit(model.Event{Percent: 3}) // full, dropped

	done := make(chan struct{})
	go func() {
		c.Emit(model.Event{Outcome: &model.Outcome{Status: model.StatusSucceeded}})
		c.Close()
		close(done)
	}()

	var got []model.Event
	for e := range c.Events() {
		got = append(got, e)
	}
	<-done

	require.Len(t, got, 3)
	assert.True(t, got[2].Terminal())
	assert.Equal(t, int64(1), c.Dropped())
}

func TestTrackerMonotonic(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(rec, "job-1", 0, 1)

	tr.Update(model.PhaseDiscovering, 5, "")
	tr.Update(model.PhaseDownloadingVideo, 40, "")
	tr.Update(model.PhaseDownloadingVideo, 20, "retrying")
	tr.Update(model.PhaseMerging, 150, "")
	tr.Finish(model.Outcome{Status: model.StatusSucceeded})

	last := -1.0
	for _, e := range rec.events {
		if e.Percent < last {
			t.Errorf("Percent went backwards: %v after %v", e.Percent, last)
		}
		last = e.Percent
	}
	assert.Equal(t, 40.0, rec.events[2].Percent)
	assert.Equal(t, MaxRunningPercent, rec.events[3].Percent)
	assert.Equal(t, 100.0, rec.events[len(rec.events)-1].Percent)
}

func TestTrackerSingleTerminal(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(rec, "job-1", 2, 5)
	tr.SetTitle("Song")

	tr.Update(model.PhaseDownloadingAudio, 30, "")
	tr.Finish(model.Outcome{Status: model.StatusFailed, Err: errors.New("boom")})
	tr.Finish(model.Outcome{Status: model.StatusSucceeded})
	tr.Update(model.PhaseTagging, 95, "")

	terminals := 0
	for _, e := range rec.events {
		if e.Terminal() {
			terminals++
			assert.Equal(t, model.PhaseFailed, e.Phase)
			assert.Equal(t, 30.0, e.Percent)
			assert.Equal(t, 2, e.Outcome.Item)
			assert.Equal(t, "Song", e.Outcome.Title)
			assert.EqualError(t, e.Err, "boom")
		}
	}
	assert.Equal(t, 1, terminals)
	assert.True(t, rec.events[len(rec.events)-1].Terminal())
}

func TestTrackerBand(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(rec, "job-1", 0, 1)
	cb := tr.Band(model.PhaseDownloadingVideo, 5, 90)

	cb(0, 100)
	cb(50, 100)
	cb(200, 100)

	require.Len(t, rec.events, 3)
	assert.Equal(t, 5.0, rec.events[0].Percent)
	assert.Equal(t, 47.5, rec.events[1].Percent)
	assert.Equal(t, 90.0, rec.events[2].Percent)
}

func TestTrackerSkipsTinySteps(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(rec, "job-1", 0, 1)

	tr.Update(model.PhaseDownloadingAudio, 10, "")
	tr.Update(model.PhaseDownloadingAudio, 10.1, "")
	tr.Update(model.PhaseDownloadingAudio, 10.2, "")

	assert.Len(t, rec.events, 1)
}
