package download

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytdx/internal/model"
)

func TestNewService(t *testing.T) {
	service := NewService(nil, nil)

	if len(service.handles) != 0 {
		t.Errorf("Expected empty handles map, got %d items", len(service.handles))
	}
	if service.bufferSize != 64 {
		t.Errorf("Expected bufferSize to be 64, got %d", service.bufferSize)
	}
}

func TestGenerateJobID(t *testing.T) {
	id1 := generateJobID()
	id2 := generateJobID()

	if !strings.HasPrefix(id1, JobIDPrefix) {
		t.Errorf("Expected ID to start with %q, got %s", JobIDPrefix, id1)
	}
	if id1 == id2 {
		t.Errorf("Expected unique IDs, got %s twice", id1)
	}
	if id1 > id2 {
		t.Errorf("Expected time-ordered IDs, got %s before %s", id1, id2)
	}
}

func TestServiceStartDeliversEventsAndSummary(t *testing.T) {
	h := newHarness(t, nil)
	h.addVideo("vid1", "Service Run", videoStream(137, 1080, "avc1", "mp4"), audioStream(140, 129_000, "mp4"))
	service := NewService(h.orch, nil)

	job := h.job(model.KindVideo, model.FormatMP4)
	job.ID = ""
	handle := service.Start(job)
	assert.True(t, strings.HasPrefix(handle.ID(), JobIDPrefix))
	assert.Equal(t, handle.ID(), handle.Job().ID)

	var terminal []model.Event
	for e := range handle.Events() {
		assert.Equal(t, handle.ID(), e.JobID)
		if e.Terminal() {
			terminal = append(terminal, e)
		}
	}

	summary := handle.Wait()
	require.Len(t, terminal, 1)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, model.StatusSucceeded, summary.Outcomes[0].Status)
	assert.Equal(t, summary.Outcomes[0].OutputPath, terminal[0].Outcome.OutputPath)

	_, exists := service.Get(handle.ID())
	assert.False(t, exists, "finished jobs leave the active set")
	assert.Empty(t, service.Active())
}

func TestServiceCancel(t *testing.T) {
	h := newHarness(t, nil)
	h.addVideo("vid1", "Slow", audioStream(140, 129_000, "mp4"))

	started := make(chan struct{})
	h.resolver.open = func(ctx context.Context, _ int, _ io.Reader) io.Reader {
		close(started)
		return &blockingReader{ctx: ctx}
	}
	service := NewService(h.orch, nil)

	handle := service.Start(h.job(model.KindAudio, model.FormatMP3))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("download never started")
	}

	require.Len(t, service.Active(), 1)
	require.NoError(t, service.Cancel(handle.ID()))

	for range handle.Events() {
	}
	summary := handle.Wait()

	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, model.StatusCancelled, summary.Outcomes[0].Status)
	h.assertWorkDirEmpty(t)
}

func TestServiceCancelAll(t *testing.T) {
	h := newHarness(t, nil)
	h.addVideo("vid1", "Slow", audioStream(140, 129_000, "mp4"))

	started := make(chan struct{}, 2)
	h.resolver.open = func(ctx context.Context, _ int, _ io.Reader) io.Reader {
		started <- struct{}{}
		return &blockingReader{ctx: ctx}
	}
	service := NewService(h.orch, nil)

	first := service.Start(h.job(model.KindAudio, model.FormatMP3))
	second := service.Start(model.Job{URL: testURL, Kind: model.KindAudio, Format: model.FormatM4A, DestDir: h.dest})

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("download never started")
		}
	}
	require.Len(t, service.Active(), 2)

	service.CancelAll()

	for _, handle := range []*Handle{first, second} {
		for range handle.Events() {
		}
		summary := handle.Wait()
		require.Len(t, summary.Outcomes, 1)
		assert.Equal(t, model.StatusCancelled, summary.Outcomes[0].Status)
	}
	assert.Empty(t, service.Active())
}

func TestServiceCancelUnknownJob(t *testing.T) {
	service := NewService(nil, nil)

	err := service.Cancel("job-missing")
	if err == nil {
		t.Fatal("Expected error for unknown job, got nil")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' error, got: %v", err)
	}
}

// blockingReader blocks until its context ends
type blockingReader struct {
	ctx context.Context
}

func (r *blockingReader) Read([]byte) (int, error) {
	<-r.ctx.Done()
	return 0, r.ctx.Err()
}
