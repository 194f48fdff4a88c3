package download

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ytget/ytdx/internal/model"
	"github.com/ytget/ytdx/internal/progress"
)

// JobIDPrefix is prepended to generated job IDs
const JobIDPrefix = "job-"

// Handle is a running job. Drain Events until it closes, then Wait.
type Handle struct {
	id      string
	job     model.Job
	events  *progress.Channel
	cancel  context.CancelFunc
	done    chan struct{}
	summary model.Summary
}

// ID returns the job ID
func (h *Handle) ID() string { return h.id }

// Job returns the job as submitted, with its ID filled in
func (h *Handle) Job() model.Job { return h.job }

// Events returns the progress stream; it closes after the last terminal event
func (h *Handle) Events() <-chan model.Event { return h.events.Events() }

// Cancel asks the job to stop at the next chunk or step boundary
func (h *Handle) Cancel() { h.cancel() }

// Done is closed once the job has finished
func (h *Handle) Done() <-chan struct{} { return h.done }

// Dropped returns how many non-terminal events the consumer missed
func (h *Handle) Dropped() int64 { return h.events.Dropped() }

// Wait blocks until the job finishes and returns its summary
func (h *Handle) Wait() model.Summary {
	<-h.done
	return h.summary
}

// Service handles download jobs, one goroutine per job
type Service struct {
	orchestrator *Orchestrator
	handles      map[string]*Handle
	order        []string
	handlesMutex sync.RWMutex
	bufferSize   int
	logger       *slog.Logger
}

// NewService creates a new download service
func NewService(orchestrator *Orchestrator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		orchestrator: orchestrator,
		handles:      make(map[string]*Handle),
		bufferSize:   progress.DefaultBufferSize,
		logger:       logger,
	}
}

// Start launches job and returns immediately
func (s *Service) Start(job model.Job) *Handle {
	if job.ID == "" {
		job.ID = generateJobID()
	}

	ctx, cancel := context.WithCancel(context.Background())

	s.handlesMutex.Lock()
	h := &Handle{
		id:     job.ID,
		job:    job,
		events: progress.NewChannel(s.bufferSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.handles[h.id] = h
	s.order = append(s.order, h.id)
	s.handlesMutex.Unlock()

	s.logger.Info("job queued", "job", h.id, "url", job.URL)

	go func() {
		defer close(h.done)
		defer h.events.Close()
		defer s.remove(h.id)
		defer cancel()

		h.summary = s.orchestrator.Run(ctx, job, h.events)
	}()

	return h
}

// Get returns a running job by ID
func (s *Service) Get(id string) (*Handle, bool) {
	s.handlesMutex.RLock()
	defer s.handlesMutex.RUnlock()
	h, exists := s.handles[id]
	return h, exists
}

// Active returns running jobs in start order
func (s *Service) Active() []*Handle {
	s.handlesMutex.RLock()
	defer s.handlesMutex.RUnlock()

	handles := make([]*Handle, 0, len(s.order))
	for _, id := range s.order {
		handles = append(handles, s.handles[id])
	}
	return handles
}

// Cancel stops a running job
func (s *Service) Cancel(id string) error {
	h, exists := s.Get(id)
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	h.Cancel()
	s.logger.Info("job cancel requested", "job", id)
	return nil
}

// CancelAll stops every running job
func (s *Service) CancelAll() {
	for _, h := range s.Active() {
		h.Cancel()
	}
}

func (s *Service) remove(id string) {
	s.handlesMutex.Lock()
	defer s.handlesMutex.Unlock()

	delete(s.handles, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// generateJobID returns a time-ordered unique job ID
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return JobIDPrefix + uuid.NewString()
	}
	return JobIDPrefix + id.String()
}
