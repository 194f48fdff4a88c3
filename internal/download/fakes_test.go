package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ytget/ytdx/internal/media"
	"github.com/ytget/ytdx/internal/model"
	"github.com/ytget/ytdx/internal/progress"
	"github.com/ytget/ytdx/internal/tagging"
)

const testURL = "https://www.youtube.com/watch?v=vid1"

func coverBytes() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x37}, 4096)...)
}

// fakeResolver serves canned items, metadata and payloads keyed by itag
type fakeResolver struct {
	mu sync.Mutex

	items       []model.Item
	resolveErr  error
	infos       map[string]*model.MediaInfo
	discoverErr map[string]error
	payloads    map[int][]byte
	failures    map[int]int
	fetchErr    map[int]error
	// open wraps the payload reader, e.g. to block or cancel mid-transfer
	open func(ctx context.Context, itag int, r io.Reader) io.Reader

	resolveCalls  int
	discoverCalls int
	forgetCalls   int
	fetched       []int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		items:       []model.Item{{Index: 0, ID: "vid1", URL: testURL}},
		infos:       map[string]*model.MediaInfo{},
		discoverErr: map[string]error{},
		payloads:    map[int][]byte{},
		failures:    map[int]int{},
		fetchErr:    map[int]error{},
	}
}

func (f *fakeResolver) Resolve(_ context.Context, _ string, _ bool) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.items, nil
}

func (f *fakeResolver) Discover(_ context.Context, item model.Item) (*model.MediaInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discoverCalls++
	if err := f.discoverErr[item.ID]; err != nil {
		return nil, err
	}
	info, ok := f.infos[item.ID]
	if !ok {
		return nil, errors.New("video unavailable")
	}
	clone := *info
	clone.Streams = append([]model.StreamDescriptor(nil), info.Streams...)
	return &clone, nil
}

func (f *fakeResolver) Fetch(ctx context.Context, stream model.StreamDescriptor) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, stream.Itag)
	if err := f.fetchErr[stream.Itag]; err != nil {
		f.mu.Unlock()
		return nil, 0, err
	}
	if f.failures[stream.Itag] > 0 {
		f.failures[stream.Itag]--
		f.mu.Unlock()
		return nil, 0, errors.New("connection reset by peer")
	}
	payload := f.payloads[stream.Itag]
	open := f.open
	f.mu.Unlock()

	var r io.Reader = bytes.NewReader(payload)
	if open != nil {
		r = open(ctx, stream.Itag, r)
	}
	return io.NopCloser(r), int64(len(payload)), nil
}

func (f *fakeResolver) Forget(model.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgetCalls++
}

func (f *fakeResolver) fetchCount(itag int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.fetched {
		if v == itag {
			n++
		}
	}
	return n
}

// fakeRunner stands in for ffmpeg by writing its output argument
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	fail  bool
}

func (r *fakeRunner) Run(_ context.Context, _ string, args []string, onProgress func(time.Duration)) error {
	r.mu.Lock()
	r.calls = append(r.calls, args)
	fail := r.fail
	r.mu.Unlock()

	if onProgress != nil {
		onProgress(30 * time.Second)
		onProgress(60 * time.Second)
	}
	if fail {
		return errors.New("exit status 1")
	}
	return os.WriteFile(args[len(args)-1], bytes.Repeat([]byte{0x11}, 2048), 0644)
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type staticLocator struct {
	path string
	err  error
}

func (l staticLocator) Locate(context.Context) (string, error) { return l.path, l.err }

// eventLog records everything a job emits
type eventLog struct {
	mu     sync.Mutex
	events []model.Event
}

func (l *eventLog) Emit(e model.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []model.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Event(nil), l.events...)
}

var _ progress.Sink = (*eventLog)(nil)

type harness struct {
	resolver *fakeResolver
	runner   *fakeRunner
	orch     *Orchestrator
	work     string
	dest     string
	cover    []byte
	coverURL string
}

func newHarness(t *testing.T, locator media.ToolLocator) *harness {
	t.Helper()

	cover := coverBytes()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cover.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(cover)
	}))
	t.Cleanup(srv.Close)

	h := &harness{
		resolver: newFakeResolver(),
		runner:   &fakeRunner{},
		work:     t.TempDir(),
		dest:     t.TempDir(),
		cover:    cover,
		coverURL: srv.URL + "/cover.jpg",
	}

	if locator == nil {
		locator = staticLocator{path: "/usr/bin/ffmpeg"}
	}
	muxer := media.NewMuxer(locator, h.runner, nil)
	muxer.SetRetryPolicy(1, time.Millisecond)

	h.orch = NewOrchestrator(Deps{
		Resolver: h.resolver,
		Tools:    locator,
		Muxer:    muxer,
		Tagger:   tagging.NewTagger(muxer),
		Covers:   tagging.NewCoverFetcher(nil),
	}, Options{MaxRetries: DefaultMaxRetries, RetryDelay: time.Millisecond, TempDir: h.work}, nil)
	return h
}

// addVideo registers an item with the given streams and a payload per itag
func (h *harness) addVideo(id, title string, streams ...model.StreamDescriptor) {
	h.resolver.infos[id] = &model.MediaInfo{
		ID:         id,
		Title:      title,
		Author:     "Test Artist",
		Duration:   2 * time.Minute,
		Thumbnails: []string{h.coverURL},
		Streams:    streams,
	}
	for _, s := range streams {
		h.resolver.payloads[s.Itag] = bytes.Repeat([]byte{byte(s.Itag)}, ChunkSize+1024)
	}
}

func (h *harness) job(kind model.Kind, format model.Format) model.Job {
	return model.Job{
		ID:         "job-test",
		URL:        testURL,
		Kind:       kind,
		Format:     format,
		DestDir:    h.dest,
		EmbedCover: kind == model.KindAudio,
	}
}

func (h *harness) assertWorkDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.work)
	require.NoError(t, err)
	require.Empty(t, entries, "work dir must be empty after the job")
}
