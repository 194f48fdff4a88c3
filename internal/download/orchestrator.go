package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ytget/ytdx/internal/errs"
	"github.com/ytget/ytdx/internal/media"
	"github.com/ytget/ytdx/internal/model"
	"github.com/ytget/ytdx/internal/platform"
	"github.com/ytget/ytdx/internal/progress"
	"github.com/ytget/ytdx/internal/source"
	"github.com/ytget/ytdx/internal/tagging"
)

// Discovery ends here for every job kind
const DiscoverEnd = 5.0

// Progress bands for video jobs
const (
	VideoDownloadStart = 5.0
	VideoDownloadEnd   = 90.0
	VideoMergeEnd      = 97.0
)

// Progress bands for audio jobs
const (
	AudioDownloadStart = 5.0
	AudioDownloadEnd   = 80.0
	AudioConvertEnd    = 92.0
)

// Work dir naming
const (
	WorkDirPattern = "ytdx-*"
	VideoStemName  = "video"
	AudioStemName  = "audio"
	OutputStemName = "output"
)

// Warnings attached to outcomes
const (
	WarnResolutionFallback = "requested %dp unavailable, using %dp"
	WarnContainerKept      = "no %s stream available, kept %s"
	WarnCoverUnavailable   = "cover art unavailable"
	WarnTaggingFailed      = "tagging failed: %v"
)

// Deps are the collaborators an orchestrator drives
type Deps struct {
	Resolver source.Resolver
	Tools    media.ToolLocator
	Muxer    Muxer
	Tagger   Tagger
	Covers   CoverSource
}

// Options tune retries and scratch space
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	ClearCache bool
	// TempDir is the parent of per-item work dirs; empty means os.TempDir
	TempDir string
}

// DefaultOptions returns the standard retry policy
func DefaultOptions() Options {
	return Options{MaxRetries: DefaultMaxRetries, RetryDelay: DefaultRetryDelay}
}

// Orchestrator runs jobs end to end: resolve, discover, select, download,
// merge or convert, tag, and place the file
type Orchestrator struct {
	resolver   source.Resolver
	tools      media.ToolLocator
	muxer      Muxer
	tagger     Tagger
	covers     CoverSource
	opts       Options
	clearCache atomic.Bool
	logger     *slog.Logger
}

// NewOrchestrator creates an orchestrator. Covers may be nil to skip cover art.
func NewOrchestrator(deps Deps, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	o := &Orchestrator{
		resolver: deps.Resolver,
		tools:    deps.Tools,
		muxer:    deps.Muxer,
		tagger:   deps.Tagger,
		covers:   deps.Covers,
		opts:     opts,
		logger:   logger,
	}
	o.clearCache.Store(opts.ClearCache)
	return o
}

// SetClearCache toggles re-discovery before retries and after each item
func (o *Orchestrator) SetClearCache(clear bool) {
	o.clearCache.Store(clear)
}

// ClearCache reports the current cache preference
func (o *Orchestrator) ClearCache() bool {
	return o.clearCache.Load()
}

// itemRun is the state of one sub-job
type itemRun struct {
	job      model.Job
	item     model.Item
	info     *model.MediaInfo
	dir      string
	tracker  *progress.Tracker
	warnings []string
	degraded bool
}

func (r *itemRun) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Run executes job and reports through sink. Every sub-job ends with exactly
// one terminal event, and the returned summary holds the same outcomes.
func (o *Orchestrator) Run(ctx context.Context, job model.Job, sink progress.Sink) model.Summary {
	summary := model.Summary{JobID: job.ID}
	log := o.logger.With("job", job.ID)

	failJob := func(err error) model.Summary {
		t := progress.NewTracker(sink, job.ID, 0, 1)
		out := model.Outcome{URL: job.URL, Status: statusFor(err), Err: err}
		t.Finish(out)
		summary.Add(out)
		log.Error("job failed", "url", job.URL, "error", err)
		return summary
	}

	if err := job.Validate(); err != nil {
		return failJob(errs.Wrap(errs.ErrInvalidJob, "validate", err))
	}

	// Missing ffmpeg fails before any network traffic
	if job.NeedsTool() {
		if _, err := o.tools.Locate(ctx); err != nil {
			return failJob(ensureKind(errs.ErrToolNotFound, "locate ffmpeg", err))
		}
	}

	items, err := o.resolver.Resolve(ctx, job.URL, job.Playlist)
	if err != nil {
		if ctx.Err() != nil {
			err = errs.Wrap(errs.ErrCancelled, "resolve", err)
		}
		return failJob(ensureKind(errs.ErrResolution, "resolve", err))
	}
	log.Info("job started", "url", job.URL, "kind", job.Kind, "format", job.Format, "items", len(items))

	for i, item := range items {
		t := progress.NewTracker(sink, job.ID, i, len(items))
		t.SetTitle(item.Title)

		var out model.Outcome
		if err := ctx.Err(); err != nil {
			out = model.Outcome{URL: item.URL, Title: item.Title, Status: model.StatusCancelled,
				Err: errs.Wrap(errs.ErrCancelled, "item", err)}
		} else {
			out = o.runItem(ctx, job, item, t)
		}
		out.Item = i

		t.Finish(out)
		summary.Add(out)
		o.logOutcome(log, out)
	}

	log.Info("job finished", "result", summary.String())
	return summary
}

func (o *Orchestrator) logOutcome(log *slog.Logger, out model.Outcome) {
	attrs := []any{"item", out.Item, "title", out.Title, "status", out.Status}
	switch out.Status {
	case model.StatusSucceeded:
		log.Info("item done", append(attrs, "path", out.OutputPath)...)
	case model.StatusDegraded:
		log.Warn("item degraded", append(attrs, "path", out.OutputPath, "warnings", strings.Join(out.Warnings, "; "))...)
	case model.StatusCancelled:
		log.Info("item cancelled", attrs...)
	default:
		log.Error("item failed", append(attrs, "error", out.Err)...)
	}
}

// runItem processes one item. The work dir is removed on every return path.
func (o *Orchestrator) runItem(ctx context.Context, job model.Job, item model.Item, t *progress.Tracker) model.Outcome {
	out := model.Outcome{URL: item.URL, Title: item.Title}
	fail := func(err error) model.Outcome {
		out.Status = statusFor(err)
		out.Err = err
		return out
	}

	t.Update(model.PhaseDiscovering, 0, "")
	info, err := o.resolver.Discover(ctx, item)
	if err != nil {
		if ctx.Err() != nil {
			return fail(errs.Wrap(errs.ErrCancelled, "discover", err))
		}
		return fail(ensureKind(errs.ErrResolution, "discover", err))
	}
	if info.Title != "" {
		out.Title = info.Title
		t.SetTitle(info.Title)
	}
	if o.ClearCache() {
		defer o.resolver.Forget(item)
	}

	dir, err := os.MkdirTemp(o.opts.TempDir, WorkDirPattern)
	if err != nil {
		return fail(errs.Wrap(errs.ErrDownload, "create work dir", err))
	}
	defer os.RemoveAll(dir)

	r := &itemRun{job: job, item: item, info: info, dir: dir, tracker: t}
	t.Update(model.PhaseDiscovering, DiscoverEnd, "")

	var path string
	if job.Kind == model.KindVideo {
		path, err = o.runVideo(ctx, r)
	} else {
		path, err = o.runAudio(ctx, r)
	}
	out.Warnings = r.warnings
	if err != nil {
		return fail(err)
	}

	final, err := o.place(path, out.Title, job.DestDir)
	if err != nil {
		return fail(errs.Wrap(errs.ErrDownload, "move output", err))
	}

	out.OutputPath = final
	out.Status = model.StatusSucceeded
	if r.degraded {
		out.Status = model.StatusDegraded
	}
	return out
}

func (o *Orchestrator) runVideo(ctx context.Context, r *itemRun) (string, error) {
	job := r.job
	choice, err := SelectVideo(r.info.Streams, job.Resolution, job.Format)
	if err != nil {
		return "", err
	}
	if choice.Fallback {
		r.warn(WarnResolutionFallback, job.Resolution, choice.Video.Height)
	}

	if choice.Progressive {
		raw, err := o.fetchStream(ctx, r, choice.Video, VideoStemName, model.PhaseDownloadingVideo, VideoDownloadStart, VideoMergeEnd)
		if err != nil {
			return "", err
		}
		if choice.Video.Container != string(job.Format) {
			r.warn(WarnContainerKept, job.Format, choice.Video.Container)
		}
		return raw, nil
	}

	split := splitBand(VideoDownloadStart, VideoDownloadEnd, choice.Video.Size, choice.Audio.Size)
	videoPath, err := o.fetchStream(ctx, r, choice.Video, VideoStemName, model.PhaseDownloadingVideo, VideoDownloadStart, split)
	if err != nil {
		return "", err
	}
	audioPath, err := o.fetchStream(ctx, r, *choice.Audio, AudioStemName, model.PhaseDownloadingAudio, split, VideoDownloadEnd)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(errs.ErrCancelled, "merge", err)
	}
	r.tracker.Update(model.PhaseMerging, VideoDownloadEnd, "")
	merged := outputPath(r.dir, job.Format)
	err = o.muxer.Merge(ctx, videoPath, audioPath, merged, job.Format, r.info.Duration, func(frac float64) {
		r.tracker.Update(model.PhaseMerging, VideoDownloadEnd+(VideoMergeEnd-VideoDownloadEnd)*frac, "")
	})
	if err != nil {
		return "", err
	}
	return merged, nil
}

func (o *Orchestrator) runAudio(ctx context.Context, r *itemRun) (string, error) {
	job := r.job
	stream, err := SelectAudio(r.info.Streams, job.Quality(), job.Format)
	if err != nil {
		return "", err
	}

	candidates := tagging.CandidateURLs(r.info.ID, r.info.Thumbnails)
	wantCover := job.EmbedCover && o.covers != nil

	var (
		raw   string
		cover *tagging.Cover
	)
	g, gctx := errgroup.WithContext(ctx)
	if wantCover {
		g.Go(func() error {
			c, err := o.covers.Fetch(gctx, candidates)
			if err != nil {
				o.logger.Warn("cover art unavailable", "item", r.item.ID, "error", err)
				return nil
			}
			cover = c
			return nil
		})
	}
	g.Go(func() error {
		var err error
		raw, err = o.fetchStream(gctx, r, stream, AudioStemName, model.PhaseDownloadingAudio, AudioDownloadStart, AudioDownloadEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	if wantCover && cover == nil {
		r.warn(WarnCoverUnavailable)
	}

	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(errs.ErrCancelled, "convert", err)
	}

	converted, err := o.convertAudio(ctx, r, raw, stream)
	if err != nil {
		return "", err
	}

	r.tracker.Update(model.PhaseTagging, AudioConvertEnd, "")
	meta := tagging.Meta{Title: r.info.Title, Artist: r.info.Author, Album: r.info.Author}
	if err := o.tagger.Tag(ctx, converted, job.Format, meta, cover); err != nil {
		if ctx.Err() != nil {
			return "", errs.Wrap(errs.ErrCancelled, "tag", err)
		}
		r.degraded = true
		r.warn(WarnTaggingFailed, err)
		o.logger.Warn("tagging failed", "item", r.item.ID, "error", errs.Wrap(errs.ErrTagging, "tag", err))
	}
	return converted, nil
}

// convertAudio transcodes raw into the job format. An AAC source headed for
// M4A is copied as-is when ffmpeg is unavailable.
func (o *Orchestrator) convertAudio(ctx context.Context, r *itemRun, raw string, stream model.StreamDescriptor) (string, error) {
	job := r.job
	copyAudio := job.Format == model.FormatM4A && stream.Codec == "mp4a"
	out := outputPath(r.dir, job.Format)

	if copyAudio && !o.muxer.Available(ctx) {
		if err := os.Rename(raw, out); err != nil {
			return "", errs.Wrap(errs.ErrMerge, "copy audio", err)
		}
		return out, nil
	}

	r.tracker.Update(model.PhaseConverting, AudioDownloadEnd, "")
	err := o.muxer.Convert(ctx, raw, out, job.Format, job.Quality(), copyAudio, r.info.Duration, func(frac float64) {
		r.tracker.Update(model.PhaseConverting, AudioDownloadEnd+(AudioConvertEnd-AudioDownloadEnd)*frac, "")
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// place moves the finished file into destDir under a sanitised, unused name
func (o *Orchestrator) place(path, title, destDir string) (string, error) {
	if err := platform.CreateDirectoryIfNotExists(destDir); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(path))
	dst, err := platform.UniquePath(destDir, platform.SanitizeFileName(title), ext)
	if err != nil {
		return "", err
	}
	if err := platform.MoveFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func outputPath(dir string, format model.Format) string {
	return filepath.Join(dir, OutputStemName+format.Extension())
}

// splitBand divides [lo, hi] between two downloads in proportion to size.
// Unknown sizes split the band evenly.
func splitBand(lo, hi float64, first, second int64) float64 {
	if first <= 0 || second <= 0 {
		return lo + (hi-lo)/2
	}
	return lo + (hi-lo)*float64(first)/float64(first+second)
}

// statusFor maps an error to the outcome status it produces
func statusFor(err error) model.Status {
	if errors.Is(err, errs.ErrCancelled) || errors.Is(err, context.Canceled) {
		return model.StatusCancelled
	}
	return model.StatusFailed
}

// ensureKind wraps err with kind unless it already carries a taxonomy kind
func ensureKind(kind error, op string, err error) error {
	if errs.KindOf(err) != nil {
		return err
	}
	return errs.Wrap(kind, op, err)
}
