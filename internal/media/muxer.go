package media

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/ytget/ytdx/internal/errs"
	"github.com/ytget/ytdx/internal/model"
)

// Retry settings
const (
	DefaultRetries    = 2
	DefaultRetryDelay = 2 * time.Second
)

// ToolLocator resolves the ffmpeg binary
type ToolLocator interface {
	Locate(ctx context.Context) (string, error)
}

// Muxer runs ffmpeg jobs with retry on transient failure
type Muxer struct {
	locator    ToolLocator
	runner     Runner
	retries    int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewMuxer creates a muxer. A nil runner uses ExecRunner.
func NewMuxer(locator ToolLocator, runner Runner, logger *slog.Logger) *Muxer {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Muxer{
		locator:    locator,
		runner:     runner,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		logger:     logger,
	}
}

// SetRetryPolicy changes how many extra attempts are made and the base delay
func (m *Muxer) SetRetryPolicy(retries int, delay time.Duration) {
	if retries < 0 {
		retries = 0
	}
	m.retries = retries
	m.retryDelay = delay
}

// Available reports whether ffmpeg can be located
func (m *Muxer) Available(ctx context.Context) bool {
	_, err := m.locator.Locate(ctx)
	return err == nil
}

// Merge muxes video and audio into outPath. onProgress gets a 0..1 fraction
// based on duration and may be nil.
func (m *Muxer) Merge(ctx context.Context, videoPath, audioPath, outPath string, format model.Format, duration time.Duration, onProgress func(float64)) error {
	return m.run(ctx, "merge", outPath, BuildMergeArgs(videoPath, audioPath, outPath, format), duration, onProgress)
}

// Convert transcodes an audio file into format at the quality tier
func (m *Muxer) Convert(ctx context.Context, inPath, outPath string, format model.Format, quality model.AudioQuality, copyAudio bool, duration time.Duration, onProgress func(float64)) error {
	return m.run(ctx, "convert", outPath, BuildConvertArgs(inPath, outPath, format, quality, copyAudio), duration, onProgress)
}

// TagM4A writes tags and optional cover art into a copy of inPath at outPath
func (m *Muxer) TagM4A(ctx context.Context, inPath, outPath string, tags Tags, coverPath string) error {
	return m.run(ctx, "tag m4a", outPath, BuildM4ATagArgs(inPath, outPath, tags, coverPath), 0, nil)
}

func (m *Muxer) run(ctx context.Context, op, outPath string, args []string, duration time.Duration, onProgress func(float64)) error {
	bin, err := m.locator.Locate(ctx)
	if err != nil {
		return err
	}

	report := func(pos time.Duration) {
		if onProgress == nil || duration <= 0 {
			return
		}
		frac := float64(pos) / float64(duration)
		if frac > 1 {
			frac = 1
		}
		onProgress(frac)
	}

	var lastErr error
	for attempt := 0; attempt <= m.retries; attempt++ {
		if attempt > 0 {
			// Linear backoff
			select {
			case <-time.After(m.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return errs.Wrap(errs.ErrCancelled, op, ctx.Err())
			}
			m.logger.Warn("retrying ffmpeg", "op", op, "attempt", attempt+1, "error", lastErr)
		}

		err := m.runner.Run(ctx, bin, args, report)
		if err == nil {
			return nil
		}

		// Remove partial output file
		os.Remove(outPath)

		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return errs.Wrap(errs.ErrCancelled, op, err)
		}
		lastErr = runError(op, err)
		if !errs.Retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// runError classifies a failed ffmpeg run. A binary that disappeared after
// Locate is a missing tool, everything else a merge failure.
func runError(op string, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return errs.Wrap(errs.ErrToolNotFound, op, err)
	}
	return errs.Wrap(errs.ErrMerge, op, err)
}
