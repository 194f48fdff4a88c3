package download

import (
	"context"
	"time"

	"github.com/ytget/ytdx/internal/model"
	"github.com/ytget/ytdx/internal/tagging"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	// Start launches job on its own goroutine and returns its handle
	Start(job model.Job) *Handle

	// Get returns a running job by ID
	Get(id string) (*Handle, bool)

	// Active lists running jobs, oldest first
	Active() []*Handle

	// Cancel stops a running job
	Cancel(id string) error

	// CancelAll stops every running job
	CancelAll()
}

// Muxer runs the external transcode tool. media.Muxer satisfies it.
type Muxer interface {
	Available(ctx context.Context) bool
	Merge(ctx context.Context, videoPath, audioPath, outPath string, format model.Format, duration time.Duration, onProgress func(float64)) error
	Convert(ctx context.Context, inPath, outPath string, format model.Format, quality model.AudioQuality, copyAudio bool, duration time.Duration, onProgress func(float64)) error
}

// Tagger writes metadata into finished audio files. tagging.Tagger satisfies it.
type Tagger interface {
	Tag(ctx context.Context, path string, format model.Format, meta tagging.Meta, cover *tagging.Cover) error
}

// CoverSource downloads cover art. tagging.CoverFetcher satisfies it.
type CoverSource interface {
	Fetch(ctx context.Context, candidates []string) (*tagging.Cover, error)
}
