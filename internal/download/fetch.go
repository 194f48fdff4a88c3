package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ytget/ytdx/internal/errs"
	"github.com/ytget/ytdx/internal/model"
)

// Transfer settings
const (
	ChunkSize         = 256 << 10
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// copyChunks copies src into dst one chunk at a time. Cancellation is
// checked between chunks, never inside one.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, total int64, report func(done, total int64)) (int64, error) {
	buf := make([]byte, ChunkSize)
	var done int64
	for {
		if err := ctx.Err(); err != nil {
			return done, errs.Wrap(errs.ErrCancelled, "download", err)
		}

		n, rerr := io.ReadFull(src, buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return done, errs.Wrap(errs.ErrDownload, "write", err)
			}
			done += int64(n)
			if report != nil {
				report(done, total)
			}
		}

		switch {
		case rerr == nil:
		case errors.Is(rerr, io.EOF), errors.Is(rerr, io.ErrUnexpectedEOF):
			return done, nil
		default:
			return done, errs.Wrap(errs.ErrDownload, "read", rerr)
		}
	}
}

// fetchStream downloads one stream into the item's work dir, retrying
// network failures with linear backoff
func (o *Orchestrator) fetchStream(ctx context.Context, r *itemRun, stream model.StreamDescriptor, name string, phase model.Phase, lo, hi float64) (string, error) {
	path := filepath.Join(r.dir, name+stream.Extension())
	report := r.tracker.Band(phase, lo, hi)

	r.tracker.Update(phase, lo, sizeMessage(stream.Size))

	var lastErr error
	for attempt := 0; attempt <= o.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			// Linear backoff
			select {
			case <-time.After(o.opts.RetryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return "", errs.Wrap(errs.ErrCancelled, "download", ctx.Err())
			}
			o.logger.Warn("retrying download",
				"item", r.item.ID, "itag", stream.Itag, "attempt", attempt+1, "error", lastErr)

			if o.ClearCache() {
				if fresh, err := o.rediscover(ctx, r, stream); err == nil {
					stream = fresh
				} else {
					o.logger.Warn("rediscovery failed", "item", r.item.ID, "error", err)
				}
			}
		}

		n, err := o.fetchOnce(ctx, stream, path, report)
		if err == nil {
			o.logger.Debug("stream downloaded", "item", r.item.ID, "itag", stream.Itag, "size", humanize.Bytes(uint64(n)))
			return path, nil
		}

		os.Remove(path)
		if ctx.Err() != nil || errors.Is(err, errs.ErrCancelled) {
			return "", errs.Wrap(errs.ErrCancelled, "download", err)
		}
		if !errs.Retryable(err) {
			return "", err
		}
		lastErr = err
		o.logger.Warn("download attempt failed", "item", r.item.ID, "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

func (o *Orchestrator) fetchOnce(ctx context.Context, stream model.StreamDescriptor, path string, report func(done, total int64)) (int64, error) {
	rc, size, err := o.resolver.Fetch(ctx, stream)
	if err != nil {
		if errs.KindOf(err) != nil {
			return 0, err
		}
		return 0, errs.Wrap(errs.ErrDownload, "open stream", err)
	}
	defer rc.Close()

	if size <= 0 {
		size = stream.Size
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, errs.Wrap(errs.ErrDownload, "create file", err)
	}

	n, err := copyChunks(ctx, f, rc, size, report)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errs.Wrap(errs.ErrDownload, "close file", cerr)
	}
	if err != nil {
		return n, err
	}
	if size > 0 && n < size {
		return n, errs.Wrap(errs.ErrDownload, "download",
			fmt.Errorf("short transfer: %s of %s", humanize.Bytes(uint64(n)), humanize.Bytes(uint64(size))))
	}
	return n, nil
}

// rediscover drops cached metadata and finds the same itag in a fresh
// descriptor set
func (o *Orchestrator) rediscover(ctx context.Context, r *itemRun, stream model.StreamDescriptor) (model.StreamDescriptor, error) {
	o.resolver.Forget(r.item)
	info, err := o.resolver.Discover(ctx, r.item)
	if err != nil {
		return stream, err
	}
	for _, s := range info.Streams {
		if s.Itag == stream.Itag {
			return s, nil
		}
	}
	return stream, fmt.Errorf("itag %d no longer offered", stream.Itag)
}

func sizeMessage(size int64) string {
	if size <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(size))
}
