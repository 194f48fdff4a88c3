package tagging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
)

// Thumbnail fallbacks tried after the discovered URLs, best first
var ThumbnailVariants = []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault", "default"}

// Cover fetch settings
const (
	ThumbnailURLTemplate = "https://i.ytimg.com/vi/%s/%s.jpg"
	CoverTimeout         = 15 * time.Second
	CoverRetries         = 1
	CoverUserAgent       = "ytdx/1.0"
	MinCoverBytes        = 1024
)

// Cover is a downloaded image ready for embedding
type Cover struct {
	Data []byte
	MIME string
	URL  string
}

// Extension returns the file extension for the image type
func (c *Cover) Extension() string {
	if c.MIME == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// CoverFetcher downloads cover art over HTTP
type CoverFetcher struct {
	client *resty.Client
	logger *slog.Logger
}

// NewCoverFetcher creates a fetcher with a short timeout and one retry
func NewCoverFetcher(logger *slog.Logger) *CoverFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().
		SetTimeout(CoverTimeout).
		SetRetryCount(CoverRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("User-Agent", CoverUserAgent)

	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= 500
	})

	return &CoverFetcher{client: client, logger: logger}
}

// CandidateURLs returns discovered thumbnails followed by the standard
// i.ytimg.com variants for videoID, without duplicates.
func CandidateURLs(videoID string, discovered []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	for _, u := range discovered {
		add(u)
	}
	if videoID != "" {
		for _, v := range ThumbnailVariants {
			add(fmt.Sprintf(ThumbnailURLTemplate, videoID, v))
		}
	}
	return out
}

// Fetch returns the first candidate that downloads as a JPEG or PNG image
func (f *CoverFetcher) Fetch(ctx context.Context, candidates []string) (*Cover, error) {
	if len(candidates) == 0 {
		return nil, errors.New("no cover candidates")
	}

	var lastErr error
	for _, u := range candidates {
		cover, err := f.fetchOne(ctx, u)
		if err == nil {
			return cover, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Debug("cover candidate rejected", "url", u, "error", err)
		lastErr = err
	}
	return nil, fmt.Errorf("no usable cover image: %w", lastErr)
}

func (f *CoverFetcher) fetchOne(ctx context.Context, u string) (*Cover, error) {
	resp, err := f.client.R().SetContext(ctx).Get(u)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("GET %s: status %d", u, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) < MinCoverBytes {
		return nil, fmt.Errorf("GET %s: image too small (%d bytes)", u, len(body))
	}

	mt := mimetype.Detect(body)
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		return nil, fmt.Errorf("GET %s: unsupported image type %s", u, mt.String())
	}
	return &Cover{Data: body, MIME: mt.String(), URL: u}, nil
}
