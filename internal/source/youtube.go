package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/ytdx/internal/errs"
	"github.com/ytget/ytdx/internal/model"
)

// HTTP and URL settings
const (
	DefaultHTTPTimeout      = 30 * time.Minute
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

var (
	videoIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	videoPathPrefixes = map[string]bool{"shorts": true, "embed": true, "live": true, "v": true}
)

// streamHandle is the opaque Handle stored in descriptors
type streamHandle struct {
	video  *youtube.Video
	format *youtube.Format
}

// YouTube resolves and fetches YouTube media
type YouTube struct {
	client    *youtube.Client
	playlists PlaylistLister
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]*youtube.Video
}

// NewYouTube creates a YouTube source. A nil lister uses ytdlp.
func NewYouTube(playlists PlaylistLister, logger *slog.Logger) *YouTube {
	if playlists == nil {
		playlists = NewPlaylistService()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YouTube{
		client:    &youtube.Client{HTTPClient: &http.Client{Timeout: DefaultHTTPTimeout}},
		playlists: playlists,
		logger:    logger,
		cache:     make(map[string]*youtube.Video),
	}
}

// Resolve implements Resolver
func (y *YouTube) Resolve(ctx context.Context, rawURL string, playlist bool) ([]model.Item, error) {
	if playlist {
		if id := model.PlaylistID(rawURL); id != "" {
			items, err := y.playlists.ListPlaylist(ctx, id)
			if err != nil {
				return nil, errs.Wrap(errs.ErrResolution, "expand playlist "+id, err)
			}
			if len(items) == 0 {
				return nil, errs.New(errs.ErrResolution, "expand playlist "+id+": playlist is empty")
			}
			return items, nil
		}
	}

	id, err := VideoID(rawURL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrResolution, "parse video url", err)
	}
	return []model.Item{{Index: 0, ID: id, URL: fmt.Sprintf(YouTubeVideoURLTemplate, id)}}, nil
}

// VideoID extracts the 11 character video id from a watch, youtu.be,
// shorts, embed or live URL
func VideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	var id string
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case host == "youtu.be":
		id = parts[0]
	case u.Query().Get("v") != "":
		id = u.Query().Get("v")
	case len(parts) == 2 && videoPathPrefixes[parts[0]]:
		id = parts[1]
	}

	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("no video id in %q", rawURL)
	}
	return id, nil
}

// Discover implements Resolver
func (y *YouTube) Discover(ctx context.Context, item model.Item) (*model.MediaInfo, error) {
	video, err := y.video(ctx, item)
	if err != nil {
		return nil, err
	}

	info := &model.MediaInfo{
		ID:         video.ID,
		Title:      video.Title,
		Author:     video.Author,
		Duration:   video.Duration,
		Thumbnails: thumbnailURLs(video.Thumbnails),
	}
	for i := range video.Formats {
		f := &video.Formats[i]
		d, ok := describeFormat(f)
		if !ok {
			continue
		}
		d.Handle = streamHandle{video: video, format: f}
		info.Streams = append(info.Streams, d)
	}
	return info, nil
}

// Fetch implements Resolver
func (y *YouTube) Fetch(ctx context.Context, stream model.StreamDescriptor) (io.ReadCloser, int64, error) {
	h, ok := stream.Handle.(streamHandle)
	if !ok || h.video == nil || h.format == nil {
		return nil, 0, errs.New(errs.ErrNoStreams, "fetch: stream descriptor has no youtube handle")
	}
	return y.client.GetStreamContext(ctx, h.video, h.format)
}

// Forget implements Resolver
func (y *YouTube) Forget(item model.Item) {
	y.mu.Lock()
	delete(y.cache, item.ID)
	y.mu.Unlock()
}

func (y *YouTube) video(ctx context.Context, item model.Item) (*youtube.Video, error) {
	y.mu.Lock()
	cached, ok := y.cache[item.ID]
	y.mu.Unlock()
	if ok {
		return cached, nil
	}

	target := item.URL
	if target == "" {
		target = item.ID
	}
	video, err := y.client.GetVideoContext(ctx, target)
	if err != nil {
		return nil, errs.Wrap(errs.ErrResolution, "fetch video info", err)
	}

	y.mu.Lock()
	y.cache[item.ID] = video
	y.mu.Unlock()
	y.logger.Debug("video discovered", "id", video.ID, "formats", len(video.Formats))
	return video, nil
}

// describeFormat maps a youtube format onto a descriptor. Formats with an
// unparseable mime type are skipped.
func describeFormat(f *youtube.Format) (model.StreamDescriptor, bool) {
	mediaType, params, err := mime.ParseMediaType(f.MimeType)
	if err != nil {
		return model.StreamDescriptor{}, false
	}
	major, container, found := strings.Cut(mediaType, "/")
	if !found {
		return model.StreamDescriptor{}, false
	}

	codecs := strings.Split(params["codecs"], ",")
	codec, _, _ := strings.Cut(strings.TrimSpace(codecs[0]), ".")

	d := model.StreamDescriptor{
		Container: container,
		Codec:     codec,
		Bitrate:   bitrateForFormat(f),
		Size:      f.ContentLength,
		Itag:      f.ItagNo,
	}

	switch {
	case major == "audio":
		d.Kind = model.StreamAudioOnly
	case major == "video" && (f.AudioChannels > 0 || len(codecs) > 1):
		d.Kind = model.StreamProgressive
		d.Height, d.FPS = f.Height, f.FPS
	case major == "video":
		d.Kind = model.StreamVideoOnly
		d.Height, d.FPS = f.Height, f.FPS
	default:
		return model.StreamDescriptor{}, false
	}
	return d, true
}

func bitrateForFormat(f *youtube.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

// thumbnailURLs returns thumbnail URLs, largest first
func thumbnailURLs(thumbs youtube.Thumbnails) []string {
	sorted := append(youtube.Thumbnails(nil), thumbs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Width*sorted[i].Height > sorted[j].Width*sorted[j].Height
	})

	urls := make([]string, 0, len(sorted))
	for _, t := range sorted {
		if t.URL != "" {
			urls = append(urls, t.URL)
		}
	}
	return urls
}
