package source

import (
	"context"
	"fmt"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/ytdx/internal/model"
)

// DefaultPlaylistTimeout bounds one playlist expansion
const DefaultPlaylistTimeout = 60 * time.Second

// PlaylistService lists playlist entries through ytdlp
type PlaylistService struct {
	timeout time.Duration
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService() *PlaylistService {
	return &PlaylistService{timeout: DefaultPlaylistTimeout}
}

// ListPlaylist returns the playlist entries in playlist order
func (p *PlaylistService) ListPlaylist(ctx context.Context, playlistID string) ([]model.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	d := ytdlp.New()
	entries, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	items := make([]model.Item, 0, len(entries))
	for _, it := range entries {
		if it.VideoID == "" {
			continue
		}
		items = append(items, model.Item{
			Index: len(items),
			ID:    it.VideoID,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
			Title: it.Title,
		})
	}
	return items, nil
}
