package source

import (
	"context"
	"io"

	"github.com/ytget/ytdx/internal/model"
)

// Resolver is the extraction capability the download pipeline depends on
type Resolver interface {
	// Resolve expands url into ordered items. With playlist set and a list
	// id present, every playlist entry becomes an item.
	Resolve(ctx context.Context, url string, playlist bool) ([]model.Item, error)

	// Discover returns title, author, thumbnails and stream descriptors
	Discover(ctx context.Context, item model.Item) (*model.MediaInfo, error)

	// Fetch opens the byte stream behind a descriptor and reports its size
	Fetch(ctx context.Context, stream model.StreamDescriptor) (io.ReadCloser, int64, error)

	// Forget drops cached metadata for an item so the next Discover is fresh
	Forget(item model.Item)
}

// PlaylistLister expands a playlist id into items
type PlaylistLister interface {
	ListPlaylist(ctx context.Context, playlistID string) ([]model.Item, error)
}
