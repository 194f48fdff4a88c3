package source

// Package source turns URLs into downloadable items and byte streams. The
// rest of the app sees only the Resolver interface; the YouTube
// implementation uses kkdai/youtube for videos and ytget/ytdlp for playlists.
