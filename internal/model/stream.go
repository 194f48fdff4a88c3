package model

import "time"

// StreamKind tells what a stream carries
type StreamKind string

const (
	StreamVideoOnly   StreamKind = "video-only"
	StreamAudioOnly   StreamKind = "audio-only"
	StreamProgressive StreamKind = "progressive"
)

// StreamDescriptor describes one downloadable encoding of a media item.
// Handle is opaque to everything except the source that produced it.
type StreamDescriptor struct {
	Kind      StreamKind `json:"kind"`
	Container string     `json:"container"`
	Codec     string     `json:"codec"`
	Height    int        `json:"height,omitempty"`
	FPS       int        `json:"fps,omitempty"`
	Bitrate   int        `json:"bitrate"`
	Size      int64      `json:"size,omitempty"`
	Itag      int        `json:"itag"`
	Handle    any        `json:"-"`
}

// HasVideo returns true for video-only and progressive streams
func (s StreamDescriptor) HasVideo() bool {
	return s.Kind == StreamVideoOnly || s.Kind == StreamProgressive
}

// HasAudio returns true for audio-only and progressive streams
func (s StreamDescriptor) HasAudio() bool {
	return s.Kind == StreamAudioOnly || s.Kind == StreamProgressive
}

// Extension returns the file extension of the raw stream
func (s StreamDescriptor) Extension() string {
	if s.Container == "" {
		return ".bin"
	}
	return "." + s.Container
}

// Item is one video reference produced by resolving a URL
type Item struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// MediaInfo is what discovery learns about an item
type MediaInfo struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Author     string             `json:"author"`
	Duration   time.Duration      `json:"duration"`
	Thumbnails []string           `json:"thumbnails"`
	Streams    []StreamDescriptor `json:"-"`
}
