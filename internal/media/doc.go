package media

// Package media drives ffmpeg: merging separate video and audio streams,
// converting audio to the requested format and writing M4A metadata.
