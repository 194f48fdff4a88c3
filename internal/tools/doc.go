// Package tools finds the ffmpeg executable the media pipeline depends on.
package tools
