package media

import (
	"github.com/ytget/ytdx/internal/model"
)

// FFmpeg codec settings
const (
	// Merge: video is copied, audio re-encoded for mp4 compatibility
	MergeVideoCodec = "copy"
	MergeAudioCodec = "aac"

	// Audio conversion encoders
	MP3Encoder = "libmp3lame"
	AACEncoder = "aac"

	// Container flags
	FastStartFlag = "+faststart"

	// Progress reporting
	ProgressPipeTarget = "pipe:2"
	ProgressTimePrefix = "out_time_us="
)

// Audio bitrates per tier
var (
	MP3Bitrates = map[model.AudioQuality]string{
		model.AudioHigh:   "320k",
		model.AudioMedium: "192k",
		model.AudioLow:    "128k",
	}
	AACBitrates = map[model.AudioQuality]string{
		model.AudioHigh:   "256k",
		model.AudioMedium: "192k",
		model.AudioLow:    "128k",
	}
)

// Tags is the metadata written into audio files
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// BuildMergeArgs builds the arguments that mux a video-only and an audio-only
// file into out. MKV keeps the source audio, MP4 gets AAC.
func BuildMergeArgs(videoPath, audioPath, outPath string, format model.Format) []string {
	audioCodec := MergeAudioCodec
	if format == model.FormatMKV {
		audioCodec = "copy"
	}

	args := []string{
		"-y",             // Overwrite output file
		"-i", videoPath, // Video input
		"-i", audioPath, // Audio input
		"-c:v", MergeVideoCodec,
		"-c:a", audioCodec,
		"-map", "0:v:0",
		"-map", "1:a:0",
	}
	if format == model.FormatMP4 {
		args = append(args, "-movflags", FastStartFlag)
	}
	return append(args,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outPath,
	)
}

// BuildConvertArgs builds the arguments that turn an audio stream into the
// requested format. copyAudio keeps an AAC source as is for M4A.
func BuildConvertArgs(inPath, outPath string, format model.Format, quality model.AudioQuality, copyAudio bool) []string {
	args := []string{"-y", "-i", inPath, "-vn"}

	switch {
	case format == model.FormatM4A && copyAudio:
		args = append(args, "-c:a", "copy")
	case format == model.FormatM4A:
		args = append(args, "-c:a", AACEncoder, "-b:a", bitrateFor(AACBitrates, quality))
	default:
		args = append(args, "-codec:a", MP3Encoder, "-b:a", bitrateFor(MP3Bitrates, quality))
	}

	return append(args,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outPath,
	)
}

// BuildM4ATagArgs builds a remux that writes title, artist and album and,
// when coverPath is set, attaches it as the front cover.
func BuildM4ATagArgs(inPath, outPath string, tags Tags, coverPath string) []string {
	args := []string{"-y", "-i", inPath}
	if coverPath != "" {
		args = append(args, "-i", coverPath, "-map", "0:a", "-map", "1:v",
			"-c:v", "copy", "-disposition:v:0", "attached_pic")
	} else {
		args = append(args, "-map", "0:a")
	}
	args = append(args, "-c:a", "copy")

	for _, kv := range [][2]string{{"title", tags.Title}, {"artist", tags.Artist}, {"album", tags.Album}} {
		if kv[1] != "" {
			args = append(args, "-metadata", kv[0]+"="+kv[1])
		}
	}
	return append(args, outPath)
}

func bitrateFor(table map[model.AudioQuality]string, q model.AudioQuality) string {
	if b, ok := table[q]; ok {
		return b
	}
	return table[model.AudioHigh]
}
