package model

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind selects the output family of a job
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// AudioQuality is the audio bitrate tier
type AudioQuality string

const (
	AudioHigh   AudioQuality = "high"
	AudioMedium AudioQuality = "medium"
	AudioLow    AudioQuality = "low"
)

// Format is the output container
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMKV Format = "mkv"
	FormatMP3 Format = "mp3"
	FormatM4A Format = "m4a"
)

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// IsVideo reports whether the format is a video container
func (f Format) IsVideo() bool {
	return f == FormatMP4 || f == FormatMKV
}

// ResolutionAuto lets the selector pick the best available height
const ResolutionAuto = 0

// Resolutions lists the height caps offered to the user, best first
var Resolutions = []int{4320, 2160, 1440, 1080, 720, 480, 360, 240, 144}

// YouTube hosts accepted as job URLs
var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// Job is one download request as submitted by the user
type Job struct {
	ID           string       `json:"id"`
	URL          string       `json:"url" validate:"required,youtube_url"`
	Kind         Kind         `json:"kind" validate:"required,oneof=video audio"`
	Resolution   int          `json:"resolution" validate:"oneof=0 144 240 360 480 720 1080 1440 2160 4320"`
	AudioQuality AudioQuality `json:"audio_quality" validate:"omitempty,oneof=high medium low"`
	Format       Format       `json:"format" validate:"required,oneof=mp4 mkv mp3 m4a"`
	DestDir      string       `json:"dest_dir" validate:"required"`
	Playlist     bool         `json:"playlist"`
	EmbedCover   bool         `json:"embed_cover"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("youtube_url", validateYouTubeURL)
	validate.RegisterStructValidation(validateJobFormat, Job{})
}

// Validate checks field values and that the format fits the job kind
func (j Job) Validate() error {
	if err := validate.Struct(j); err != nil {
		return fmt.Errorf("job %q: %w", j.URL, err)
	}
	return nil
}

// NeedsTool reports whether the job cannot finish without ffmpeg
func (j Job) NeedsTool() bool {
	return j.Kind == KindVideo || j.Format == FormatMP3
}

// Quality returns the audio tier, defaulting to high
func (j Job) Quality() AudioQuality {
	if j.AudioQuality == "" {
		return AudioHigh
	}
	return j.AudioQuality
}

// IsPlaylistURL reports whether the URL carries a playlist id
func IsPlaylistURL(raw string) bool {
	return PlaylistID(raw) != ""
}

// PlaylistID returns the list= query parameter of a YouTube URL
func PlaylistID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Query().Get("list")
}

func validateYouTubeURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return youtubeHosts[strings.ToLower(u.Hostname())]
}

func validateJobFormat(sl validator.StructLevel) {
	j := sl.Current().Interface().(Job)
	switch j.Kind {
	case KindVideo:
		if !j.Format.IsVideo() {
			sl.ReportError(j.Format, "Format", "Format", "video_format", string(j.Format))
		}
	case KindAudio:
		if j.Format.IsVideo() {
			sl.ReportError(j.Format, "Format", "Format", "audio_format", string(j.Format))
		}
	}
}
