package ui

import (
	"errors"
	"testing"

	"github.com/ytget/ytdx/internal/i18n"
	"github.com/ytget/ytdx/internal/model"
)

func testLocalization(lang string) *Localization {
	return NewLocalization(i18n.Default(nil), lang)
}

func TestBuildJob(t *testing.T) {
	const dest = "/tmp/out"
	const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	tests := []struct {
		name    string
		form    JobForm
		destDir string
		wantErr error
		check   func(t *testing.T, job model.Job)
	}{
		{
			name:    "empty url",
			form:    JobForm{Kind: model.KindVideo, URL: "  \n", Format: model.FormatMP4},
			destDir: dest,
			wantErr: errMissingURL,
		},
		{
			name:    "no destination",
			form:    JobForm{Kind: model.KindVideo, URL: videoURL, Format: model.FormatMP4},
			destDir: " ",
			wantErr: errMissingLocation,
		},
		{
			name:    "not youtube",
			form:    JobForm{Kind: model.KindVideo, URL: "https://vimeo.com/123", Format: model.FormatMP4},
			destDir: dest,
			wantErr: errInvalidURL,
		},
		{
			name:    "pasted whitespace is stripped",
			form:    JobForm{Kind: model.KindVideo, URL: "\t" + videoURL + "\r\n", Resolution: 1080, Format: model.FormatMKV},
			destDir: dest,
			check: func(t *testing.T, job model.Job) {
				if job.URL != videoURL {
					t.Errorf("URL = %q, expected %q", job.URL, videoURL)
				}
				if job.Resolution != 1080 || job.Format != model.FormatMKV {
					t.Errorf("BuildJob() = %+v, expected 1080p mkv", job)
				}
			},
		},
		{
			name: "audio keeps quality and cover",
			form: JobForm{Kind: model.KindAudio, URL: videoURL, Resolution: 720, AudioQuality: model.AudioLow,
				Format: model.FormatMP3, EmbedCover: true, Playlist: true},
			destDir: dest,
			check: func(t *testing.T, job model.Job) {
				if job.Resolution != 0 {
					t.Errorf("Resolution = %d, expected 0 for audio", job.Resolution)
				}
				if job.AudioQuality != model.AudioLow || !job.EmbedCover || !job.Playlist {
					t.Errorf("BuildJob() = %+v, expected low quality with cover and playlist", job)
				}
			},
		},
		{
			name:    "video drops cover",
			form:    JobForm{Kind: model.KindVideo, URL: videoURL, Format: model.FormatMP4, EmbedCover: true},
			destDir: dest,
			check: func(t *testing.T, job model.Job) {
				if job.EmbedCover {
					t.Error("EmbedCover should be false for video jobs")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := BuildJob(tt.form, tt.destDir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("BuildJob() error = %v, expected %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildJob() unexpected error = %v", err)
			}
			if job.DestDir != tt.destDir {
				t.Errorf("DestDir = %q, expected %q", job.DestDir, tt.destDir)
			}
			tt.check(t, job)
		})
	}
}

func TestBuildJob_FormatMismatchIsNotURLError(t *testing.T) {
	_, err := BuildJob(JobForm{
		Kind:   model.KindVideo,
		URL:    "https://youtu.be/dQw4w9WgXcQ",
		Format: model.FormatMP3,
	}, "/tmp/out")
	if err == nil {
		t.Fatal("BuildJob() expected error for mp3 video job")
	}
	if errors.Is(err, errInvalidURL) {
		t.Errorf("BuildJob() error = %v, expected a format error", err)
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		label    string
		expected int
	}{
		{"1080p", 1080},
		{"4320p", 4320},
		{"144p", 144},
		{"Auto (best)", model.ResolutionAuto},
		{"999p", model.ResolutionAuto},
		{"", model.ResolutionAuto},
	}

	for _, tt := range tests {
		if got := parseResolution(tt.label); got != tt.expected {
			t.Errorf("parseResolution(%q) = %d, expected %d", tt.label, got, tt.expected)
		}
	}

	for _, h := range model.Resolutions {
		if got := parseResolution(resolutionLabel(h)); got != h {
			t.Errorf("parseResolution(resolutionLabel(%d)) = %d", h, got)
		}
	}
}

func TestResolutionOptions(t *testing.T) {
	l := testLocalization("en")
	options := resolutionOptions(l)

	if len(options) != len(model.Resolutions)+1 {
		t.Fatalf("resolutionOptions() len = %d, expected %d", len(options), len(model.Resolutions)+1)
	}
	if options[0] != "Auto (best)" {
		t.Errorf("options[0] = %q, expected Auto first", options[0])
	}
}

func TestQualityLabels(t *testing.T) {
	for _, lang := range []string{"en", "tr", "es", "ru"} {
		l := testLocalization(lang)
		for _, q := range []model.AudioQuality{model.AudioHigh, model.AudioMedium, model.AudioLow} {
			if got := parseQuality(l, qualityLabel(l, q)); got != q {
				t.Errorf("%s: parseQuality(qualityLabel(%s)) = %s", lang, q, got)
			}
		}
		if got := parseQuality(l, "unknown"); got != model.AudioHigh {
			t.Errorf("%s: parseQuality(unknown) = %s, expected high", lang, got)
		}
	}
}

func TestErrorText(t *testing.T) {
	l := testLocalization("en")

	tests := []struct {
		err      error
		expected string
	}{
		{errMissingURL, "Please enter a URL"},
		{errInvalidURL, "Not a YouTube URL"},
		{errMissingLocation, "Please choose a download folder"},
		{errJobRunning, "A download is already running"},
		{errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		if got := errorText(l, tt.err); got != tt.expected {
			t.Errorf("errorText(%v) = %q, expected %q", tt.err, got, tt.expected)
		}
	}
}
