package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytdx/internal/config"
	"github.com/ytget/ytdx/internal/errs"
	"github.com/ytget/ytdx/internal/model"
	"github.com/ytget/ytdx/internal/tools"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestJobFromFlags(t *testing.T) {
	rec := config.Defaults()
	rec.VideoQuality = 720
	rec.EmbedCover = true

	tests := []struct {
		name    string
		flags   downloadFlags
		wantErr bool
		check   func(t *testing.T, job model.Job)
	}{
		{
			name:  "video defaults from settings",
			flags: downloadFlags{},
			check: func(t *testing.T, job model.Job) {
				assert.Equal(t, model.KindVideo, job.Kind)
				assert.Equal(t, 720, job.Resolution)
				assert.Equal(t, model.FormatMP4, job.Format)
				assert.Equal(t, "/downloads", job.DestDir)
			},
		},
		{
			name:  "video flags win",
			flags: downloadFlags{quality: "1080p", format: "mkv", out: "/elsewhere", playlist: true},
			check: func(t *testing.T, job model.Job) {
				assert.Equal(t, 1080, job.Resolution)
				assert.Equal(t, model.FormatMKV, job.Format)
				assert.Equal(t, "/elsewhere", job.DestDir)
				assert.True(t, job.Playlist)
			},
		},
		{
			name:  "auto quality",
			flags: downloadFlags{quality: "Auto"},
			check: func(t *testing.T, job model.Job) {
				assert.Equal(t, model.ResolutionAuto, job.Resolution)
			},
		},
		{
			name:  "audio",
			flags: downloadFlags{audio: true, quality: "LOW", noCover: true},
			check: func(t *testing.T, job model.Job) {
				assert.Equal(t, model.KindAudio, job.Kind)
				assert.Equal(t, model.AudioLow, job.AudioQuality)
				assert.Equal(t, model.FormatMP3, job.Format)
				assert.False(t, job.EmbedCover)
			},
		},
		{name: "unsupported height", flags: downloadFlags{quality: "1000"}, wantErr: true},
		{name: "garbage quality", flags: downloadFlags{quality: "hd"}, wantErr: true},
		{name: "audio format on video", flags: downloadFlags{format: "mp3"}, wantErr: true},
		{name: "bad audio tier", flags: downloadFlags{audio: true, quality: "ultra"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := jobFromFlags(" "+testURL+" ", tt.flags, rec, "/downloads")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testURL, job.URL)
			tt.check(t, job)
		})
	}
}

func TestJobFromFlags_RejectsForeignURL(t *testing.T) {
	_, err := jobFromFlags("https://example.com/v", downloadFlags{}, config.Defaults(), "/downloads")
	assert.Error(t, err)
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	p.print(model.Event{Item: 0, Total: 2, Percent: 0, Phase: model.PhaseDiscovering})
	p.print(model.Event{Item: 0, Total: 2, Percent: 12, Phase: model.PhaseDownloadingVideo, Title: "First"})
	p.print(model.Event{Item: 0, Total: 2, Percent: 15, Phase: model.PhaseDownloadingVideo})
	p.print(model.Event{Item: 0, Total: 2, Percent: 21, Phase: model.PhaseDownloadingVideo})
	p.print(model.Event{Item: 0, Total: 2, Percent: 100, Phase: model.PhaseDone,
		Outcome: &model.Outcome{Status: model.StatusDegraded, OutputPath: "/d/First.mp4", Warnings: []string{"requested 8K"}}})
	p.print(model.Event{Item: 1, Total: 2, Percent: 3, Phase: model.PhaseFailed,
		Outcome: &model.Outcome{Status: model.StatusFailed, Err: errors.New("no streams")}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "[1/2]   0% discovering", lines[0])
	assert.Equal(t, "[1/2]  12% downloading-video First", lines[1])
	assert.Equal(t, "[1/2]  21% downloading-video", lines[2])
	assert.Equal(t, "[1/2] saved /d/First.mp4 with warnings", lines[3])
	assert.Equal(t, "[1/2]   warning: requested 8K", lines[4])
	assert.Equal(t, "[2/2] failed: no streams", lines[5])
}

func TestPrintRecord(t *testing.T) {
	var buf bytes.Buffer
	printRecord(&buf, config.Defaults())

	out := buf.String()
	assert.Contains(t, out, "language:      en")
	assert.Contains(t, out, "audio_format:  mp3")
	assert.Equal(t, 11, strings.Count(out, "\n"))
}

func TestPrintTool_MissingOverride(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "ffmpeg")
	locator := tools.NewLocator(missing, nil)

	var buf bytes.Buffer
	err := printTool(context.Background(), &buf, locator, missing)
	assert.ErrorIs(t, err, errs.ErrToolNotFound)
	assert.Contains(t, buf.String(), "override: "+missing)
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"language": "es"}`), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", path, "config"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "file: "+path)
	assert.Contains(t, out.String(), "language:      es")
}
