package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJob() Job {
	return Job{
		URL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Kind:    KindVideo,
		Format:  FormatMP4,
		DestDir: "/tmp/out",
	}
}

func TestJobValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Job)
		wantErr bool
	}{
		{"valid video", func(j *Job) {}, false},
		{"valid short link", func(j *Job) { j.URL = "https://youtu.be/dQw4w9WgXcQ" }, false},
		{"valid audio", func(j *Job) { j.Kind = KindAudio; j.Format = FormatMP3; j.AudioQuality = AudioLow }, false},
		{"missing url", func(j *Job) { j.URL = "" }, true},
		{"foreign host", func(j *Job) { j.URL = "https://vimeo.com/123" }, true},
		{"bad scheme", func(j *Job) { j.URL = "ftp://youtube.com/watch?v=x" }, true},
		{"odd resolution", func(j *Job) { j.Resolution = 1000 }, true},
		{"audio format on video", func(j *Job) { j.Format = FormatMP3 }, true},
		{"video format on audio", func(j *Job) { j.Kind = KindAudio; j.Format = FormatMKV }, true},
		{"unknown tier", func(j *Job) { j.Kind = KindAudio; j.Format = FormatM4A; j.AudioQuality = "ultra" }, true},
		{"no destination", func(j *Job) { j.DestDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := validJob()
			tt.mutate(&j)
			err := j.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJobNeedsTool(t *testing.T) {
	j := validJob()
	assert.True(t, j.NeedsTool())

	j.Kind, j.Format = KindAudio, FormatMP3
	assert.True(t, j.NeedsTool())

	j.Format = FormatM4A
	assert.False(t, j.NeedsTool())
}

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.youtube.com/playlist?list=PL123", "PL123"},
		{"https://www.youtube.com/watch?v=abc&list=PL456&index=2", "PL456"},
		{"https://www.youtube.com/watch?v=abc", ""},
		{"::not a url", ""},
	}

	for _, test := range tests {
		if got := PlaylistID(test.url); got != test.expected {
			t.Errorf("PlaylistID(%s) = %s, expected %s", test.url, got, test.expected)
		}
	}
	assert.True(t, IsPlaylistURL("https://youtube.com/playlist?list=PL1"))
}

func TestSummaryCounts(t *testing.T) {
	var s Summary
	s.Add(Outcome{Status: StatusSucceeded})
	s.Add(Outcome{Status: StatusDegraded})
	s.Add(Outcome{Status: StatusFailed})
	s.Add(Outcome{Status: StatusFailed})

	require.Len(t, s.Outcomes, 4)
	assert.Equal(t, 2, s.Count(StatusFailed))
	assert.False(t, s.Failed())
	assert.Equal(t, "1 succeeded, 1 degraded, 2 failed", s.String())

	assert.True(t, Summary{}.Failed())
	assert.Equal(t, "nothing downloaded", Summary{}.String())
}
