package download

import (
	"sort"

	"github.com/ytget/ytdx/internal/errs"
	"github.com/ytget/ytdx/internal/model"
)

// Audio tier ceilings in bits per second. Zero means no ceiling.
var audioCeilings = map[model.AudioQuality]int{
	model.AudioHigh:   0,
	model.AudioMedium: 160_000,
	model.AudioLow:    96_000,
}

// Codec family ranks, higher wins on equal height
var codecRanks = map[string]int{
	"vp9":  2,
	"vp09": 2,
	"av01": 2,
	"avc1": 1,
}

// VideoChoice is the outcome of video stream selection
type VideoChoice struct {
	Video model.StreamDescriptor
	// Audio is nil when Video is progressive
	Audio       *model.StreamDescriptor
	Progressive bool
	// Fallback is set when the requested height was not available
	Fallback bool
}

func codecRank(codec string) int {
	return codecRanks[codec]
}

// betterVideo orders streams of the same height
func betterVideo(a, b model.StreamDescriptor) bool {
	if ra, rb := codecRank(a.Codec), codecRank(b.Codec); ra != rb {
		return ra > rb
	}
	if a.FPS != b.FPS {
		return a.FPS > b.FPS
	}
	if a.Bitrate != b.Bitrate {
		return a.Bitrate > b.Bitrate
	}
	if a.Size != b.Size {
		return a.Size > b.Size
	}
	return a.Itag < b.Itag
}

// SelectVideo picks the video stream(s) for a height cap. capHeight 0 means
// best available.
func SelectVideo(streams []model.StreamDescriptor, capHeight int, format model.Format) (VideoChoice, error) {
	var adaptive, progressive []model.StreamDescriptor
	for _, s := range streams {
		if !s.HasVideo() || s.Height <= 0 {
			continue
		}
		if s.Kind == model.StreamProgressive {
			progressive = append(progressive, s)
		} else {
			adaptive = append(adaptive, s)
		}
	}
	if len(adaptive) == 0 && len(progressive) == 0 {
		return VideoChoice{}, errs.New(errs.ErrNoStreams, "select video")
	}

	audio, audioErr := SelectAudio(audioOnly(streams), model.AudioHigh, audioSourceFormat(format))
	useAdaptive := len(adaptive) > 0 && audioErr == nil
	if !useAdaptive && len(progressive) == 0 {
		// Video-only streams with nothing to merge them with
		return VideoChoice{}, errs.New(errs.ErrNoStreams, "select video: no audio stream to merge")
	}

	pool := progressive
	if useAdaptive {
		pool = adaptive
	}
	height := targetHeight(pool, capHeight)

	best := bestAtHeight(pool, height)
	choice := VideoChoice{
		Video:    best,
		Fallback: capHeight > 0 && height != capHeight,
	}

	if !useAdaptive {
		choice.Progressive = true
		return choice, nil
	}

	// A progressive stream that already matches exactly saves a merge
	if capHeight > 0 && height == capHeight {
		for _, p := range sortedVideo(progressive) {
			if p.Height == capHeight && p.Container == string(format) && codecRank(p.Codec) >= codecRank(best.Codec) {
				return VideoChoice{Video: p, Progressive: true}, nil
			}
		}
	}

	choice.Audio = &audio
	return choice, nil
}

// targetHeight is the highest height at or below capHeight, or the lowest
// height when nothing fits under the cap
func targetHeight(pool []model.StreamDescriptor, capHeight int) int {
	best, lowest := 0, 0
	for _, s := range pool {
		if lowest == 0 || s.Height < lowest {
			lowest = s.Height
		}
		if (capHeight == 0 || s.Height <= capHeight) && s.Height > best {
			best = s.Height
		}
	}
	if best == 0 {
		return lowest
	}
	return best
}

func bestAtHeight(pool []model.StreamDescriptor, height int) model.StreamDescriptor {
	var best model.StreamDescriptor
	found := false
	for _, s := range pool {
		if s.Height != height {
			continue
		}
		if !found || betterVideo(s, best) {
			best = s
			found = true
		}
	}
	return best
}

func sortedVideo(streams []model.StreamDescriptor) []model.StreamDescriptor {
	out := append([]model.StreamDescriptor(nil), streams...)
	sort.SliceStable(out, func(i, j int) bool { return betterVideo(out[i], out[j]) })
	return out
}

func audioOnly(streams []model.StreamDescriptor) []model.StreamDescriptor {
	var out []model.StreamDescriptor
	for _, s := range streams {
		if s.Kind == model.StreamAudioOnly {
			out = append(out, s)
		}
	}
	return out
}

// audioSourceFormat maps a video container to the audio container that
// muxes into it without re-encoding
func audioSourceFormat(format model.Format) model.Format {
	if format == model.FormatMP4 {
		return model.FormatM4A
	}
	return format
}

// preferredContainer is the raw container that matches an output format
func preferredContainer(format model.Format) string {
	switch format {
	case model.FormatM4A, model.FormatMP4:
		return "mp4"
	case model.FormatMKV:
		return "webm"
	}
	return ""
}

// SelectAudio picks the best audio stream within a quality tier. Audio-only
// streams are preferred; progressive streams are used when none exist.
func SelectAudio(streams []model.StreamDescriptor, quality model.AudioQuality, format model.Format) (model.StreamDescriptor, error) {
	var pool []model.StreamDescriptor
	for _, s := range streams {
		if s.Kind == model.StreamAudioOnly {
			pool = append(pool, s)
		}
	}
	if len(pool) == 0 {
		for _, s := range streams {
			if s.HasAudio() {
				pool = append(pool, s)
			}
		}
	}
	if len(pool) == 0 {
		return model.StreamDescriptor{}, errs.New(errs.ErrNoStreams, "select audio")
	}

	ceiling := audioCeilings[quality]
	container := preferredContainer(format)

	better := func(a, b model.StreamDescriptor) bool {
		if a.Bitrate != b.Bitrate {
			return a.Bitrate > b.Bitrate
		}
		if am, bm := a.Container == container, b.Container == container; am != bm {
			return am
		}
		return a.Itag < b.Itag
	}

	var best model.StreamDescriptor
	found := false
	for _, s := range pool {
		if ceiling > 0 && s.Bitrate > ceiling {
			continue
		}
		if !found || better(s, best) {
			best = s
			found = true
		}
	}
	if found {
		return best, nil
	}

	// Nothing under the ceiling: take the smallest
	lowest := pool[0]
	for _, s := range pool[1:] {
		if s.Bitrate < lowest.Bitrate || (s.Bitrate == lowest.Bitrate && better(s, lowest)) {
			lowest = s
		}
	}
	return lowest, nil
}
