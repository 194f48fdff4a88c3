package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ytget/ytdx/internal/i18n"
	"github.com/ytget/ytdx/internal/model"
)

// Form validation errors, each shown with its own localized message
var (
	errMissingURL      = errors.New("missing url")
	errInvalidURL      = errors.New("invalid url")
	errMissingLocation = errors.New("missing download location")
	errJobRunning      = errors.New("a job is already running")
)

// JobForm holds the raw values of a Video or Audio tab
type JobForm struct {
	Kind         model.Kind
	URL          string
	Resolution   int
	AudioQuality model.AudioQuality
	Format       model.Format
	Playlist     bool
	EmbedCover   bool
}

// BuildJob validates the form and turns it into a job for destDir
func BuildJob(form JobForm, destDir string) (model.Job, error) {
	url := cleanURL(form.URL)
	if url == "" {
		return model.Job{}, errMissingURL
	}
	destDir = strings.TrimSpace(destDir)
	if destDir == "" {
		return model.Job{}, errMissingLocation
	}

	job := model.Job{
		URL:      url,
		Kind:     form.Kind,
		Format:   form.Format,
		DestDir:  destDir,
		Playlist: form.Playlist,
	}
	switch form.Kind {
	case model.KindVideo:
		job.Resolution = form.Resolution
	case model.KindAudio:
		job.AudioQuality = form.AudioQuality
		job.EmbedCover = form.EmbedCover
	}

	if err := job.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "URL" {
					return model.Job{}, errInvalidURL
				}
			}
		}
		return model.Job{}, err
	}
	return job, nil
}

// cleanURL strips whitespace pasted along with a URL
func cleanURL(raw string) string {
	s := strings.ReplaceAll(raw, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}

// errorText returns the localized message for a form error
func errorText(l *Localization, err error) string {
	switch {
	case errors.Is(err, errMissingURL):
		return l.GetText(i18n.KeyMissingURL)
	case errors.Is(err, errInvalidURL):
		return l.GetText(i18n.KeyInvalidURL)
	case errors.Is(err, errMissingLocation):
		return l.GetText(i18n.KeyMissingLocation)
	case errors.Is(err, errJobRunning):
		return l.GetText(i18n.KeyJobRunning)
	default:
		return err.Error()
	}
}

// resolutionOptions lists Auto followed by every height cap
func resolutionOptions(l *Localization) []string {
	options := []string{l.GetText(i18n.KeyAuto)}
	for _, h := range model.Resolutions {
		options = append(options, resolutionLabel(h))
	}
	return options
}

func resolutionLabel(height int) string {
	return fmt.Sprintf(ResolutionFormat, height)
}

// parseResolution maps a select label back to a height, Auto and unknown
// labels give ResolutionAuto
func parseResolution(label string) int {
	var height int
	if _, err := fmt.Sscanf(label, ResolutionFormat, &height); err != nil {
		return model.ResolutionAuto
	}
	for _, h := range model.Resolutions {
		if h == height {
			return h
		}
	}
	return model.ResolutionAuto
}

var qualityKeys = []struct {
	quality model.AudioQuality
	key     string
}{
	{model.AudioHigh, i18n.KeyHighQuality},
	{model.AudioMedium, i18n.KeyMediumQuality},
	{model.AudioLow, i18n.KeyLowQuality},
}

// qualityOptions lists the localized audio tiers, best first
func qualityOptions(l *Localization) []string {
	options := make([]string, 0, len(qualityKeys))
	for _, q := range qualityKeys {
		options = append(options, l.GetText(q.key))
	}
	return options
}

func qualityLabel(l *Localization, quality model.AudioQuality) string {
	for _, q := range qualityKeys {
		if q.quality == quality {
			return l.GetText(q.key)
		}
	}
	return l.GetText(i18n.KeyHighQuality)
}

func parseQuality(l *Localization, label string) model.AudioQuality {
	for _, q := range qualityKeys {
		if l.GetText(q.key) == label {
			return q.quality
		}
	}
	return model.AudioHigh
}
