package config

import (
	"log/slog"
	"sync"

	"github.com/ytget/ytdx/internal/platform"
)

// Settings is the in-memory preference set. It is built once at startup and
// every setter writes the changed fields back to the store.
type Settings struct {
	store  *Store
	logger *slog.Logger

	mu             sync.RWMutex
	rec            Record
	onFFmpegChange []func(string)
	onChange       []func(Record)
}

// NewSettings loads the record from store. A load error is logged and the
// defaults are used.
func NewSettings(store *Store, logger *slog.Logger) *Settings {
	if logger == nil {
		logger = slog.Default()
	}
	rec, err := store.Load()
	if err != nil {
		logger.Warn("config unreadable, using defaults", "path", store.Path(), "error", err)
	}
	return &Settings{store: store, logger: logger, rec: rec}
}

// Snapshot returns a copy of the current record
func (s *Settings) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec
}

// Update applies fn to the record and persists the result once
func (s *Settings) Update(fn func(*Record)) error {
	s.mu.Lock()
	prev := s.rec
	fn(&s.rec)
	rec := s.rec
	hooks := append([]func(string){}, s.onFFmpegChange...)
	changeHooks := append([]func(Record){}, s.onChange...)
	s.mu.Unlock()

	if rec.FFmpegPath != prev.FFmpegPath {
		for _, h := range hooks {
			h(rec.FFmpegPath)
		}
	}
	for _, h := range changeHooks {
		h(rec)
	}

	if err := s.store.SaveChanges(prev, rec); err != nil {
		s.logger.Error("failed to save settings", "path", s.store.Path(), "error", err)
		return err
	}
	return nil
}

func (s *Settings) set(fn func(*Record)) {
	_ = s.Update(fn)
}

// OnFFmpegPathChange registers a hook called when the ffmpeg override changes
func (s *Settings) OnFFmpegPathChange(fn func(string)) {
	s.mu.Lock()
	s.onFFmpegChange = append(s.onFFmpegChange, fn)
	s.mu.Unlock()
}

// OnChange registers a hook called with the record after every update
func (s *Settings) OnChange(fn func(Record)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.Snapshot().DownloadDir
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp/downloads"
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.set(func(r *Record) { r.DownloadDir = dir })
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	if lang := s.Snapshot().Language; lang != "" {
		return lang
	}
	return DefaultLanguage
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.set(func(r *Record) { r.Language = lang })
}

// GetTheme returns light or dark
func (s *Settings) GetTheme() string {
	if s.Snapshot().Theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// SetTheme sets the theme, anything but dark means light
func (s *Settings) SetTheme(theme string) {
	if theme != ThemeDark {
		theme = ThemeLight
	}
	s.set(func(r *Record) { r.Theme = theme })
}

// GetThemeOptions returns available themes
func (s *Settings) GetThemeOptions() []string {
	return []string{ThemeLight, ThemeDark}
}

// GetFFmpegPath returns the user override, empty when auto-detecting
func (s *Settings) GetFFmpegPath() string {
	return s.Snapshot().FFmpegPath
}

// SetFFmpegPath sets the ffmpeg override
func (s *Settings) SetFFmpegPath(path string) {
	s.set(func(r *Record) { r.FFmpegPath = path })
}

// GetClearCache returns whether cached metadata is dropped before a retry
func (s *Settings) GetClearCache() bool {
	return s.Snapshot().ClearCache
}

// SetClearCache sets the clear-cache preference
func (s *Settings) SetClearCache(clear bool) {
	s.set(func(r *Record) { r.ClearCache = clear })
}

// GetVideoQuality returns the last used resolution cap, 0 for auto
func (s *Settings) GetVideoQuality() int {
	return s.Snapshot().VideoQuality
}

// SetVideoQuality sets the resolution cap
func (s *Settings) SetVideoQuality(height int) {
	s.set(func(r *Record) { r.VideoQuality = height })
}

// GetVideoFormat returns the video container
func (s *Settings) GetVideoFormat() string {
	if f := s.Snapshot().VideoFormat; f != "" {
		return f
	}
	return DefaultVideoFormat
}

// SetVideoFormat sets the video container
func (s *Settings) SetVideoFormat(format string) {
	s.set(func(r *Record) { r.VideoFormat = format })
}

// GetAudioQuality returns the audio tier
func (s *Settings) GetAudioQuality() string {
	if q := s.Snapshot().AudioQuality; q != "" {
		return q
	}
	return DefaultAudioQuality
}

// SetAudioQuality sets the audio tier
func (s *Settings) SetAudioQuality(quality string) {
	s.set(func(r *Record) { r.AudioQuality = quality })
}

// GetAudioFormat returns mp3 or m4a
func (s *Settings) GetAudioFormat() string {
	if f := s.Snapshot().AudioFormat; f != "" {
		return f
	}
	return DefaultAudioFormat
}

// SetAudioFormat sets the audio container
func (s *Settings) SetAudioFormat(format string) {
	s.set(func(r *Record) { r.AudioFormat = format })
}

// GetEmbedCover returns whether cover art is embedded in audio files
func (s *Settings) GetEmbedCover() bool {
	return s.Snapshot().EmbedCover
}

// SetEmbedCover sets the cover art preference
func (s *Settings) SetEmbedCover(embed bool) {
	s.set(func(r *Record) { r.EmbedCover = embed })
}
