package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/ytget/ytdx/internal/errs"
	"github.com/ytget/ytdx/internal/platform"
)

// Record keys as they appear in config.json
const (
	KeyLanguage     = "language"
	KeyTheme        = "theme"
	KeyDownloadDir  = "download_dir"
	KeyFFmpegPath   = "ffmpeg_path"
	KeyClearCache   = "clear_cache"
	KeyVideoQuality = "video_quality"
	KeyVideoFormat  = "video_format"
	KeyAudioQuality = "audio_quality"
	KeyAudioFormat  = "audio_format"
	KeyEmbedCover   = "embed_cover"
	KeyLogLevel     = "log_level"
)

// Default values
const (
	DefaultLanguage     = "en"
	DefaultTheme        = ThemeLight
	DefaultVideoQuality = 0
	DefaultVideoFormat  = "mp4"
	DefaultAudioQuality = "high"
	DefaultAudioFormat  = "mp3"
	DefaultEmbedCover   = true
	DefaultLogLevel     = "info"
	ConfigFileName      = "config.json"
	ConfigType          = "json"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Record is the persisted preference set
type Record struct {
	Language     string `mapstructure:"language"`
	Theme        string `mapstructure:"theme"`
	DownloadDir  string `mapstructure:"download_dir"`
	FFmpegPath   string `mapstructure:"ffmpeg_path"`
	ClearCache   bool   `mapstructure:"clear_cache"`
	VideoQuality int    `mapstructure:"video_quality"`
	VideoFormat  string `mapstructure:"video_format"`
	AudioQuality string `mapstructure:"audio_quality"`
	AudioFormat  string `mapstructure:"audio_format"`
	EmbedCover   bool   `mapstructure:"embed_cover"`
	LogLevel     string `mapstructure:"log_level"`
}

// Defaults returns a record with every field at its default
func Defaults() Record {
	return Record{
		Language:     DefaultLanguage,
		Theme:        DefaultTheme,
		VideoQuality: DefaultVideoQuality,
		VideoFormat:  DefaultVideoFormat,
		AudioQuality: DefaultAudioQuality,
		AudioFormat:  DefaultAudioFormat,
		EmbedCover:   DefaultEmbedCover,
		LogLevel:     DefaultLogLevel,
	}
}

// SetDefaults registers record defaults on a viper instance
func SetDefaults(v *viper.Viper) {
	for k, val := range Defaults().values() {
		v.SetDefault(k, val)
	}
}

func (r Record) values() map[string]any {
	return map[string]any{
		KeyLanguage:     r.Language,
		KeyTheme:        r.Theme,
		KeyDownloadDir:  r.DownloadDir,
		KeyFFmpegPath:   r.FFmpegPath,
		KeyClearCache:   r.ClearCache,
		KeyVideoQuality: r.VideoQuality,
		KeyVideoFormat:  r.VideoFormat,
		KeyAudioQuality: r.AudioQuality,
		KeyAudioFormat:  r.AudioFormat,
		KeyEmbedCover:   r.EmbedCover,
		KeyLogLevel:     r.LogLevel,
	}
}

// Store reads and writes the configuration file
type Store struct {
	path      string
	envPrefix string
	mu        sync.Mutex
}

// NewStore creates a store backed by the file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns <user config dir>/ytdx/config.json
func DefaultPath() (string, error) {
	dir, err := platform.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// BindEnv lets PREFIX_<KEY> environment variables override file values on Load
func (s *Store) BindEnv(prefix string) {
	s.mu.Lock()
	s.envPrefix = prefix
	s.mu.Unlock()
}

// Load reads the record. A missing file yields defaults and no error.
// A malformed file yields defaults and an ErrConfig error.
func (s *Store) Load() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(true)
}

func (s *Store) read(withEnv bool) (Record, error) {
	v := s.newViper(withEnv)
	v.SetConfigFile(s.path)

	var loadErr error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			loadErr = errs.Wrap(errs.ErrConfig, "read "+s.path, err)
			v = s.newViper(withEnv)
		}
	}

	rec := Defaults()
	if err := v.Unmarshal(&rec); err != nil {
		return Defaults(), errs.Wrap(errs.ErrConfig, "decode "+s.path, err)
	}
	return rec, loadErr
}

func (s *Store) newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType(ConfigType)
	if withEnv && s.envPrefix != "" {
		v.SetEnvPrefix(s.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()
	}
	return v
}

// Save overwrites the file with rec
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(rec.values())
}

// SaveChanges writes the fields that differ between before and after on top
// of the file's own values. Environment overrides nobody changed stay out of
// the file.
func (s *Store) SaveChanges(before, after Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, _ := s.read(false)
	values := file.values()
	prev := before.values()
	for k, v := range after.values() {
		if v != prev[k] {
			values[k] = v
		}
	}
	return s.write(values)
}

func (s *Store) write(values map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errs.Wrap(errs.ErrConfig, "create config dir", err)
	}

	v := viper.New()
	v.SetConfigType(ConfigType)
	for k, val := range values {
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return errs.Wrap(errs.ErrConfig, "write "+s.path, err)
	}
	return nil
}
