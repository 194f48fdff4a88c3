package config

import (
	"path/filepath"
	"testing"
)

func newTestSettings(t *testing.T) (*Settings, *Store) {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), ConfigFileName))
	return NewSettings(store, nil), store
}

func TestDownloadDirectory(t *testing.T) {
	settings, _ := newTestSettings(t)

	// Test default value
	dir := settings.GetDownloadDirectory()
	if dir == "" {
		t.Error("Download directory should not be empty")
	}

	customDir := "/custom/downloads"
	settings.SetDownloadDirectory(customDir)

	if got := settings.GetDownloadDirectory(); got != customDir {
		t.Errorf("Expected download directory %s, got %s", customDir, got)
	}
}

func TestSettingsPersistEveryChange(t *testing.T) {
	settings, store := newTestSettings(t)

	settings.SetLanguage("tr")
	settings.SetTheme(ThemeDark)
	settings.SetAudioFormat("m4a")
	settings.SetClearCache(true)

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec.Language != "tr" || rec.Theme != ThemeDark || rec.AudioFormat != "m4a" || !rec.ClearCache {
		t.Errorf("Persisted record mismatch: %+v", rec)
	}

	reloaded := NewSettings(store, nil)
	if reloaded.GetLanguage() != "tr" {
		t.Errorf("Expected language tr after reload, got %s", reloaded.GetLanguage())
	}
}

func TestThemeFallsBackToLight(t *testing.T) {
	settings, _ := newTestSettings(t)

	settings.SetTheme("neon")
	if got := settings.GetTheme(); got != ThemeLight {
		t.Errorf("Expected theme %s, got %s", ThemeLight, got)
	}
}

func TestFFmpegPathHook(t *testing.T) {
	settings, _ := newTestSettings(t)

	var calls []string
	settings.OnFFmpegPathChange(func(p string) { calls = append(calls, p) })

	settings.SetFFmpegPath("/usr/local/bin/ffmpeg")
	settings.SetFFmpegPath("/usr/local/bin/ffmpeg")
	settings.SetFFmpegPath("")

	if len(calls) != 2 || calls[0] != "/usr/local/bin/ffmpeg" || calls[1] != "" {
		t.Errorf("Unexpected hook calls: %q", calls)
	}
}

func TestOnChangeSeesEveryUpdate(t *testing.T) {
	settings, _ := newTestSettings(t)

	var seen []bool
	settings.OnChange(func(r Record) { seen = append(seen, r.ClearCache) })

	settings.SetClearCache(true)
	settings.SetLanguage("es")
	settings.SetClearCache(false)

	if len(seen) != 3 || !seen[0] || !seen[1] || seen[2] {
		t.Errorf("Unexpected hook values: %v", seen)
	}
}

func TestDefaults(t *testing.T) {
	settings, _ := newTestSettings(t)

	if settings.GetLanguage() != DefaultLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultLanguage, settings.GetLanguage())
	}
	if settings.GetAudioQuality() != DefaultAudioQuality {
		t.Errorf("Expected default audio quality %s, got %s", DefaultAudioQuality, settings.GetAudioQuality())
	}
	if !settings.GetEmbedCover() {
		t.Error("Cover embedding should default to on")
	}
	if settings.GetVideoQuality() != 0 {
		t.Errorf("Expected auto video quality, got %d", settings.GetVideoQuality())
	}
}

func TestEnvOverridesStayOutOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := NewStore(path).Save(Record{Language: "es", Theme: ThemeLight, AudioFormat: "mp3"}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("YTDX_LANGUAGE", "ru")
	t.Setenv("YTDX_DOWNLOAD_DIR", "/from/env")

	store := NewStore(path)
	store.BindEnv("YTDX")
	settings := NewSettings(store, nil)
	if got := settings.GetLanguage(); got != "ru" {
		t.Fatalf("GetLanguage() = %v, expected %v", got, "ru")
	}

	settings.SetTheme(ThemeDark)

	file, err := NewStore(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if file.Language != "es" {
		t.Errorf("file language = %v, expected %v", file.Language, "es")
	}
	if file.DownloadDir != "" {
		t.Errorf("file download_dir = %v, expected it unset", file.DownloadDir)
	}
	if file.Theme != ThemeDark {
		t.Errorf("file theme = %v, expected %v", file.Theme, ThemeDark)
	}

	// An explicit change to an overridden key is saved
	settings.SetLanguage("tr")
	file, _ = NewStore(path).Load()
	if file.Language != "tr" {
		t.Errorf("file language = %v, expected %v", file.Language, "tr")
	}
}
