package ui

import (
	"context"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytdx/internal/config"
	"github.com/ytget/ytdx/internal/i18n"
	"github.com/ytget/ytdx/internal/platform"
)

// ToolProber checks an ffmpeg override without applying it
type ToolProber interface {
	Probe(ctx context.Context, override string) (path, version string, err error)
}

// SettingsTab edits the persisted preferences
type SettingsTab struct {
	settings     *config.Settings
	localization *Localization
	prober       ToolProber
	window       fyne.Window
	logger       *slog.Logger

	// UI components
	content          *fyne.Container
	languageLabel    *widget.Label
	languageSelect   *widget.Select
	themeLabel       *widget.Label
	themeRadio       *widget.RadioGroup
	dirLabel         *widget.Label
	downloadDirEntry *widget.Entry
	browseBtn        *widget.Button
	ffmpegLabel      *widget.Label
	ffmpegEntry      *widget.Entry
	detectBtn        *widget.Button
	ffmpegStatus     *widget.Label
	clearCacheCheck  *widget.Check
	saveBtn          *widget.Button

	// display label -> code
	languageCodes map[string]string
	themeCodes    map[string]string

	onSaved func(before, after config.Record)
}

var themeKeys = map[string]string{
	config.ThemeLight: i18n.KeyLightTheme,
	config.ThemeDark:  i18n.KeyDarkTheme,
}

// NewSettingsTab creates the settings tab
func NewSettingsTab(settings *config.Settings, localization *Localization, prober ToolProber, window fyne.Window, logger *slog.Logger) *SettingsTab {
	if logger == nil {
		logger = slog.Default()
	}
	st := &SettingsTab{
		settings:     settings,
		localization: localization,
		prober:       prober,
		window:       window,
		logger:       logger,
	}
	st.createUI()
	st.RefreshTexts()
	st.Load()
	return st
}

// SetOnSaved sets the callback run after a successful save
func (st *SettingsTab) SetOnSaved(fn func(before, after config.Record)) {
	st.onSaved = fn
}

// GetContainer returns the tab content
func (st *SettingsTab) GetContainer() fyne.CanvasObject {
	return st.content
}

func (st *SettingsTab) createUI() {
	st.languageLabel = widget.NewLabel("")
	st.languageSelect = widget.NewSelect(nil, nil)

	st.themeLabel = widget.NewLabel("")
	st.themeRadio = widget.NewRadioGroup(nil, nil)
	st.themeRadio.Horizontal = true

	st.dirLabel = widget.NewLabel("")
	st.downloadDirEntry = widget.NewEntry()
	st.browseBtn = widget.NewButton("", st.onBrowseDirectory)
	dirRow := container.NewBorder(nil, nil, nil, st.browseBtn, st.downloadDirEntry)

	st.ffmpegLabel = widget.NewLabel("")
	st.ffmpegEntry = widget.NewEntry()
	st.detectBtn = widget.NewButton("", st.onDetect)
	ffmpegRow := container.NewBorder(nil, nil, nil, st.detectBtn, st.ffmpegEntry)
	st.ffmpegStatus = widget.NewLabel("")
	st.ffmpegStatus.Wrapping = fyne.TextWrapWord

	st.clearCacheCheck = widget.NewCheck("", nil)

	st.saveBtn = widget.NewButton("", func() { _ = st.Save() })
	st.saveBtn.Importance = widget.HighImportance

	st.content = container.NewVBox(
		st.languageLabel,
		st.languageSelect,
		st.themeLabel,
		st.themeRadio,
		widget.NewSeparator(),
		st.dirLabel,
		dirRow,
		st.ffmpegLabel,
		ffmpegRow,
		st.ffmpegStatus,
		st.clearCacheCheck,
		widget.NewSeparator(),
		container.NewHBox(st.saveBtn),
	)
}

// RefreshTexts re-reads labels and option captions after a language change
func (st *SettingsTab) RefreshTexts() {
	l := st.localization
	st.languageLabel.SetText(l.GetText(i18n.KeyLanguage))
	st.themeLabel.SetText(l.GetText(i18n.KeyTheme))
	st.dirLabel.SetText(l.GetText(i18n.KeyDownloadLocation))
	st.browseBtn.SetText(IconFolder + " " + l.GetText(i18n.KeySelectFolder))
	st.ffmpegLabel.SetText(l.GetText(i18n.KeyFFmpegPath))
	st.detectBtn.SetText(l.GetText(i18n.KeyFFmpegDetect))
	st.clearCacheCheck.Text = l.GetText(i18n.KeyClearCache)
	st.clearCacheCheck.Refresh()
	st.saveBtn.SetText(l.GetText(i18n.KeySave))

	selectedLang := st.languageCodes[st.languageSelect.Selected]
	st.languageCodes = make(map[string]string)
	var langOptions []string
	for _, code := range l.GetAvailableLanguages() {
		name := l.DisplayName(code)
		st.languageCodes[name] = code
		langOptions = append(langOptions, name)
	}
	st.languageSelect.Options = langOptions
	if selectedLang != "" {
		st.languageSelect.SetSelected(l.DisplayName(selectedLang))
	}
	st.languageSelect.Refresh()

	selectedTheme := st.themeCodes[st.themeRadio.Selected]
	st.themeCodes = make(map[string]string)
	themeOptions := []string{}
	for _, theme := range st.settings.GetThemeOptions() {
		label := st.themeLabelFor(theme)
		st.themeCodes[label] = theme
		themeOptions = append(themeOptions, label)
	}
	st.themeRadio.Options = themeOptions
	if selectedTheme != "" {
		st.themeRadio.SetSelected(st.themeLabelFor(selectedTheme))
	}
	st.themeRadio.Refresh()
}

// Load copies the current settings into the form
func (st *SettingsTab) Load() {
	rec := st.settings.Snapshot()
	st.languageSelect.SetSelected(st.localization.DisplayName(st.settings.GetLanguage()))
	st.themeRadio.SetSelected(st.themeLabelFor(st.settings.GetTheme()))
	st.downloadDirEntry.SetText(st.settings.GetDownloadDirectory())
	st.ffmpegEntry.SetText(rec.FFmpegPath)
	st.clearCacheCheck.SetChecked(rec.ClearCache)
}

func (st *SettingsTab) themeLabelFor(theme string) string {
	if key, ok := themeKeys[theme]; ok {
		return st.localization.GetText(key)
	}
	return theme
}

// Save persists the form and notifies the owner
func (st *SettingsTab) Save() error {
	dir := strings.TrimSpace(st.downloadDirEntry.Text)
	if dir == "" {
		st.showError(errMissingLocation)
		return errMissingLocation
	}
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		st.logger.Warn("download directory unusable", "dir", dir, "error", err)
		st.showError(err)
		return err
	}

	before := st.settings.Snapshot()
	err := st.settings.Update(func(r *config.Record) {
		if code, ok := st.languageCodes[st.languageSelect.Selected]; ok {
			r.Language = code
		}
		if theme, ok := st.themeCodes[st.themeRadio.Selected]; ok {
			r.Theme = theme
		}
		r.DownloadDir = dir
		r.FFmpegPath = strings.TrimSpace(st.ffmpegEntry.Text)
		r.ClearCache = st.clearCacheCheck.Checked
	})
	if err != nil {
		st.showError(err)
		return err
	}
	after := st.settings.Snapshot()
	st.logger.Info("settings saved", "language", after.Language, "theme", after.Theme, "download_dir", after.DownloadDir)

	if st.onSaved != nil {
		st.onSaved(before, after)
	}
	if st.window != nil {
		dialog.ShowInformation(st.localization.GetText(i18n.KeySettingsTab), st.localization.GetText(i18n.KeySettingsSaved), st.window)
	}
	return nil
}

func (st *SettingsTab) showError(err error) {
	if st.window != nil {
		dialog.ShowError(err, st.window)
	}
}

// onBrowseDirectory handles directory browsing
func (st *SettingsTab) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		st.downloadDirEntry.SetText(uri.Path())
	}, st.window)
}

// onDetect probes the entered path, or auto-detects when empty
func (st *SettingsTab) onDetect() {
	if st.prober == nil {
		return
	}
	override := st.ffmpegEntry.Text
	st.detectBtn.Disable()
	st.ffmpegStatus.SetText(DashPlaceholder)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ToolDetectTimeout)
		defer cancel()
		path, version, err := st.prober.Probe(ctx, override)

		fyne.Do(func() {
			st.detectBtn.Enable()
			st.showDetectResult(path, version, err)
		})
	}()
}

func (st *SettingsTab) showDetectResult(path, version string, err error) {
	if err != nil {
		st.logger.Warn("ffmpeg detection failed", "error", err)
		st.ffmpegStatus.SetText(IconError + " " + st.localization.GetText(i18n.KeyFFmpegNotFound))
		return
	}
	st.ffmpegStatus.SetText(IconDone + " " + st.localization.Format(i18n.KeyFFmpegFound, path+" ("+version+")"))
}

// DetectStatus returns the text of the last detection result
func (st *SettingsTab) DetectStatus() string {
	return st.ffmpegStatus.Text
}
