package ui

import (
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytdx/internal/config"
	"github.com/ytget/ytdx/internal/download"
	"github.com/ytget/ytdx/internal/i18n"
	"github.com/ytget/ytdx/internal/model"
	"github.com/ytget/ytdx/internal/platform"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	downloader   download.Downloader
	settings     *config.Settings
	localization *Localization
	logger       *slog.Logger

	tabs        *container.AppTabs
	videoTab    *JobTab
	audioTab    *JobTab
	settingsTab *SettingsTab

	videoItem    *container.TabItem
	audioItem    *container.TabItem
	settingsItem *container.TabItem

	// Only touched on the UI goroutine
	active *download.Handle

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
}

// NewRootUI creates and initializes the main UI
func NewRootUI(app fyne.App, window fyne.Window, downloader download.Downloader, settings *config.Settings, localization *Localization, prober ToolProber, logger *slog.Logger) *RootUI {
	if logger == nil {
		logger = slog.Default()
	}
	ui := &RootUI{
		window:       window,
		app:          app,
		downloader:   downloader,
		settings:     settings,
		localization: localization,
		logger:       logger,
	}

	ui.videoTab = NewJobTab(model.KindVideo, localization)
	ui.audioTab = NewJobTab(model.KindAudio, localization)
	ui.settingsTab = NewSettingsTab(settings, localization, prober, window, logger)

	ui.setupUI()
	ui.refreshUITexts()
	ui.applyTheme(settings.GetTheme())

	rec := settings.Snapshot()
	ui.videoTab.ApplyPreferences(rec)
	ui.audioTab.ApplyPreferences(rec)
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	for _, tab := range []*JobTab{ui.videoTab, ui.audioTab} {
		tab.SetOnStart(ui.onStart)
		tab.taskRow.SetCallbacks(ui.onCancel, ui.onRevealFile, ui.onCopyPath)
		tab.playlistGroup.SetOnReveal(ui.onRevealFile)
	}
	ui.settingsTab.SetOnSaved(ui.onSettingsSaved)

	ui.videoItem = container.NewTabItem("", container.NewPadded(ui.videoTab.GetContainer()))
	ui.audioItem = container.NewTabItem("", container.NewPadded(ui.audioTab.GetContainer()))
	ui.settingsItem = container.NewTabItem("", container.NewVScroll(container.NewPadded(ui.settingsTab.GetContainer())))
	ui.tabs = container.NewAppTabs(ui.videoItem, ui.audioItem, ui.settingsItem)

	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Wrapping = fyne.TextWrapWord
	ui.notificationContainer = container.NewPadded(ui.notificationLabel)
	ui.notificationContainer.Hide()

	var top fyne.CanvasObject = ui.notificationContainer
	if logo, err := LoadLogoResource(); err == nil {
		logoImage := canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(32, 32))
		logoImage.FillMode = canvas.ImageFillContain
		top = container.NewBorder(nil, nil, logoImage, nil, ui.notificationContainer)
		ui.window.SetIcon(logo)
	}

	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, ui.tabs))
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	l := ui.localization
	ui.window.SetTitle(l.GetText(i18n.KeyAppTitle))
	ui.videoItem.Text = l.GetText(i18n.KeyVideoTab)
	ui.audioItem.Text = l.GetText(i18n.KeyAudioTab)
	ui.settingsItem.Text = l.GetText(i18n.KeySettingsTab)
	ui.tabs.Refresh()

	ui.videoTab.RefreshTexts()
	ui.audioTab.RefreshTexts()
	ui.settingsTab.RefreshTexts()
}

func (ui *RootUI) applyTheme(name string) {
	if ui.app != nil {
		ui.app.Settings().SetTheme(NewCompactTheme(name))
	}
}

// onStart validates the tab form and hands the job to the downloader
func (ui *RootUI) onStart(tab *JobTab) {
	if ui.active != nil {
		ui.showNotification(errorText(ui.localization, errJobRunning))
		return
	}

	job, err := BuildJob(tab.Form(), ui.settings.GetDownloadDirectory())
	if err != nil {
		ui.logger.Info("job rejected", "kind", tab.Kind(), "error", err)
		ui.showNotification(errorText(ui.localization, err))
		return
	}
	if err := platform.CreateDirectoryIfNotExists(job.DestDir); err != nil {
		ui.showNotification(err.Error())
		return
	}
	ui.rememberOptions(job)

	handle := ui.downloader.Start(job)
	ui.active = handle
	ui.hideNotification()
	tab.Begin(job)
	ui.logger.Info("job started", "job", handle.ID(), "url", job.URL, "kind", job.Kind, "format", job.Format)

	go ui.consume(handle, tab)
}

// consume drains the job events on its own goroutine and applies them on
// the UI goroutine
func (ui *RootUI) consume(handle *download.Handle, tab *JobTab) {
	for e := range handle.Events() {
		fyne.Do(func() {
			tab.ApplyEvent(e)
		})
	}
	summary := handle.Wait()
	if dropped := handle.Dropped(); dropped > 0 {
		ui.logger.Debug("progress events dropped", "job", handle.ID(), "count", dropped)
	}

	fyne.Do(func() {
		ui.onJobFinished(tab, summary)
	})
}

func (ui *RootUI) onJobFinished(tab *JobTab, summary model.Summary) {
	ui.active = nil
	tab.Finish(summary)
	ui.logger.Info("job finished", "job", summary.JobID, "result", summary.String())
	ui.sendCompletionNotification(summary)
}

// rememberOptions stores the tab choices as the next defaults
func (ui *RootUI) rememberOptions(job model.Job) {
	err := ui.settings.Update(func(r *config.Record) {
		if job.Kind == model.KindVideo {
			r.VideoQuality = job.Resolution
			r.VideoFormat = string(job.Format)
			return
		}
		r.AudioQuality = string(job.Quality())
		r.AudioFormat = string(job.Format)
		r.EmbedCover = job.EmbedCover
	})
	if err != nil {
		ui.logger.Warn("failed to remember job options", "error", err)
	}
}

func (ui *RootUI) onCancel() {
	if ui.active == nil {
		return
	}
	if err := ui.downloader.Cancel(ui.active.ID()); err != nil {
		ui.logger.Warn("cancel failed", "job", ui.active.ID(), "error", err)
	}
}

// onSettingsSaved applies language and theme changes without a restart
func (ui *RootUI) onSettingsSaved(before, after config.Record) {
	if after.Language != before.Language && ui.localization.SetLanguage(after.Language) {
		ui.refreshUITexts()
	}
	if after.Theme != before.Theme {
		ui.applyTheme(after.Theme)
	}
}

// onRevealFile handles revealing a file in the system file manager
func (ui *RootUI) onRevealFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := platform.RevealInFileManager(filePath); err != nil {
		ui.logger.Warn("reveal failed", "path", filePath, "error", err)
		ui.showNotification(err.Error())
	}
}

// onCopyPath handles copying file path to clipboard
func (ui *RootUI) onCopyPath(filePath string) {
	if filePath == "" || ui.app == nil {
		return
	}
	ui.app.Clipboard().SetContent(filePath)
	ui.showNotification(ui.localization.GetText(i18n.KeyPathCopied))
}

// showNotification displays a message in the notification panel
func (ui *RootUI) showNotification(message string) {
	ui.notificationLabel.SetText(message)
	ui.notificationContainer.Show()
}

// hideNotification hides the notification panel.
func (ui *RootUI) hideNotification() {
	ui.notificationContainer.Hide()
}

// Notification returns the visible notification text, empty when hidden
func (ui *RootUI) Notification() string {
	if !ui.notificationContainer.Visible() {
		return ""
	}
	return ui.notificationLabel.Text
}

// sendCompletionNotification sends a system notification for finished jobs
func (ui *RootUI) sendCompletionNotification(summary model.Summary) {
	if ui.app == nil || len(summary.Outcomes) == 0 {
		return
	}

	message := ui.localization.Format(i18n.KeySummary, summary.String())
	last := summary.Outcomes[len(summary.Outcomes)-1]
	if len(summary.Outcomes) == 1 {
		message = OutcomeText(ui.localization, last)
	}
	ui.app.SendNotification(&fyne.Notification{
		Title:   ui.localization.GetText(i18n.KeyAppTitle),
		Content: message,
	})
	ui.showToastNotification(message, lastOutput(summary))
}

func lastOutput(summary model.Summary) string {
	for i := len(summary.Outcomes) - 1; i >= 0; i-- {
		if p := summary.Outcomes[i].OutputPath; p != "" {
			return p
		}
	}
	return ""
}

// showToastNotification shows an in-app toast with a reveal action
func (ui *RootUI) showToastNotification(message, outputPath string) {
	canvasObj := ui.window.Canvas()
	if canvasObj == nil {
		return
	}

	messageLabel := widget.NewLabel(message)
	messageLabel.Wrapping = fyne.TextWrapWord

	var toastPopup *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() {
		toastPopup.Hide()
	})
	closeBtn.Importance = widget.LowImportance

	actions := container.NewHBox()
	if outputPath != "" {
		revealBtn := widget.NewButton(ui.localization.GetText(i18n.KeyReveal), func() {
			ui.onRevealFile(outputPath)
			toastPopup.Hide()
		})
		revealBtn.Importance = widget.HighImportance
		actions.Add(revealBtn)
	}

	content := container.NewBorder(container.NewBorder(nil, nil, nil, closeBtn), actions, nil, nil, messageLabel)
	toastPopup = widget.NewPopUp(content, canvasObj)

	canvasSize := canvasObj.Size()
	toastSize := fyne.NewSize(ToastWidth, ToastHeight)
	toastPopup.Resize(toastSize)
	toastPopup.Move(fyne.NewPos(canvasSize.Width-toastSize.Width-ToastMargin, ToastMargin))
	toastPopup.Show()

	time.AfterFunc(ToastAutoHide, func() {
		fyne.Do(toastPopup.Hide)
	})
}

// Shutdown cancels every running job and waits for them to clean up
func (ui *RootUI) Shutdown() {
	active := ui.downloader.Active()
	if len(active) == 0 {
		return
	}
	ui.downloader.CancelAll()

	deadline := time.After(ShutdownTimeout)
	for _, handle := range active {
		select {
		case <-handle.Done():
		case <-deadline:
			ui.logger.Warn("job did not stop in time", "job", handle.ID())
			return
		}
	}
}

// VideoTab returns the video tab
func (ui *RootUI) VideoTab() *JobTab { return ui.videoTab }

// AudioTab returns the audio tab
func (ui *RootUI) AudioTab() *JobTab { return ui.audioTab }

// SettingsTab returns the settings tab
func (ui *RootUI) SettingsTab() *SettingsTab { return ui.settingsTab }
