package ui

import (
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytdx/internal/i18n"
	"github.com/ytget/ytdx/internal/model"
)

// phaseKeys maps pipeline phases to status text
var phaseKeys = map[model.Phase]string{
	model.PhaseDiscovering:      i18n.KeyDiscovering,
	model.PhaseDownloadingVideo: i18n.KeyDownloadingVideo,
	model.PhaseDownloadingAudio: i18n.KeyDownloadingAudio,
	model.PhaseMerging:          i18n.KeyMerging,
	model.PhaseConverting:       i18n.KeyConverting,
	model.PhaseTagging:          i18n.KeyTagging,
}

// TaskRow shows the running job of a tab: current item, phase and percent.
// All methods must run on the UI goroutine.
type TaskRow struct {
	widget.BaseWidget

	localization *Localization
	running      bool
	lastOutput   string

	// UI components
	titleLabel    *widget.Label
	statusLabel   *widget.Label
	progressLabel *widget.Label
	counterLabel  *widget.Label
	progressBar   *widget.ProgressBar

	// Action buttons
	cancelBtn *widget.Button
	revealBtn *widget.Button
	copyBtn   *widget.Button

	// Callbacks
	onCancel   func()
	onReveal   func(filePath string)
	onCopyPath func(filePath string)
}

// NewTaskRow creates a new task row widget
func NewTaskRow(localization *Localization) *TaskRow {
	tr := &TaskRow{localization: localization}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	tr.Reset()
	return tr
}

// SetCallbacks sets the action callbacks
func (tr *TaskRow) SetCallbacks(onCancel func(), onReveal func(filePath string), onCopyPath func(filePath string)) {
	tr.onCancel = onCancel
	tr.onReveal = onReveal
	tr.onCopyPath = onCopyPath
}

func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Wrapping = fyne.TextWrapWord
	tr.progressLabel = widget.NewLabel("")
	tr.progressLabel.Alignment = fyne.TextAlignTrailing
	tr.counterLabel = widget.NewLabel("")
	tr.progressBar = widget.NewProgressBar()
	tr.progressBar.TextFormatter = func() string { return "" }

	tr.cancelBtn = widget.NewButton("", func() {
		if tr.onCancel != nil {
			tr.onCancel()
		}
	})
	tr.cancelBtn.Importance = widget.DangerImportance

	tr.revealBtn = widget.NewButton(IconFolder, func() {
		if tr.onReveal != nil && tr.lastOutput != "" {
			tr.onReveal(tr.lastOutput)
		}
	})
	tr.copyBtn = widget.NewButton("", func() {
		if tr.onCopyPath != nil && tr.lastOutput != "" {
			tr.onCopyPath(tr.lastOutput)
		}
	})
	tr.copyBtn.Importance = widget.LowImportance
}

// Reset shows the idle state
func (tr *TaskRow) Reset() {
	tr.running = false
	tr.titleLabel.SetText("")
	tr.counterLabel.SetText("")
	tr.statusLabel.SetText(tr.localization.GetText(i18n.KeyReady))
	tr.setPercent(0)
	tr.updateButtons()
}

// Begin switches to the running state for a new job
func (tr *TaskRow) Begin(url string) {
	tr.running = true
	tr.lastOutput = ""
	tr.titleLabel.SetText(url)
	tr.counterLabel.SetText("")
	tr.statusLabel.SetText(tr.localization.GetText(i18n.KeyDiscovering))
	tr.setPercent(0)
	tr.updateButtons()
}

// ApplyEvent renders one progress event
func (tr *TaskRow) ApplyEvent(e model.Event) {
	if e.Title != "" {
		tr.titleLabel.SetText(e.Title)
	}
	if e.Total > 1 {
		tr.counterLabel.SetText(fmt.Sprintf(ItemCounterFormat, e.Item+1, e.Total))
	}
	tr.setPercent(e.Percent)

	if e.Outcome != nil {
		tr.statusLabel.SetText(OutcomeText(tr.localization, *e.Outcome))
		if e.Outcome.OutputPath != "" {
			tr.lastOutput = e.Outcome.OutputPath
		}
		tr.updateButtons()
		return
	}

	status := tr.localization.GetText(phaseKeys[e.Phase])
	if e.Message != "" {
		status += MiddleDotSeparator + e.Message
	}
	tr.statusLabel.SetText(status)
}

// Finish shows the job summary and stops accepting cancel
func (tr *TaskRow) Finish(summary model.Summary) {
	tr.running = false
	if len(summary.Outcomes) > 1 {
		tr.statusLabel.SetText(tr.localization.Format(i18n.KeySummary, summary.String()))
	}
	tr.updateButtons()
}

// Running reports whether a job is shown
func (tr *TaskRow) Running() bool {
	return tr.running
}

// LastOutput returns the newest saved file of the job
func (tr *TaskRow) LastOutput() string {
	return tr.lastOutput
}

// Status returns the status line text
func (tr *TaskRow) Status() string {
	return tr.statusLabel.Text
}

// Percent returns the progress bar value in percent
func (tr *TaskRow) Percent() float64 {
	return tr.progressBar.Value * 100
}

// RefreshTexts re-reads button captions after a language change
func (tr *TaskRow) RefreshTexts() {
	tr.cancelBtn.SetText(tr.localization.GetText(i18n.KeyCancel))
	tr.revealBtn.SetText(IconFolder + " " + tr.localization.GetText(i18n.KeyReveal))
	tr.copyBtn.SetText(tr.localization.GetText(i18n.KeyCopyPath))
	if !tr.running && tr.lastOutput == "" {
		tr.statusLabel.SetText(tr.localization.GetText(i18n.KeyReady))
	}
}

func (tr *TaskRow) setPercent(percent float64) {
	tr.progressBar.SetValue(percent / 100)
	tr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, int(math.Round(percent))))
}

func (tr *TaskRow) updateButtons() {
	if tr.running {
		tr.cancelBtn.Show()
	} else {
		tr.cancelBtn.Hide()
	}
	if tr.lastOutput != "" {
		tr.revealBtn.Show()
		tr.copyBtn.Show()
	} else {
		tr.revealBtn.Hide()
		tr.copyBtn.Hide()
	}
}

// CreateRenderer creates the widget renderer
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	tr.RefreshTexts()

	header := container.NewBorder(nil, nil, nil, tr.counterLabel, tr.titleLabel)
	bar := container.NewBorder(nil, nil, nil, tr.progressLabel, tr.progressBar)
	actions := container.NewHBox(tr.cancelBtn, tr.revealBtn, tr.copyBtn)
	return widget.NewSimpleRenderer(container.NewVBox(header, bar, tr.statusLabel, actions))
}

// OutcomeText renders a terminal outcome as a one-line status
func OutcomeText(l *Localization, o model.Outcome) string {
	switch o.Status {
	case model.StatusSucceeded:
		return IconDone + " " + l.Format(i18n.KeyDownloadComplete, o.OutputPath)
	case model.StatusDegraded:
		return IconWarn + " " + l.Format(i18n.KeyDownloadDegraded, o.OutputPath)
	case model.StatusCancelled:
		return l.GetText(i18n.KeyDownloadCancelled)
	default:
		msg := DashPlaceholder
		if o.Err != nil {
			msg = o.Err.Error()
		}
		return IconError + " " + l.Format(i18n.KeyDownloadFailed, msg)
	}
}
