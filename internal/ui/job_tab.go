package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytdx/internal/config"
	"github.com/ytget/ytdx/internal/i18n"
	"github.com/ytget/ytdx/internal/model"
)

// JobTab is the Video or Audio tab: URL entry, options, start button and
// the progress of the job started from it
type JobTab struct {
	kind         model.Kind
	localization *Localization

	content        *fyne.Container
	urlLabel       *widget.Label
	urlEntry       *widget.Entry
	optionLabel    *widget.Label
	optionSelect   *widget.Select // resolution or audio quality
	formatLabel    *widget.Label
	formatRadio    *widget.RadioGroup
	playlistCheck  *widget.Check
	coverCheck     *widget.Check
	startBtn       *widget.Button
	taskRow        *TaskRow
	playlistGroup  *PlaylistGroup
	selectedOption int

	onStart func(*JobTab)
}

// NewJobTab creates a tab for the given job kind
func NewJobTab(kind model.Kind, localization *Localization) *JobTab {
	jt := &JobTab{kind: kind, localization: localization}
	jt.createUI()
	jt.RefreshTexts()
	return jt
}

// SetOnStart sets the start button callback
func (jt *JobTab) SetOnStart(fn func(*JobTab)) {
	jt.onStart = fn
}

// Kind returns the job kind of the tab
func (jt *JobTab) Kind() model.Kind {
	return jt.kind
}

func (jt *JobTab) formats() []string {
	if jt.kind == model.KindVideo {
		return []string{string(model.FormatMP4), string(model.FormatMKV)}
	}
	return []string{string(model.FormatMP3), string(model.FormatM4A)}
}

func (jt *JobTab) createUI() {
	jt.urlLabel = widget.NewLabel("")
	jt.urlEntry = widget.NewEntry()
	jt.urlEntry.OnSubmitted = func(string) { jt.start() }
	// Tick the playlist box when a list id shows up
	jt.urlEntry.OnChanged = func(text string) {
		if model.IsPlaylistURL(text) && !jt.playlistCheck.Checked {
			jt.playlistCheck.SetChecked(true)
		}
	}

	jt.optionLabel = widget.NewLabel("")
	jt.optionSelect = widget.NewSelect(nil, func(string) {
		jt.selectedOption = jt.optionSelect.SelectedIndex()
	})

	jt.formatLabel = widget.NewLabel("")
	jt.formatRadio = widget.NewRadioGroup(jt.formats(), nil)
	jt.formatRadio.Horizontal = true
	jt.formatRadio.Required = true
	jt.formatRadio.SetSelected(jt.formats()[0])

	jt.playlistCheck = widget.NewCheck("", nil)
	jt.coverCheck = widget.NewCheck("", nil)
	jt.coverCheck.SetChecked(true)

	jt.startBtn = widget.NewButton("", jt.start)
	jt.startBtn.Importance = widget.HighImportance

	jt.taskRow = NewTaskRow(jt.localization)
	jt.playlistGroup = NewPlaylistGroup(jt.localization)

	urlRow := container.NewBorder(nil, nil, nil, jt.startBtn, jt.urlEntry)
	options := container.NewGridWithColumns(2,
		container.NewVBox(jt.optionLabel, jt.optionSelect),
		container.NewVBox(jt.formatLabel, jt.formatRadio),
	)
	checks := container.NewHBox(jt.playlistCheck)
	if jt.kind == model.KindAudio {
		checks.Add(jt.coverCheck)
	}

	top := container.NewVBox(jt.urlLabel, urlRow, options, checks, widget.NewSeparator(), jt.taskRow)
	jt.content = container.NewBorder(top, nil, nil, nil, jt.playlistGroup.GetContainer())
}

func (jt *JobTab) start() {
	if jt.onStart != nil {
		jt.onStart(jt)
	}
}

// GetContainer returns the tab content
func (jt *JobTab) GetContainer() fyne.CanvasObject {
	return jt.content
}

// RefreshTexts re-reads every caption after a language change
func (jt *JobTab) RefreshTexts() {
	l := jt.localization
	jt.urlLabel.SetText(l.GetText(i18n.KeyURL))
	jt.urlEntry.SetPlaceHolder(l.GetText(i18n.KeyURLPlaceholder))
	jt.formatLabel.SetText(l.GetText(i18n.KeyFormat))
	jt.playlistCheck.Text = l.GetText(i18n.KeyPlaylist)
	jt.playlistCheck.Refresh()
	jt.coverCheck.Text = l.GetText(i18n.KeyEmbedCover)
	jt.coverCheck.Refresh()
	jt.startBtn.SetText(l.GetText(i18n.KeyStartDownload))

	if jt.kind == model.KindVideo {
		jt.optionLabel.SetText(l.GetText(i18n.KeyResolution))
		jt.optionSelect.Options = resolutionOptions(l)
	} else {
		jt.optionLabel.SetText(l.GetText(i18n.KeyAudioQuality))
		jt.optionSelect.Options = qualityOptions(l)
	}
	// Options are positional, so the index survives a language switch
	jt.optionSelect.SetSelectedIndex(jt.selectedOption)

	jt.taskRow.RefreshTexts()
	jt.playlistGroup.RefreshTexts()
}

// ApplyPreferences selects the remembered options of the record
func (jt *JobTab) ApplyPreferences(rec config.Record) {
	if jt.kind == model.KindVideo {
		label := jt.localization.GetText(i18n.KeyAuto)
		if rec.VideoQuality != model.ResolutionAuto {
			label = resolutionLabel(rec.VideoQuality)
		}
		jt.optionSelect.SetSelected(label)
		jt.setFormat(rec.VideoFormat)
	} else {
		jt.optionSelect.SetSelected(qualityLabel(jt.localization, model.AudioQuality(rec.AudioQuality)))
		jt.setFormat(rec.AudioFormat)
		jt.coverCheck.SetChecked(rec.EmbedCover)
	}
}

func (jt *JobTab) setFormat(format string) {
	for _, f := range jt.formats() {
		if f == format {
			jt.formatRadio.SetSelected(f)
			return
		}
	}
}

// Form returns the current field values
func (jt *JobTab) Form() JobForm {
	form := JobForm{
		Kind:     jt.kind,
		URL:      jt.urlEntry.Text,
		Format:   model.Format(jt.formatRadio.Selected),
		Playlist: jt.playlistCheck.Checked,
	}
	if jt.kind == model.KindVideo {
		form.Resolution = parseResolution(jt.optionSelect.Selected)
	} else {
		form.AudioQuality = parseQuality(jt.localization, jt.optionSelect.Selected)
		form.EmbedCover = jt.coverCheck.Checked
	}
	return form
}

// Begin resets progress widgets for a new job
func (jt *JobTab) Begin(job model.Job) {
	jt.taskRow.Begin(job.URL)
	jt.playlistGroup.Reset(0)
	jt.startBtn.Disable()
}

// ApplyEvent forwards an event to the progress widgets
func (jt *JobTab) ApplyEvent(e model.Event) {
	jt.taskRow.ApplyEvent(e)
	if e.Total > 1 {
		jt.playlistGroup.ApplyEvent(e)
	}
}

// Finish shows the summary and re-enables the start button
func (jt *JobTab) Finish(summary model.Summary) {
	jt.taskRow.Finish(summary)
	jt.startBtn.Enable()
	if !summary.Failed() {
		jt.urlEntry.SetText("")
		jt.playlistCheck.SetChecked(false)
	}
}
