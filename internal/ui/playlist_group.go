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

// ItemState is the last known state of one playlist entry
type ItemState struct {
	Title   string
	Phase   model.Phase
	Percent float64
	Outcome *model.Outcome
}

// PlaylistGroup lists the entries of a playlist job with per-item progress.
// All methods must run on the UI goroutine.
type PlaylistGroup struct {
	localization *Localization
	items        []ItemState

	// UI components
	container *fyne.Container
	header    *widget.Label
	list      *widget.List

	onReveal func(filePath string)
}

// NewPlaylistGroup creates a new playlist group UI component
func NewPlaylistGroup(localization *Localization) *PlaylistGroup {
	pg := &PlaylistGroup{localization: localization}
	pg.createUI()
	pg.container.Hide()
	return pg
}

// SetOnReveal sets the callback for clicked finished items
func (pg *PlaylistGroup) SetOnReveal(onReveal func(filePath string)) {
	pg.onReveal = onReveal
}

func (pg *PlaylistGroup) createUI() {
	pg.header = widget.NewLabel("")
	pg.header.TextStyle = fyne.TextStyle{Bold: true}

	pg.list = widget.NewList(
		func() int {
			return len(pg.items)
		},
		pg.createItemRow,
		pg.updateItemRow,
	)
	pg.list.OnSelected = func(id widget.ListItemID) {
		pg.list.UnselectAll()
		if id >= len(pg.items) || pg.onReveal == nil {
			return
		}
		if o := pg.items[id].Outcome; o != nil && o.OutputPath != "" {
			pg.onReveal(o.OutputPath)
		}
	}

	listArea := container.NewGridWrap(fyne.NewSize(WindowWidth-40, ItemListMinHeight), pg.list)
	pg.container = container.NewBorder(pg.header, nil, nil, nil, listArea)
}

// createItemRow creates a template row: status, title, percent
func (pg *PlaylistGroup) createItemRow() fyne.CanvasObject {
	status := widget.NewLabel("")
	title := widget.NewLabel("")
	title.Truncation = fyne.TextTruncateEllipsis
	percent := widget.NewLabel("")
	percent.Alignment = fyne.TextAlignTrailing

	statusBox := container.NewGridWrap(fyne.NewSize(StatusLabelWidth, RowMinHeight), status)
	percentBox := container.NewGridWrap(fyne.NewSize(PercentLabelWidth, RowMinHeight), percent)
	return container.NewBorder(nil, nil, statusBox, percentBox, title)
}

func (pg *PlaylistGroup) updateItemRow(id widget.ListItemID, obj fyne.CanvasObject) {
	if id >= len(pg.items) {
		return
	}
	row, ok := obj.(*fyne.Container)
	if !ok || len(row.Objects) < 3 {
		return
	}
	item := pg.items[id]

	// Border layout stores center first, then the side objects
	title := row.Objects[0].(*widget.Label)
	status := row.Objects[1].(*fyne.Container).Objects[0].(*widget.Label)
	percent := row.Objects[2].(*fyne.Container).Objects[0].(*widget.Label)

	name := item.Title
	if name == "" {
		name = fmt.Sprintf(ItemCounterFormat, id+1, len(pg.items))
	}
	title.SetText(name)
	status.SetText(pg.itemStatus(item))
	if item.Phase == "" {
		percent.SetText(DashPlaceholder)
	} else {
		percent.SetText(fmt.Sprintf(ProgressLabelFormat, int(math.Round(item.Percent))))
	}
}

func (pg *PlaylistGroup) itemStatus(item ItemState) string {
	if item.Outcome == nil {
		if item.Phase == "" {
			return DashPlaceholder
		}
		return item.Phase.String()
	}
	switch item.Outcome.Status {
	case model.StatusSucceeded:
		return IconDone
	case model.StatusDegraded:
		return IconWarn
	case model.StatusCancelled:
		return IconClose
	default:
		return IconError
	}
}

// Reset prepares the list for a job with total entries
func (pg *PlaylistGroup) Reset(total int) {
	pg.items = make([]ItemState, total)
	pg.refreshHeader()
	if total > 1 {
		pg.container.Show()
	} else {
		pg.container.Hide()
	}
	pg.list.Refresh()
}

// ApplyEvent records an event for its item
func (pg *PlaylistGroup) ApplyEvent(e model.Event) {
	if e.Total != len(pg.items) {
		pg.Reset(e.Total)
	}
	if e.Item < 0 || e.Item >= len(pg.items) {
		return
	}

	item := &pg.items[e.Item]
	if e.Title != "" {
		item.Title = e.Title
	}
	item.Phase = e.Phase
	item.Percent = e.Percent
	if e.Outcome != nil {
		o := *e.Outcome
		item.Outcome = &o
	}
	pg.list.RefreshItem(e.Item)
}

// Items returns a copy of the item states
func (pg *PlaylistGroup) Items() []ItemState {
	out := make([]ItemState, len(pg.items))
	copy(out, pg.items)
	return out
}

// RefreshTexts re-reads the header after a language change
func (pg *PlaylistGroup) RefreshTexts() {
	pg.refreshHeader()
}

func (pg *PlaylistGroup) refreshHeader() {
	pg.header.SetText(fmt.Sprintf("%s (%d)", pg.localization.GetText(i18n.KeyItems), len(pg.items)))
}

// GetContainer returns the main container
func (pg *PlaylistGroup) GetContainer() fyne.CanvasObject {
	return pg.container
}
