package ui

// Package ui contains the Fyne-based desktop user interface: a Video tab, an
// Audio tab and a Settings tab. Jobs are handed to the download service and
// their events are drained by one goroutine per job that applies them on the
// UI thread with fyne.Do. All UI strings are localized via Localization.
