package ui

import (
	"fyne.io/fyne/v2"
)

const (
	AppIcon = "ytdx.png"
)

// LoadLogoResource loads the window icon from the working directory
func LoadLogoResource() (fyne.Resource, error) {
	return fyne.LoadResourceFromPath(AppIcon)
}
