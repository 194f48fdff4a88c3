package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/ytget/ytdx/internal/app"
	"github.com/ytget/ytdx/internal/platform"
	"github.com/ytget/ytdx/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID = "com.ytget.ytdx"
)

func main() {
	a, err := app.New(app.Options{Console: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ytdx: %v\n", err)
		os.Exit(1)
	}
	logger := a.Logger
	logger.Info("ytdx starting", "version", version)

	downloadsDir := a.Settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
		logger.Warn("failed to ensure downloads dir", "dir", downloadsDir, "error", err)
	}

	myApp := fyneapp.NewWithID(AppID)
	myWindow := myApp.NewWindow("ytdx")
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	localization := ui.NewLocalization(a.Catalog, a.Settings.GetLanguage())
	root := ui.NewRootUI(myApp, myWindow, a.Service, a.Settings, localization, a.Locator, logger)

	myWindow.SetCloseIntercept(func() {
		root.Shutdown()
		myWindow.Close()
	})

	myWindow.ShowAndRun()
	logger.Info("ytdx stopped")
}
