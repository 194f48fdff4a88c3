// Package app wires the configuration, locator, extraction, media and
// download services shared by the desktop and command line entry points.
package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ytget/ytdx/internal/config"
	"github.com/ytget/ytdx/internal/download"
	"github.com/ytget/ytdx/internal/i18n"
	"github.com/ytget/ytdx/internal/media"
	"github.com/ytget/ytdx/internal/source"
	"github.com/ytget/ytdx/internal/tagging"
	"github.com/ytget/ytdx/internal/tools"
)

// EnvPrefix is the prefix of environment overrides, e.g. YTDX_DOWNLOAD_DIR
const EnvPrefix = "YTDX"

// Options controls bootstrap
type Options struct {
	// ConfigPath overrides the default config file location
	ConfigPath string
	// Console receives log records besides the rotating file; nil for none
	Console io.Writer
	// NoLogFile disables the rotating log file
	NoLogFile bool
}

// App holds the long-lived services of one process
type App struct {
	Store        *config.Store
	Settings     *config.Settings
	Catalog      *i18n.Catalog
	Locator      *tools.Locator
	Resolver     *source.YouTube
	Muxer        *media.Muxer
	Orchestrator *download.Orchestrator
	Service      *download.Service
	Logger       *slog.Logger
}

// New loads settings, installs the logger and builds every service
func New(opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}

	store := config.NewStore(path)
	store.BindEnv(EnvPrefix)

	// Read once up front for the log level; NewSettings reports load errors
	rec, _ := store.Load()

	logCfg := config.LoggingConfig{Level: rec.LogLevel, Console: opts.Console}
	if !opts.NoLogFile {
		logCfg.File = filepath.Join(filepath.Dir(path), config.LogFileName)
	}
	logger, err := config.InitLogger(logCfg)
	if err != nil {
		return nil, err
	}

	settings := config.NewSettings(store, logger)
	locator := tools.NewLocator(settings.GetFFmpegPath(), logger)
	settings.OnFFmpegPathChange(locator.SetOverride)

	resolver := source.NewYouTube(source.NewPlaylistService(), logger)
	muxer := media.NewMuxer(locator, media.ExecRunner{}, logger)

	opt := download.DefaultOptions()
	opt.ClearCache = settings.GetClearCache()
	orchestrator := download.NewOrchestrator(download.Deps{
		Resolver: resolver,
		Tools:    locator,
		Muxer:    muxer,
		Tagger:   tagging.NewTagger(muxer),
		Covers:   tagging.NewCoverFetcher(logger),
	}, opt, logger)
	settings.OnChange(func(r config.Record) {
		orchestrator.SetClearCache(r.ClearCache)
	})

	catalog := i18n.Default(logger)
	catalog.Overlay(os.DirFS(filepath.Join(filepath.Dir(path), i18n.LocalesDir)), logger)

	logger.Info("ytdx initialised", "config", path, "language", settings.GetLanguage())

	return &App{
		Store:        store,
		Settings:     settings,
		Catalog:      catalog,
		Locator:      locator,
		Resolver:     resolver,
		Muxer:        muxer,
		Orchestrator: orchestrator,
		Service:      download.NewService(orchestrator, logger),
		Logger:       logger,
	}, nil
}
