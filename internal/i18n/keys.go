package i18n

// Text keys
const (
	KeyAppTitle            = "app_title"
	KeyVideoTab            = "video_tab"
	KeyAudioTab            = "audio_tab"
	KeySettingsTab         = "settings_tab"
	KeyURL                 = "url"
	KeyURLPlaceholder      = "url_placeholder"
	KeyResolution          = "resolution"
	KeyAuto                = "auto"
	KeyFormat              = "format"
	KeyPlaylist            = "playlist"
	KeyStartDownload       = "start_download"
	KeyCancel              = "cancel"
	KeyReady               = "ready"
	KeyDiscovering         = "discovering"
	KeyDownloadingVideo    = "downloading_video"
	KeyDownloadingAudio    = "downloading_audio"
	KeyMerging             = "merging"
	KeyConverting          = "converting"
	KeyTagging             = "tagging"
	KeyDownloadComplete    = "download_complete"
	KeyDownloadDegraded    = "download_degraded"
	KeyDownloadFailed      = "download_failed"
	KeyDownloadCancelled   = "download_cancelled"
	KeySummary             = "summary"
	KeyAudioQuality        = "audio_quality"
	KeyHighQuality         = "high_quality"
	KeyMediumQuality       = "medium_quality"
	KeyLowQuality          = "low_quality"
	KeyEmbedCover          = "embed_cover"
	KeyLanguage            = "language"
	KeyTheme               = "theme"
	KeyLightTheme          = "light_theme"
	KeyDarkTheme           = "dark_theme"
	KeyDownloadLocation    = "download_location"
	KeySelectFolder        = "select_folder"
	KeyFFmpegPath          = "ffmpeg_path"
	KeyFFmpegDetect        = "ffmpeg_detect"
	KeyFFmpegFound         = "ffmpeg_found"
	KeyFFmpegNotFound      = "ffmpeg_not_found"
	KeyClearCache          = "clear_cache"
	KeySave                = "save"
	KeySettingsSaved       = "settings_saved"
	KeyMissingURL          = "missing_url"
	KeyInvalidURL          = "invalid_url"
	KeyMissingLocation     = "missing_download_location"
	KeyJobRunning          = "job_running"
	KeyReveal              = "reveal"
	KeyRestartRequired     = "restart_required"
	KeyResolutionFallback  = "resolution_fallback"
	KeyCopyPath            = "copy_path"
	KeyPathCopied          = "path_copied"
	KeyItems               = "items"
	KeyLanguageDisplayName = "_name"
)
