package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ytget/ytdx/internal/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the settings file location and values",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "file: %s\n", services.Store.Path())
			printRecord(cmd.OutOrStdout(), services.Settings.Snapshot())
		},
	}
}

func printRecord(w io.Writer, rec config.Record) {
	rows := []struct {
		key   string
		value any
	}{
		{config.KeyLanguage, rec.Language},
		{config.KeyTheme, rec.Theme},
		{config.KeyDownloadDir, rec.DownloadDir},
		{config.KeyFFmpegPath, rec.FFmpegPath},
		{config.KeyClearCache, rec.ClearCache},
		{config.KeyVideoQuality, rec.VideoQuality},
		{config.KeyVideoFormat, rec.VideoFormat},
		{config.KeyAudioQuality, rec.AudioQuality},
		{config.KeyAudioFormat, rec.AudioFormat},
		{config.KeyEmbedCover, rec.EmbedCover},
		{config.KeyLogLevel, rec.LogLevel},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-14s %v\n", r.key+":", r.value)
	}
}
