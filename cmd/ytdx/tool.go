package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ytget/ytdx/internal/tools"
)

func newToolCmd() *cobra.Command {
	var setPath string
	var auto bool

	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Show or set the ffmpeg binary used for merging and conversion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case auto:
				services.Settings.SetFFmpegPath("")
			case setPath != "":
				services.Settings.SetFFmpegPath(setPath)
			}
			return printTool(cmd.Context(), cmd.OutOrStdout(), services.Locator, services.Settings.GetFFmpegPath())
		},
	}

	cmd.Flags().StringVar(&setPath, "set", "", "save PATH as the ffmpeg override")
	cmd.Flags().BoolVar(&auto, "auto", false, "clear the override and search PATH and install directories")
	cmd.MarkFlagsMutuallyExclusive("set", "auto")

	return cmd
}

func printTool(ctx context.Context, w io.Writer, locator *tools.Locator, override string) error {
	if override == "" {
		fmt.Fprintln(w, "override: none (auto-detect)")
	} else {
		fmt.Fprintf(w, "override: %s\n", override)
	}

	path, err := locator.Locate(ctx)
	if err != nil {
		return err
	}
	version, _ := locator.Version(ctx)
	fmt.Fprintf(w, "ffmpeg:   %s\nversion:  %s\n", path, version)
	return nil
}
