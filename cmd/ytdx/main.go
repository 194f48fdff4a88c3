package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ytget/ytdx/internal/app"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"

	// Global flags
	cfgFile string
	verbose bool

	// Services built in PersistentPreRunE
	services *app.App
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ytdx",
	Short: "Download YouTube videos and audio from the command line",
	Long: `ytdx downloads a YouTube video, or every entry of a playlist, as an
MP4/MKV video or an MP3/M4A audio file. Separate video and audio streams are
merged with ffmpeg, and audio files get title, artist and cover art tags.

Settings are shared with the desktop application.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal
		_ = godotenv.Load()

		opts := app.Options{ConfigPath: cfgFile}
		if verbose {
			opts.Console = os.Stderr
		}
		var err error
		services, err = app.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialise: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/ytdx/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write log records to stderr")

	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newToolCmd())
	rootCmd.AddCommand(newConfigCmd())
}
