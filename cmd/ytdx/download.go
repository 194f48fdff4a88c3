package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytget/ytdx/internal/config"
	"github.com/ytget/ytdx/internal/model"
	"github.com/ytget/ytdx/internal/platform"
)

// progressStep is the percentage distance between printed progress lines
const progressStep = 10

type downloadFlags struct {
	audio    bool
	quality  string
	format   string
	out      string
	playlist bool
	noCover  bool
}

func newDownloadCmd() *cobra.Command {
	var f downloadFlags

	cmd := &cobra.Command{
		Use:   "download URL",
		Short: "Download a video, or its audio with --audio",
		Example: `  ytdx download https://youtu.be/dQw4w9WgXcQ --quality 720
  ytdx download "https://www.youtube.com/playlist?list=PL..." --playlist --audio --format m4a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := jobFromFlags(args[0], f, services.Settings.Snapshot(), services.Settings.GetDownloadDirectory())
			if err != nil {
				return err
			}
			if err := platform.CreateDirectoryIfNotExists(job.DestDir); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary := runDownload(ctx, job, cmd.OutOrStdout())
			if summary.Failed() {
				return errors.New("nothing was downloaded")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&f.audio, "audio", "a", false, "download audio only")
	cmd.Flags().StringVarP(&f.quality, "quality", "q", "", "video height cap (auto, 1080, 720p, ...) or audio tier (high, medium, low)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: mp4, mkv, mp3 or m4a")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "destination directory (default from settings)")
	cmd.Flags().BoolVarP(&f.playlist, "playlist", "p", false, "download every entry of the playlist in the URL")
	cmd.Flags().BoolVar(&f.noCover, "no-cover", false, "do not embed cover art in audio files")

	return cmd
}

// jobFromFlags builds a job, filling unset flags from the saved preferences
func jobFromFlags(url string, f downloadFlags, rec config.Record, defaultDir string) (model.Job, error) {
	job := model.Job{
		URL:      strings.TrimSpace(url),
		DestDir:  f.out,
		Playlist: f.playlist,
	}
	if job.DestDir == "" {
		job.DestDir = defaultDir
	}

	if f.audio {
		job.Kind = model.KindAudio
		job.Format = model.Format(orString(f.format, rec.AudioFormat))
		job.AudioQuality = model.AudioQuality(orString(strings.ToLower(f.quality), rec.AudioQuality))
		job.EmbedCover = rec.EmbedCover && !f.noCover
	} else {
		job.Kind = model.KindVideo
		job.Format = model.Format(orString(f.format, rec.VideoFormat))
		job.Resolution = rec.VideoQuality
		if f.quality != "" {
			height, err := parseHeight(f.quality)
			if err != nil {
				return model.Job{}, err
			}
			job.Resolution = height
		}
	}

	if err := job.Validate(); err != nil {
		return model.Job{}, err
	}
	return job, nil
}

// parseHeight accepts auto, best, 720 or 720p
func parseHeight(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "auto" || s == "best" {
		return model.ResolutionAuto, nil
	}
	height, err := strconv.Atoi(strings.TrimSuffix(s, "p"))
	if err != nil {
		return 0, fmt.Errorf("invalid quality %q: expected auto or a height like 1080", s)
	}
	return height, nil
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// runDownload starts the job and prints its events until it finishes
func runDownload(ctx context.Context, job model.Job, w io.Writer) model.Summary {
	handle := services.Service.Start(job)

	go func() {
		select {
		case <-ctx.Done():
			handle.Cancel()
		case <-handle.Done():
		}
	}()

	p := newPrinter(w)
	for e := range handle.Events() {
		p.print(e)
	}
	summary := handle.Wait()
	fmt.Fprintf(w, "Finished: %s\n", summary)
	return summary
}

// printer writes one line per phase change, every progressStep percent and
// per outcome
type printer struct {
	w         io.Writer
	lastItem  int
	lastPhase model.Phase
	lastStep  int
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, lastItem: -1}
}

func (p *printer) print(e model.Event) {
	prefix := ""
	if e.Total > 1 {
		prefix = fmt.Sprintf("[%d/%d] ", e.Item+1, e.Total)
	}

	if o := e.Outcome; o != nil {
		p.printOutcome(prefix, *o)
		p.lastItem = -1
		return
	}

	step := int(e.Percent) / progressStep
	if e.Item == p.lastItem && e.Phase == p.lastPhase && step == p.lastStep {
		return
	}
	p.lastItem, p.lastPhase, p.lastStep = e.Item, e.Phase, step

	line := fmt.Sprintf("%s%3.0f%% %s", prefix, e.Percent, e.Phase)
	if e.Title != "" {
		line += " " + e.Title
	}
	if e.Message != "" {
		line += " (" + e.Message + ")"
	}
	fmt.Fprintln(p.w, line)
}

func (p *printer) printOutcome(prefix string, o model.Outcome) {
	switch o.Status {
	case model.StatusSucceeded:
		fmt.Fprintf(p.w, "%ssaved %s\n", prefix, o.OutputPath)
	case model.StatusDegraded:
		fmt.Fprintf(p.w, "%ssaved %s with warnings\n", prefix, o.OutputPath)
	case model.StatusCancelled:
		fmt.Fprintf(p.w, "%scancelled\n", prefix)
	default:
		fmt.Fprintf(p.w, "%sfailed: %v\n", prefix, o.Err)
	}
	for _, warning := range o.Warnings {
		fmt.Fprintf(p.w, "%s  warning: %s\n", prefix, warning)
	}
}
