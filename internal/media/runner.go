package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// stderrTailLines is how much ffmpeg output is kept for error messages
const stderrTailLines = 12

// Runner executes one ffmpeg invocation. onProgress receives the output
// position reported by ffmpeg and may be nil.
type Runner interface {
	Run(ctx context.Context, bin string, args []string, onProgress func(time.Duration)) error
}

// ExecRunner runs ffmpeg as a subprocess
type ExecRunner struct{}

// Run starts bin with args and waits for it to exit
func (ExecRunner) Run(ctx context.Context, bin string, args []string, onProgress func(time.Duration)) error {
	cmd := exec.CommandContext(ctx, bin, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	tail := scanProgress(stderr, onProgress)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.Join(tail, " | "))
	}
	return nil
}

// scanProgress reads ffmpeg's stderr until EOF, forwarding out_time_us
// values and returning the last few non-progress lines.
func scanProgress(r io.Reader, onProgress func(time.Duration)) []string {
	var tail []string
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Parse progress line: out_time_us=123456
		if strings.HasPrefix(line, ProgressTimePrefix) {
			us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
			if err == nil && us >= 0 && onProgress != nil {
				onProgress(time.Duration(us) * time.Microsecond)
			}
			continue
		}
		if line == "" || strings.Contains(line, "=") && !strings.Contains(line, " ") {
			continue
		}
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}
	return tail
}
