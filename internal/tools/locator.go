package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ytget/ytdx/internal/errs"
)

// Probe settings
const (
	FFmpegName    = "ffmpeg"
	VersionFlag   = "-version"
	ProbeTimeout  = 10 * time.Second
	windowsSuffix = ".exe"
)

// ProbeFunc runs the candidate binary and returns its version output
type ProbeFunc func(ctx context.Context, path string) (string, error)

// Locator resolves the ffmpeg path: user override, PATH, then conventional
// install directories. A set override is authoritative. The result is cached
// until SetOverride or Refresh.
type Locator struct {
	mu       sync.Mutex
	override string
	resolved bool
	path     string
	version  string
	err      error

	probe      ProbeFunc
	lookPath   func(string) (string, error)
	candidates []string
	logger     *slog.Logger
}

// NewLocator creates a locator with an optional override path
func NewLocator(override string, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{
		override:   override,
		probe:      runVersion,
		lookPath:   exec.LookPath,
		candidates: ConventionalPaths(),
		logger:     logger,
	}
}

// SetOverride replaces the user override and drops the cached result
func (l *Locator) SetOverride(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.override = strings.TrimSpace(path)
	l.resolved = false
}

// Refresh drops the cached result so the next Locate probes again
func (l *Locator) Refresh() {
	l.mu.Lock()
	l.resolved = false
	l.mu.Unlock()
}

// Locate returns a runnable ffmpeg path or an ErrToolNotFound error
func (l *Locator) Locate(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.resolved {
		l.path, l.version, l.err = l.resolve(ctx, l.override)
		l.resolved = true
		if l.err != nil {
			l.logger.Warn("ffmpeg not available", "error", l.err)
		} else {
			l.logger.Info("ffmpeg located", "path", l.path, "version", l.version)
		}
	}
	return l.path, l.err
}

// Version returns the version string of the located binary
func (l *Locator) Version(ctx context.Context) (string, error) {
	if _, err := l.Locate(ctx); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version, nil
}

// Probe resolves as Locate would with the given override, leaving the
// cached result and the current override untouched
func (l *Locator) Probe(ctx context.Context, override string) (string, string, error) {
	return l.resolve(ctx, strings.TrimSpace(override))
}

func (l *Locator) resolve(ctx context.Context, override string) (string, string, error) {
	if override != "" {
		version, err := l.check(ctx, override)
		if err != nil {
			return "", "", errs.Wrap(errs.ErrToolNotFound, "ffmpeg override "+override, err)
		}
		return override, version, nil
	}

	var tried []string
	if p, err := l.lookPath(FFmpegName); err == nil {
		if version, err := l.check(ctx, p); err == nil {
			return p, version, nil
		}
		tried = append(tried, p)
	}

	for _, p := range l.candidates {
		version, err := l.check(ctx, p)
		if err == nil {
			return p, version, nil
		}
		tried = append(tried, p)
	}

	return "", "", errs.Wrap(errs.ErrToolNotFound, "locate ffmpeg",
		fmt.Errorf("not on PATH, tried %s", strings.Join(tried, ", ")))
}

// check verifies that path exists and answers the version probe
func (l *Locator) check(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	out, err := l.probe(ctx, path)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", path, err)
	}
	version := parseVersion(out)
	if version == "" {
		return "", errors.New("unrecognised version output")
	}
	return version, nil
}

// ConventionalPaths lists install locations checked after PATH
func ConventionalPaths() []string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		paths := []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
		if home != "" {
			paths = append(paths, filepath.Join(home, "ffmpeg", "bin", FFmpegName+windowsSuffix))
		}
		return paths
	case "darwin":
		paths := []string{"/opt/homebrew/bin/ffmpeg", "/usr/local/bin/ffmpeg"}
		if home != "" {
			paths = append(paths, filepath.Join(home, "ffmpeg", "bin", FFmpegName))
		}
		return paths
	default:
		paths := []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/snap/bin/ffmpeg"}
		if home != "" {
			paths = append(paths, filepath.Join(home, "ffmpeg", "bin", FFmpegName))
		}
		return paths
	}
}

func runVersion(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, VersionFlag).Output()
	return string(out), err
}

var (
	versionPattern = regexp.MustCompile(`version\s+([^\s,]+)`)
	genericPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)
)

// parseVersion extracts the version from the first output line.
// ffmpeg prints "ffmpeg version 6.0" or "ffmpeg version N-112345-g1234567".
func parseVersion(output string) string {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	if firstLine == "" {
		return ""
	}
	if m := versionPattern.FindStringSubmatch(firstLine); len(m) > 1 {
		return m[1]
	}
	if m := genericPattern.FindStringSubmatch(firstLine); len(m) > 1 {
		return m[1]
	}
	return ""
}
