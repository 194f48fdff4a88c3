package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytdx/internal/errs"
)

const fakeVersionOutput = "ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers\nbuilt with gcc"

func fakeBinary(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), 0755))
	return p
}

func testLocator(override string, probe ProbeFunc, lookPath func(string) (string, error), candidates ...string) (*Locator, *int) {
	calls := 0
	l := NewLocator(override, nil)
	l.probe = func(ctx context.Context, path string) (string, error) {
		calls++
		return probe(ctx, path)
	}
	l.lookPath = lookPath
	l.candidates = candidates
	return l, &calls
}

func okProbe(context.Context, string) (string, error) { return fakeVersionOutput, nil }

func notOnPath(string) (string, error) { return "", errors.New("not found") }

func TestLocate_OverrideWins(t *testing.T) {
	override := fakeBinary(t, t.TempDir())
	onPath := fakeBinary(t, t.TempDir())

	l, _ := testLocator(override, okProbe, func(string) (string, error) { return onPath, nil })

	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, override, got)
}

func TestLocate_InvalidOverrideDoesNotFallBack(t *testing.T) {
	onPath := fakeBinary(t, t.TempDir())
	l, _ := testLocator(filepath.Join(t.TempDir(), "missing-ffmpeg"), okProbe,
		func(string) (string, error) { return onPath, nil })

	_, err := l.Locate(context.Background())
	assert.ErrorIs(t, err, errs.ErrToolNotFound)
	assert.ErrorIs(t, err, errs.ErrMerge)
}

func TestLocate_PathThenConventional(t *testing.T) {
	conventional := fakeBinary(t, t.TempDir())

	l, _ := testLocator("", okProbe, notOnPath, filepath.Join(t.TempDir(), "nope"), conventional)

	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, conventional, got)

	version, err := l.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "6.1.1", version)
}

func TestLocate_ProbeFailureSkipsCandidate(t *testing.T) {
	broken := fakeBinary(t, t.TempDir())
	good := fakeBinary(t, t.TempDir())

	probe := func(_ context.Context, p string) (string, error) {
		if p == broken {
			return "", errors.New("exit status 1")
		}
		return fakeVersionOutput, nil
	}
	l, _ := testLocator("", probe, func(string) (string, error) { return broken, nil }, good)

	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, good, got)
}

func TestLocate_NothingFound(t *testing.T) {
	l, _ := testLocator("", okProbe, notOnPath)

	_, err := l.Locate(context.Background())
	assert.ErrorIs(t, err, errs.ErrToolNotFound)
}

func TestLocate_CachedUntilOverrideChanges(t *testing.T) {
	first := fakeBinary(t, t.TempDir())
	second := fakeBinary(t, t.TempDir())

	l, calls := testLocator(first, okProbe, notOnPath)

	for i := 0; i < 3; i++ {
		_, err := l.Locate(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, *calls)

	l.SetOverride(second)
	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Equal(t, 2, *calls)

	l.Refresh()
	_, _ = l.Locate(context.Background())
	assert.Equal(t, 3, *calls)
}

func TestProbe_LeavesCacheAlone(t *testing.T) {
	live := fakeBinary(t, t.TempDir())
	candidate := fakeBinary(t, t.TempDir())

	l, _ := testLocator(live, okProbe, notOnPath)
	_, err := l.Locate(context.Background())
	require.NoError(t, err)

	path, version, err := l.Probe(context.Background(), "  "+candidate+" ")
	require.NoError(t, err)
	assert.Equal(t, candidate, path)
	assert.Equal(t, "6.1.1", version)

	_, _, err = l.Probe(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, errs.ErrToolNotFound)

	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live, got)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{fakeVersionOutput, "6.1.1"},
		{"ffmpeg version N-112345-g1234567 Copyright", "N-112345-g1234567"},
		{"ffmpeg 5.1", "5.1"},
		{"", ""},
		{"garbage", ""},
	}

	for _, test := range tests {
		if got := parseVersion(test.input); got != test.expected {
			t.Errorf("parseVersion(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestConventionalPathsNotEmpty(t *testing.T) {
	assert.NotEmpty(t, ConventionalPaths())
}
