package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytdx/internal/errs"
)

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestCopyChunks(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 2*ChunkSize+10)
	var dst bytes.Buffer
	var reports [][2]int64

	n, err := copyChunks(context.Background(), &dst, bytes.NewReader(payload), int64(len(payload)), func(done, total int64) {
		reports = append(reports, [2]int64{done, total})
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, dst.Bytes())

	total := int64(len(payload))
	assert.Equal(t, [][2]int64{{ChunkSize, total}, {2 * ChunkSize, total}, {total, total}}, reports)
}

func TestCopyChunks_ReadError(t *testing.T) {
	r := &failingReader{data: []byte("partial"), err: errors.New("connection reset")}

	n, err := copyChunks(context.Background(), io.Discard, r, 100, nil)
	assert.ErrorIs(t, err, errs.ErrDownload)
	assert.Equal(t, int64(7), n)
}

func TestCopyChunks_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := copyChunks(ctx, io.Discard, bytes.NewReader([]byte("data")), 4, nil)
	assert.ErrorIs(t, err, errs.ErrCancelled)
	assert.Zero(t, n)
}

func TestSizeMessage(t *testing.T) {
	if got := sizeMessage(0); got != "" {
		t.Errorf("sizeMessage(0) = %q, expected empty", got)
	}
	if got := sizeMessage(5_000_000); got != "5.0 MB" {
		t.Errorf("sizeMessage(5000000) = %q, expected %q", got, "5.0 MB")
	}
}
