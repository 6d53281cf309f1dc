package persistence

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/blockstore/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct {
	limit int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		return w.limit, errors.New("disk full")
	}
	return len(p), nil
}

func TestWriteImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	image := bytes.Repeat([]byte{0xAB}, 1024)

	t.Run("CreatesMissingFile", func(t *testing.T) {
		n, sum, err := WriteImageFile(nil, path, image)
		require.NoError(t, err)
		assert.Equal(t, len(image), n)
		assert.Equal(t, CalculateChecksum(image), sum)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, image, got)
	})

	t.Run("OverwritesExistingFile", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0x11}, 4096), 0o644))

		other := bytes.Repeat([]byte{0xCD}, 1024)
		n, _, err := WriteImageFile(nil, path, other)
		require.NoError(t, err)
		assert.Equal(t, len(other), n)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, other, got)
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		n, _, err := WriteImageFile(nil, filepath.Join(t.TempDir(), "nope", "disk.img"), image)
		assert.Error(t, err)
		assert.Zero(t, n)
	})
}

func TestWriteImage_ShortWriter(t *testing.T) {
	n, sum, err := WriteImage(&failingWriter{limit: 10}, make([]byte, 100))
	assert.Error(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, CalculateChecksum(make([]byte, 10)), sum)
}

func TestReadImage(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		dst := make([]byte, 8)
		n, err := ReadImage(bytes.NewReader([]byte("12345678")), dst)
		require.NoError(t, err)
		assert.Equal(t, 8, n)
		assert.Equal(t, "12345678", string(dst))
	})

	t.Run("LongerSourceStopsAtDestination", func(t *testing.T) {
		dst := make([]byte, 4)
		n, err := ReadImage(bytes.NewReader([]byte("12345678")), dst)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, "1234", string(dst))
	})

	t.Run("Short", func(t *testing.T) {
		dst := make([]byte, 8)
		n, err := ReadImage(bytes.NewReader([]byte("123")), dst)
		assert.Equal(t, 3, n)
		require.True(t, IsShortImage(err))

		var se *ShortImageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 8, se.Expected)
		assert.Equal(t, 3, se.Actual)
		assert.Equal(t, []byte{'1', '2', '3', 0, 0, 0, 0, 0}, dst)
	})

	t.Run("Empty", func(t *testing.T) {
		n, err := ReadImage(bytes.NewReader(nil), make([]byte, 8))
		assert.Zero(t, n)
		assert.ErrorIs(t, err, ErrEmptyImage)
	})
}

func TestReadImageFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadImageFile(nil, filepath.Join(dir, "missing.img"), make([]byte, 8))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "disk.img")
	require.NoError(t, os.WriteFile(path, []byte("abcdefgh"), 0o644))

	dst := make([]byte, 8)
	n, err := ReadImageFile(nil, path, dst)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "abcdefgh", string(dst))
}

func TestWriteImageFile_Faults(t *testing.T) {
	dir := t.TempDir()
	previous := bytes.Repeat([]byte{0x11}, 64)
	image := bytes.Repeat([]byte{0xAB}, 32)

	t.Run("PartialWriteKeepsTail", func(t *testing.T) {
		path := filepath.Join(dir, "partial.img")
		require.NoError(t, os.WriteFile(path, previous, 0o644))

		ffs := fs.NewFaultyFS(nil)
		ffs.AddRule("partial", fs.Fault{FailAfterBytes: 8})

		n, _, err := WriteImageFile(ffs, path, image)
		assert.ErrorIs(t, err, fs.ErrInjected)
		assert.Equal(t, 8, n)

		// Nothing was truncated: the old bytes after the failure point survive.
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, append(bytes.Repeat([]byte{0xAB}, 8), previous[8:]...), got)
	})

	t.Run("TruncateFailure", func(t *testing.T) {
		path := filepath.Join(dir, "trunc.img")
		require.NoError(t, os.WriteFile(path, previous, 0o644))

		ffs := fs.NewFaultyFS(nil)
		ffs.AddRule("trunc", fs.Fault{FailAfterBytes: -1, FailOnTruncate: true})

		_, _, err := WriteImageFile(ffs, path, image)
		assert.ErrorIs(t, err, fs.ErrInjected)
	})

	t.Run("CloseFailure", func(t *testing.T) {
		ffs := fs.NewFaultyFS(nil)
		ffs.AddRule("close", fs.Fault{FailAfterBytes: -1, FailOnClose: true})

		n, _, err := WriteImageFile(ffs, filepath.Join(dir, "close.img"), image)
		assert.ErrorIs(t, err, fs.ErrInjected)
		assert.Equal(t, len(image), n)
	})

	t.Run("OpenFailure", func(t *testing.T) {
		ffs := fs.NewFaultyFS(nil)
		ffs.AddRule("open", fs.Fault{FailOnOpen: true})

		_, err := ReadImageFile(ffs, filepath.Join(dir, "open.img"), make([]byte, 8))
		assert.ErrorIs(t, err, fs.ErrInjected)
	})
}
