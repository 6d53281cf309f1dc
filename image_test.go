package blockstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/blockstore/internal/fs"
	"github.com/hupe1980/blockstore/resource"
	"github.com/hupe1980/blockstore/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populate(t *testing.T, d *Device, rng *testutil.RNG, n int) map[BlockID][]byte {
	t.Helper()

	payloads := make(map[BlockID][]byte)
	for i := 0; i < n; i++ {
		id, err := d.Allocate()
		require.NoError(t, err)
		if id == 0 {
			continue
		}
		payloads[id] = rng.Block(d.BlockSize())
		_, err = d.Write(id, payloads[id])
		require.NoError(t, err)
	}
	return payloads
}

func TestSaveAndLoadFile(t *testing.T) {
	rng := testutil.NewRNG(4711)
	path := filepath.Join(t.TempDir(), "device.img")

	d := newTestDevice(t)
	payloads := populate(t, d, rng, 20)
	d.Release(5)
	delete(payloads, 5)

	n, err := d.SaveToFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultImageSize, n)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, d.region, raw)

	loaded, err := NewFromFile(path)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, d.UsedBlocks(), loaded.UsedBlocks())
	assert.Equal(t, d.Layout().ToArray(), loaded.Layout().ToArray())
	assert.False(t, loaded.IsAllocated(5))

	for id, want := range payloads {
		buf := make([]byte, loaded.BlockSize())
		_, err := loaded.Read(id, buf)
		require.NoError(t, err)
		assert.Equal(t, want, buf, "block %d", id)
	}

	id, err := loaded.Allocate()
	require.NoError(t, err)
	assert.Equal(t, BlockID(5), id)
}

func TestSaveToFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.img")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xFF}, DefaultImageSize+100), 0o644))

	d := newTestDevice(t)
	_, err := d.Allocate()
	require.NoError(t, err)

	n, err := d.SaveToFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultImageSize, n)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, raw, DefaultImageSize)
	assert.Equal(t, d.region, raw)
}

func TestSaveToFileErrors(t *testing.T) {
	d := newTestDevice(t)

	n, err := d.SaveToFile(filepath.Join(t.TempDir(), "missing", "device.img"))
	assert.Zero(t, n)
	assert.Error(t, err)

	require.NoError(t, d.Close())
	n, err = d.SaveToFile(filepath.Join(t.TempDir(), "device.img"))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing", func(t *testing.T) {
		d, err := NewFromFile(filepath.Join(dir, "missing.img"))
		assert.Nil(t, d)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty.img")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		d, err := NewFromFile(path)
		assert.Nil(t, d)
		assert.ErrorIs(t, err, ErrEmptyImage)
	})

	t.Run("InvalidGeometry", func(t *testing.T) {
		d, err := NewFromFile(filepath.Join(dir, "missing.img"), WithGeometry(1, 1))
		assert.Nil(t, d)
		var target *ErrInvalidGeometry
		assert.ErrorAs(t, err, &target)
	})
}

func TestShortImage(t *testing.T) {
	// Bitmap marks ids 0 and 1; block 1 is half present.
	image := make([]byte, 256+128)
	image[0] = 0b11
	for i := 256; i < len(image); i++ {
		image[i] = 0x77
	}

	path := filepath.Join(t.TempDir(), "short.img")
	require.NoError(t, os.WriteFile(path, image, 0o644))

	t.Run("Lenient", func(t *testing.T) {
		d, err := NewFromFile(path)
		require.NoError(t, err)
		defer d.Close()

		assert.Equal(t, 2, d.UsedBlocks())

		buf := make([]byte, 256)
		_, err = d.Read(1, buf)
		require.NoError(t, err)
		assert.Equal(t, testutil.PatternBlock(128, 0x77), buf[:128])
		assert.Equal(t, make([]byte, 128), buf[128:])
	})

	t.Run("Strict", func(t *testing.T) {
		d, err := NewFromFile(path, WithStrictImageSize())
		assert.Nil(t, d)

		var target *ErrShortImage
		require.ErrorAs(t, err, &target)
		assert.Equal(t, DefaultImageSize, target.Expected)
		assert.Equal(t, len(image), target.Actual)
	})
}

func TestLongImageIgnoresTail(t *testing.T) {
	image := make([]byte, 36+10)
	image[0] = 0b1
	for i := 36; i < len(image); i++ {
		image[i] = 0xFF
	}

	d, err := NewFromReader(bytes.NewReader(image), WithGeometry(9, 4))
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, 1, d.UsedBlocks())
	assert.Equal(t, image[:36], d.region)
}

func TestSaveAndLoadStream(t *testing.T) {
	rng := testutil.NewRNG(7)
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})

	d := newTestDevice(t, WithResourceController(rc))
	payloads := populate(t, d, rng, 8)

	var buf bytes.Buffer
	n, err := d.SaveToWriter(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultImageSize, n)

	loaded, err := NewFromReader(&buf, WithResourceController(rc))
	require.NoError(t, err)
	defer loaded.Close()

	for id, want := range payloads {
		got := make([]byte, loaded.BlockSize())
		_, err := loaded.Read(id, got)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.after {
		return w.after, errors.New("disk full")
	}
	return len(p), nil
}

func TestSaveToWriterFailure(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	d := newTestDevice(t, WithMetricsCollector(metrics))

	n, err := d.SaveToWriter(&failingWriter{after: 100})
	assert.Zero(t, n)
	assert.EqualError(t, err, "disk full")

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.SaveCount)
	assert.Equal(t, int64(1), stats.SaveErrors)
}

func TestSaveToFileFault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.img")
	previous := bytes.Repeat([]byte{0x99}, DefaultImageSize)
	require.NoError(t, os.WriteFile(path, previous, 0o644))

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("device.img", fs.Fault{FailAfterBytes: 1000})

	metrics := &BasicMetricsCollector{}
	d := newTestDevice(t, WithFileSystem(ffs), WithMetricsCollector(metrics))

	n, err := d.SaveToFile(path)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.Equal(t, int64(1), metrics.GetStats().SaveErrors)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, raw, DefaultImageSize)
	assert.Equal(t, previous[1000:], raw[1000:])

	// A device loaded through the faulty file system reads normally.
	loaded, err := NewFromFile(path, WithFileSystem(ffs))
	require.NoError(t, err)
	defer loaded.Close()
	assert.Equal(t, raw, loaded.region)
}
