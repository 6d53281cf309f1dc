package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	blobName := "images/disk-001.img"
	data := []byte("hello world, this is a test image")

	require.NoError(t, store.Put(ctx, blobName, data))

	_, err := os.Stat(filepath.Join(tmpDir, "images", "disk-001.img"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	tail := make([]byte, 10)
	n, err = blob.ReadAt(ctx, tail, int64(len(data)-4))
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 4, n)
	require.Equal(t, "mage", string(tail[:n]))

	require.NoError(t, store.Put(ctx, "disk-002.img", []byte("x")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"disk-002.img", blobName}, names)

	names, err = store.List(ctx, "images/")
	require.NoError(t, err)
	require.Equal(t, []string{blobName}, names)

	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName))

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"disk-002.img"}, names)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_PutReplaces(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "disk.img", []byte("first version")))
	require.NoError(t, store.Put(ctx, "disk.img", []byte("v2")))

	blob, err := store.Open(ctx, "disk.img")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, blob.Size())
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "v2", string(buf))
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, names)
}
