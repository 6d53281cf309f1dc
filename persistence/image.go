package persistence

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/blockstore/internal/fs"
)

// ErrEmptyImage is returned when an image source yields no bytes at all.
var ErrEmptyImage = errors.New("empty image")

// ShortImageError is returned when an image source ends before the
// destination region is full.
type ShortImageError struct {
	Expected int
	Actual   int
}

func (e *ShortImageError) Error() string {
	return fmt.Sprintf("short image: expected %d bytes, got %d", e.Expected, e.Actual)
}

// IsShortImage returns true if err is a short image error.
func IsShortImage(err error) bool {
	var se *ShortImageError
	return errors.As(err, &se)
}

// WriteImage writes image to w and returns the number of bytes written and
// the CRC32 of those bytes.
func WriteImage(w io.Writer, image []byte) (int, uint32, error) {
	cw := NewChecksumWriter(w)
	n, err := cw.Write(image)
	if err == nil && n < len(image) {
		err = io.ErrShortWrite
	}
	return n, cw.Sum(), err
}

// ReadImage fills dst from r and returns the number of bytes read.
func ReadImage(r io.Reader, dst []byte) (int, error) {
	n, err := io.ReadFull(r, dst)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		return 0, ErrEmptyImage
	case errors.Is(err, io.ErrUnexpectedEOF):
		return n, &ShortImageError{Expected: len(dst), Actual: n}
	default:
		return n, err
	}
}

// CreateImageFile opens path on fsys for writing an image, creating it if
// needed. A nil fsys uses the local file system.
//
// An existing file is overwritten in place from offset 0. It is not
// truncated up front, so a failed write never leaves an emptied file behind.
func CreateImageFile(fsys fs.FileSystem, path string) (fs.File, error) {
	return fs.OrDefault(fsys).OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
}

// WriteImageFile writes image to path. After a complete write the file is
// trimmed to exactly len(image) bytes.
func WriteImageFile(fsys fs.FileSystem, path string, image []byte) (int, uint32, error) {
	f, err := CreateImageFile(fsys, path)
	if err != nil {
		return 0, 0, err
	}

	n, sum, err := WriteImage(f, image)
	if err != nil {
		f.Close()
		return n, sum, err
	}

	if err := f.Truncate(int64(n)); err != nil {
		f.Close()
		return n, sum, err
	}

	if err := f.Close(); err != nil {
		return n, sum, err
	}
	return n, sum, nil
}

// ReadImageFile fills dst from the file at path, opened read-only.
func ReadImageFile(fsys fs.FileSystem, path string, dst []byte) (int, error) {
	f, err := fs.OrDefault(fsys).OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return ReadImage(f, dst)
}
