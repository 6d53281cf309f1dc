package fs

import (
	"io"
	"os"
)

// File represents an open image file.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Truncate(size int64) error
}

// FileSystem abstracts the file operations image persistence needs.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Stat(name string) (os.FileInfo, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// OrDefault returns fsys, or Default when fsys is nil.
func OrDefault(fsys FileSystem) FileSystem {
	if fsys == nil {
		return Default
	}
	return fsys
}
