package blockstore

import (
	"math"

	"github.com/hupe1980/blockstore/internal/bitvec"
)

const (
	// DefaultBlockCount is the number of physical blocks of a default device.
	DefaultBlockCount = 256
	// DefaultBlockSize is the size in bytes of each block of a default device.
	DefaultBlockSize = 256
	// DefaultAvailableBlocks is the number of addressable block ids of a default
	// device. Block 0's storage also holds the free bitmap.
	DefaultAvailableBlocks = DefaultBlockCount - 1
	// DefaultImageSize is the size in bytes of a default device image.
	DefaultImageSize = DefaultBlockCount * DefaultBlockSize
)

// TotalBlocks returns the number of addressable block ids of a default device.
// It does not depend on any device instance.
func TotalBlocks() int {
	return DefaultAvailableBlocks
}

// Geometry describes the shape of a device and therefore of its image.
type Geometry struct {
	// BlockCount is the number of physical blocks, including the one that hosts the bitmap.
	BlockCount int
	// BlockSize is the size of every block in bytes.
	BlockSize int
}

// DefaultGeometry returns the 256 × 256 byte geometry.
func DefaultGeometry() Geometry {
	return Geometry{BlockCount: DefaultBlockCount, BlockSize: DefaultBlockSize}
}

// AvailableBlocks returns the number of addressable block ids.
func (g Geometry) AvailableBlocks() int {
	return g.BlockCount - 1
}

// ImageSize returns the size of the raw region in bytes.
func (g Geometry) ImageSize() int {
	return g.BlockCount * g.BlockSize
}

// BitmapBytes returns the number of leading region bytes that hold the bitmap.
func (g Geometry) BitmapBytes() int {
	return bitvec.BytesFor(g.AvailableBlocks())
}

// Validate checks that the geometry can host a device.
func (g Geometry) Validate() error {
	switch {
	case g.BlockCount < 2:
		return &ErrInvalidGeometry{Geometry: g, Reason: "block count must be at least 2"}
	case g.BlockSize < 1:
		return &ErrInvalidGeometry{Geometry: g, Reason: "block size must be positive"}
	case int64(g.BlockCount-1) >= math.MaxUint32:
		return &ErrInvalidGeometry{Geometry: g, Reason: "too many blocks for 32-bit ids"}
	case int64(g.BlockCount)*int64(g.BlockSize) > math.MaxInt32:
		return &ErrInvalidGeometry{Geometry: g, Reason: "image larger than 2 GiB"}
	case g.BitmapBytes() > g.BlockSize:
		return &ErrInvalidGeometry{Geometry: g, Reason: "bitmap does not fit in block 0"}
	}
	return nil
}
