package blockstore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/blockstore/persistence"
)

var (
	// ErrClosed is returned by operations on a closed (or nil) device.
	ErrClosed = errors.New("device is closed")

	// ErrOutOfSpace is returned by Allocate when every block id is in use.
	ErrOutOfSpace = errors.New("device is out of space")

	// ErrBlockInUse is returned by Request when the id is already allocated.
	ErrBlockInUse = errors.New("block is already allocated")

	// ErrBlockNotAllocated is returned by Read and Write on a free block id.
	ErrBlockNotAllocated = errors.New("block is not allocated")

	// ErrEmptyImage is returned when an image source yields no bytes.
	ErrEmptyImage = persistence.ErrEmptyImage
)

// ErrShortImage is returned in strict mode when an image source ends before
// the region is full. Without strict mode short images are accepted and the
// missing tail stays zero.
type ErrShortImage = persistence.ShortImageError

// ErrBlockOutOfRange indicates a block id outside [0, Limit).
type ErrBlockOutOfRange struct {
	ID    BlockID
	Limit int
}

func (e *ErrBlockOutOfRange) Error() string {
	return fmt.Sprintf("block id %d out of range [0, %d)", e.ID, e.Limit)
}

// ErrShortBuffer indicates a caller buffer smaller than one block.
type ErrShortBuffer struct {
	Expected int
	Actual   int
}

func (e *ErrShortBuffer) Error() string {
	return fmt.Sprintf("buffer too small: expected at least %d bytes, got %d", e.Expected, e.Actual)
}

// ErrInvalidGeometry indicates a geometry that cannot host a device.
type ErrInvalidGeometry struct {
	Geometry Geometry
	Reason   string
}

func (e *ErrInvalidGeometry) Error() string {
	return fmt.Sprintf("invalid geometry %d×%d: %s", e.Geometry.BlockCount, e.Geometry.BlockSize, e.Reason)
}

// ErrRegionAllocation indicates the raw region could not be obtained.
//
// The underlying error can be accessed via errors.Unwrap.
type ErrRegionAllocation struct {
	Size  int
	cause error
}

func (e *ErrRegionAllocation) Error() string {
	return fmt.Sprintf("allocate %d byte region: %v", e.Size, e.cause)
}

func (e *ErrRegionAllocation) Unwrap() error { return e.cause }
