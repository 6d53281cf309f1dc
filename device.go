package blockstore

import (
	"context"
	"math"

	"github.com/hupe1980/blockstore/internal/bitvec"
	"github.com/hupe1980/blockstore/internal/fs"
	"github.com/hupe1980/blockstore/internal/mmap"
	"github.com/hupe1980/blockstore/resource"
)

// BlockID names one payload block. It is also the block's index in the free bitmap.
type BlockID uint32

// InvalidBlockID is returned together with ErrOutOfSpace. It is never a valid id.
const InvalidBlockID BlockID = math.MaxUint32

// Device is a fixed-capacity block storage device.
//
// The raw region is the only storage a Device owns. The free bitmap and the
// block payloads are two views over it with the same lifetime; see the
// package documentation for the exact layout.
type Device struct {
	geo     Geometry
	region  []byte
	mapping *mmap.Mapping // non-nil when the region is an anonymous mapping
	fbm     *bitvec.Vector

	logger    *Logger
	metrics   MetricsCollector
	resources *resource.Controller
	fsys      fs.FileSystem
}

// Stats is a snapshot of device usage.
type Stats struct {
	UsedBlocks  int
	FreeBlocks  int
	TotalBlocks int
	BlockSize   int
	ImageSize   int
}

// New creates a zero-initialised device: every byte is zero and every block id is free.
func New(optFns ...Option) (*Device, error) {
	return newDevice(buildOptions(optFns))
}

func buildOptions(optFns []Option) options {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

func newDevice(opts options) (*Device, error) {
	geo := opts.geometry
	if err := geo.Validate(); err != nil {
		return nil, err
	}

	size := geo.ImageSize()
	if err := opts.resources.AcquireMemory(int64(size)); err != nil {
		return nil, &ErrRegionAllocation{Size: size, cause: err}
	}

	d := &Device{
		geo:       geo,
		logger:    opts.logger.WithGeometry(geo),
		metrics:   opts.metricsCollector,
		resources: opts.resources,
		fsys:      opts.fileSystem,
	}

	if opts.mappedRegion {
		m, err := mmap.MapAnon(size)
		if err != nil {
			opts.resources.ReleaseMemory(int64(size))
			return nil, &ErrRegionAllocation{Size: size, cause: err}
		}
		d.mapping = m
		d.region = m.Bytes()
	} else {
		d.region = make([]byte, size)
	}

	fbm, err := bitvec.Overlay(geo.AvailableBlocks(), d.bitmapBytes())
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.fbm = fbm

	return d, nil
}

// Close releases the raw region and the bitmap view. It is idempotent and
// safe to call on a nil device.
func (d *Device) Close() error {
	if d == nil || d.region == nil {
		return nil
	}

	size := len(d.region)
	d.region = nil
	d.fbm = nil

	var err error
	if d.mapping != nil {
		err = d.mapping.Close()
		d.mapping = nil
	}
	d.resources.ReleaseMemory(int64(size))
	return err
}

func (d *Device) closed() bool {
	return d == nil || d.region == nil
}

// bitmapBytes is the bitmap view: the leading bytes of block 0.
func (d *Device) bitmapBytes() []byte {
	return d.region[:d.geo.BitmapBytes()]
}

// blockBytes is the payload view of block id. The view of id 0 starts with
// the bitmap bytes.
func (d *Device) blockBytes(id BlockID) []byte {
	off := int(id) * d.geo.BlockSize
	end := off + d.geo.BlockSize
	return d.region[off:end:end]
}

func (d *Device) checkID(id BlockID) error {
	if int64(id) >= int64(d.geo.AvailableBlocks()) {
		return &ErrBlockOutOfRange{ID: id, Limit: d.geo.AvailableBlocks()}
	}
	return nil
}

func (d *Device) recordUsage() {
	d.metrics.RecordUsage(d.fbm.TotalSet(), d.fbm.Capacity())
}

// Allocate claims the lowest free block id.
//
// It returns InvalidBlockID and ErrOutOfSpace when every id is in use.
func (d *Device) Allocate() (BlockID, error) {
	if d.closed() {
		return InvalidBlockID, ErrClosed
	}

	i, ok := d.fbm.FindFirstZero()
	if !ok {
		d.logger.LogAllocate(context.Background(), "allocate", InvalidBlockID, ErrOutOfSpace)
		d.metrics.RecordAllocate(ErrOutOfSpace)
		return InvalidBlockID, ErrOutOfSpace
	}

	d.fbm.Set(i)
	id := BlockID(i)

	d.logger.LogAllocate(context.Background(), "allocate", id, nil)
	d.metrics.RecordAllocate(nil)
	d.recordUsage()
	return id, nil
}

// Request claims the specific block id. Unlike Allocate it never picks a
// different id: it fails with *ErrBlockOutOfRange or ErrBlockInUse instead.
func (d *Device) Request(id BlockID) error {
	if d.closed() {
		return ErrClosed
	}

	err := d.checkID(id)
	if err == nil && d.fbm.Test(int(id)) {
		err = ErrBlockInUse
	}
	if err == nil {
		d.fbm.Set(int(id))
	}

	d.logger.LogAllocate(context.Background(), "request", id, err)
	d.metrics.RecordAllocate(err)
	if err != nil {
		return err
	}
	d.recordUsage()
	return nil
}

// Release frees block id. Out-of-range ids are ignored and releasing a free
// id is a no-op. The block's payload bytes are left as they are.
func (d *Device) Release(id BlockID) {
	if d.closed() || d.checkID(id) != nil {
		return
	}

	was := d.fbm.Test(int(id))
	d.fbm.Reset(int(id))

	d.logger.LogRelease(context.Background(), id, was)
	d.metrics.RecordRelease()
	d.recordUsage()
}

// IsAllocated reports whether block id is currently allocated.
func (d *Device) IsAllocated(id BlockID) bool {
	if d.closed() || d.checkID(id) != nil {
		return false
	}
	return d.fbm.Test(int(id))
}

// UsedBlocks returns the number of allocated block ids.
func (d *Device) UsedBlocks() int {
	if d.closed() {
		return 0
	}
	return d.fbm.TotalSet()
}

// FreeBlocks returns the number of free block ids.
func (d *Device) FreeBlocks() int {
	if d.closed() {
		return 0
	}
	return d.fbm.TotalClear()
}

// TotalBlocks returns the number of block ids of this device's geometry.
// A closed device reports 0, so UsedBlocks()+FreeBlocks() == TotalBlocks()
// holds for every handle.
func (d *Device) TotalBlocks() int {
	if d.closed() {
		return 0
	}
	return d.geo.AvailableBlocks()
}

// BlockSize returns the size of one block in bytes, or 0 for a closed device.
func (d *Device) BlockSize() int {
	if d.closed() {
		return 0
	}
	return d.geo.BlockSize
}

// ImageSize returns the size of the raw region, and so of a saved image, in
// bytes. A closed device reports 0.
func (d *Device) ImageSize() int {
	if d.closed() {
		return 0
	}
	return d.geo.ImageSize()
}

// Geometry returns the device geometry, or the zero Geometry for a closed device.
func (d *Device) Geometry() Geometry {
	if d.closed() {
		return Geometry{}
	}
	return d.geo
}

// Stats returns a snapshot of device usage. A closed device reports zeros.
func (d *Device) Stats() Stats {
	return Stats{
		UsedBlocks:  d.UsedBlocks(),
		FreeBlocks:  d.FreeBlocks(),
		TotalBlocks: d.TotalBlocks(),
		BlockSize:   d.BlockSize(),
		ImageSize:   d.ImageSize(),
	}
}

func (d *Device) checkAccess(id BlockID, bufLen int) error {
	if err := d.checkID(id); err != nil {
		return err
	}
	if bufLen < d.geo.BlockSize {
		return &ErrShortBuffer{Expected: d.geo.BlockSize, Actual: bufLen}
	}
	if !d.fbm.Test(int(id)) {
		return ErrBlockNotAllocated
	}
	return nil
}

// Read copies exactly BlockSize() bytes of block id into buf and returns
// that count. The id must be allocated and buf must hold at least one block.
// On failure it returns 0 and buf is left untouched.
func (d *Device) Read(id BlockID, buf []byte) (int, error) {
	if d.closed() {
		return 0, ErrClosed
	}

	n := 0
	err := d.checkAccess(id, len(buf))
	if err == nil {
		n = copy(buf, d.blockBytes(id))
	}

	d.logger.LogAccess(context.Background(), "read", id, err)
	d.metrics.RecordRead(n, err)
	return n, err
}

// Write copies the first BlockSize() bytes of buf into block id and returns
// that count. The id must be allocated and buf must hold at least one block.
// On failure it returns 0 and the device is left untouched.
//
// Writing block 0 overwrites the free bitmap with the leading bytes of buf.
func (d *Device) Write(id BlockID, buf []byte) (int, error) {
	if d.closed() {
		return 0, ErrClosed
	}

	n := 0
	err := d.checkAccess(id, len(buf))
	if err == nil {
		n = copy(d.blockBytes(id), buf)
	}

	d.logger.LogAccess(context.Background(), "write", id, err)
	d.metrics.RecordWrite(n, err)
	if err == nil && id == 0 {
		d.recordUsage()
	}
	return n, err
}
