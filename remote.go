package blockstore

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/blockstore/blobstore"
	"github.com/hupe1980/blockstore/persistence"
)

// Export stores the raw region as the blob name in store and returns the
// number of bytes stored. The blob holds exactly the bytes SaveToFile would
// write.
func (d *Device) Export(ctx context.Context, store blobstore.Store, name string) (int, error) {
	if d.closed() {
		return 0, ErrClosed
	}

	start := time.Now()
	err := d.resources.AcquireIO(ctx, len(d.region))
	if err == nil {
		err = store.Put(ctx, name, d.region)
	}

	n := 0
	var crc uint32
	if err == nil {
		n = len(d.region)
		crc = persistence.CalculateChecksum(d.region)
	} else {
		err = fmt.Errorf("export %q: %w", name, err)
	}

	d.metrics.RecordSave(n, time.Since(start), err)
	d.logger.LogSave(ctx, name, n, crc, err)
	return n, err
}

// Import creates a device from the blob name in store. The blob is read
// under the same rules as NewFromFile.
func Import(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Device, error) {
	opts := buildOptions(optFns)

	blob, err := store.Open(ctx, name)
	if err != nil {
		opts.logger.LogLoad(ctx, name, 0, err)
		return nil, fmt.Errorf("import %q: %w", name, err)
	}
	defer blob.Close()

	return loadWith(ctx, opts, name, func(dst []byte) (int, error) {
		if err := opts.resources.AcquireIO(ctx, len(dst)); err != nil {
			return 0, err
		}
		return persistence.ReadImage(&blobReader{ctx: ctx, blob: blob}, dst)
	})
}

// blobReader reads a blob sequentially from offset 0.
type blobReader struct {
	ctx  context.Context
	blob blobstore.Blob
	off  int64
}

func (r *blobReader) Read(p []byte) (int, error) {
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	return n, err
}
