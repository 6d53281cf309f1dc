package blockstore

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/hupe1980/blockstore/persistence"
	"github.com/hupe1980/blockstore/resource"
)

// SaveToFile writes the raw region verbatim to path and returns the number
// of bytes written.
//
// The file is created when missing and overwritten from offset 0 when
// present. After a complete write it is trimmed to ImageSize() bytes.
// On failure the count is 0.
func (d *Device) SaveToFile(path string) (int, error) {
	return d.saveWith(context.Background(), path, func() (int, uint32, error) {
		return persistence.WriteImageFile(d.fsys, path, d.region)
	})
}

// SaveToWriter writes the raw region verbatim to w and returns the number of
// bytes written. On failure the count is 0.
func (d *Device) SaveToWriter(w io.Writer) (int, error) {
	if d.closed() {
		return 0, ErrClosed
	}

	ctx := context.Background()
	if d.resources != nil {
		w = resource.NewRateLimitedWriter(ctx, w, d.resources)
	}
	return d.saveWith(ctx, "stream", func() (int, uint32, error) {
		return persistence.WriteImage(w, d.region)
	})
}

func (d *Device) saveWith(ctx context.Context, target string, write func() (int, uint32, error)) (int, error) {
	if d.closed() {
		return 0, ErrClosed
	}

	start := time.Now()
	n, crc, err := write()

	d.metrics.RecordSave(n, time.Since(start), err)
	d.logger.LogSave(ctx, target, n, crc, err)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// NewFromFile creates a fresh zeroed device and fills its raw region from the
// image file at path, which restores the free bitmap along with the payloads.
//
// It fails when the file cannot be opened or holds no bytes (ErrEmptyImage).
// A file shorter than the image size is accepted and the remaining bytes stay
// zero, unless WithStrictImageSize is given (*ErrShortImage). Bytes past the
// image size are ignored.
func NewFromFile(path string, optFns ...Option) (*Device, error) {
	opts := buildOptions(optFns)
	return loadWith(context.Background(), opts, path, func(dst []byte) (int, error) {
		return persistence.ReadImageFile(opts.fileSystem, path, dst)
	})
}

// NewFromReader is NewFromFile for an arbitrary image stream.
func NewFromReader(r io.Reader, optFns ...Option) (*Device, error) {
	ctx := context.Background()
	opts := buildOptions(optFns)
	if opts.resources != nil {
		r = resource.NewRateLimitedReader(ctx, r, opts.resources)
	}
	return loadWith(ctx, opts, "stream", func(dst []byte) (int, error) {
		return persistence.ReadImage(r, dst)
	})
}

func loadWith(ctx context.Context, opts options, source string, read func(dst []byte) (int, error)) (*Device, error) {
	d, err := newDevice(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	n, err := read(d.region)

	var short *ErrShortImage
	if errors.As(err, &short) && !opts.strictImageSize {
		d.logger.LogShortImage(ctx, source, short.Expected, short.Actual)
		err = nil
	}

	d.metrics.RecordLoad(n, time.Since(start), err)
	d.logger.LogLoad(ctx, source, n, err)
	if err != nil {
		_ = d.Close()
		return nil, err
	}

	d.recordUsage()
	return d, nil
}
