package blockstore

import (
	"github.com/hupe1980/blockstore/internal/fs"
	"github.com/hupe1980/blockstore/resource"
)

type options struct {
	geometry         Geometry
	logger           *Logger
	metricsCollector MetricsCollector
	resources        *resource.Controller
	mappedRegion     bool
	strictImageSize  bool
	fileSystem       fs.FileSystem
}

func defaultOptions() options {
	return options{
		geometry:         DefaultGeometry(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		fileSystem:       fs.Default,
	}
}

// Option configures device construction and image loading.
type Option func(*options)

// WithGeometry sets the number of physical blocks and the block size.
//
// The device exposes blockCount-1 block ids; the bitmap of
// ceil((blockCount-1)/8) bytes must fit inside block 0. The default is
// 256 blocks of 256 bytes. Images can only be loaded into a device of the
// same geometry they were saved from.
func WithGeometry(blockCount, blockSize int) Option {
	return func(o *options) {
		o.geometry = Geometry{BlockCount: blockCount, BlockSize: blockSize}
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector. If nil is passed, metrics are disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController accounts the raw region against rc's memory limit
// and throttles image transfers with rc's IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMappedRegion backs the raw region with an anonymous memory mapping
// instead of the Go heap. The mapping is released by Close.
func WithMappedRegion() Option {
	return func(o *options) {
		o.mappedRegion = true
	}
}

// WithStrictImageSize makes image loading fail with *ErrShortImage when the
// source is shorter than the image size. By default short images are
// accepted and the missing tail stays zero.
func WithStrictImageSize() Option {
	return func(o *options) {
		o.strictImageSize = true
	}
}

// WithFileSystem sets the file system used by SaveToFile and NewFromFile.
// If nil is passed, the local file system is used.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fileSystem = fs.OrDefault(fsys)
	}
}
