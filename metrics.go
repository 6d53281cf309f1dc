package blockstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// promcollector package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordAllocate is called after Allocate and Request.
	RecordAllocate(err error)

	// RecordRelease is called after each Release of an in-range id.
	RecordRelease()

	// RecordRead is called after each Read. bytes is 0 on failure.
	RecordRead(bytes int, err error)

	// RecordWrite is called after each Write. bytes is 0 on failure.
	RecordWrite(bytes int, err error)

	// RecordSave is called after an image has been written to a file, stream or store.
	RecordSave(bytes int, duration time.Duration, err error)

	// RecordLoad is called after an image has been read from a file, stream or store.
	RecordLoad(bytes int, duration time.Duration, err error)

	// RecordUsage is called whenever the number of used blocks changes.
	RecordUsage(used, total int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocate(error)                 {}
func (NoopMetricsCollector) RecordRelease()                       {}
func (NoopMetricsCollector) RecordRead(int, error)                {}
func (NoopMetricsCollector) RecordWrite(int, error)               {}
func (NoopMetricsCollector) RecordSave(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordUsage(int, int)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocateCount  atomic.Int64
	AllocateErrors atomic.Int64
	ReleaseCount   atomic.Int64
	ReadCount      atomic.Int64
	ReadErrors     atomic.Int64
	ReadBytes      atomic.Int64
	WriteCount     atomic.Int64
	WriteErrors    atomic.Int64
	WriteBytes     atomic.Int64
	SaveCount      atomic.Int64
	SaveErrors     atomic.Int64
	SaveTotalNanos atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadTotalNanos atomic.Int64
	UsedBlocks     atomic.Int64
	TotalBlocks    atomic.Int64
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(err error) {
	b.AllocateCount.Add(1)
	if err != nil {
		b.AllocateErrors.Add(1)
	}
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease() {
	b.ReleaseCount.Add(1)
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(bytes int, err error) {
	b.ReadCount.Add(1)
	b.ReadBytes.Add(int64(bytes))
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(bytes int, err error) {
	b.WriteCount.Add(1)
	b.WriteBytes.Add(int64(bytes))
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(_ int, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordUsage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUsage(used, total int) {
	b.UsedBlocks.Store(int64(used))
	b.TotalBlocks.Store(int64(total))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocateCount:  b.AllocateCount.Load(),
		AllocateErrors: b.AllocateErrors.Load(),
		ReleaseCount:   b.ReleaseCount.Load(),
		ReadCount:      b.ReadCount.Load(),
		ReadErrors:     b.ReadErrors.Load(),
		ReadBytes:      b.ReadBytes.Load(),
		WriteCount:     b.WriteCount.Load(),
		WriteErrors:    b.WriteErrors.Load(),
		WriteBytes:     b.WriteBytes.Load(),
		SaveCount:      b.SaveCount.Load(),
		SaveErrors:     b.SaveErrors.Load(),
		SaveAvgNanos:   avg(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadAvgNanos:   avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		UsedBlocks:     b.UsedBlocks.Load(),
		TotalBlocks:    b.TotalBlocks.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocateCount  int64
	AllocateErrors int64
	ReleaseCount   int64
	ReadCount      int64
	ReadErrors     int64
	ReadBytes      int64
	WriteCount     int64
	WriteErrors    int64
	WriteBytes     int64
	SaveCount      int64
	SaveErrors     int64
	SaveAvgNanos   int64
	LoadCount      int64
	LoadErrors     int64
	LoadAvgNanos   int64
	UsedBlocks     int64
	TotalBlocks    int64
}
