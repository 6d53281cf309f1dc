// Package resource bounds the memory and I/O throughput used by block devices.
//
//	┌───────────────────────────────────────────────┐
//	│                  Controller                   │
//	├───────────────────────┬───────────────────────┤
//	│  Memory Limit         │  IO Rate Limiter      │
//	│  (fail-fast, sem)     │  (token bucket)       │
//	├───────────────────────┼───────────────────────┤
//	│  AcquireMemory        │  AcquireIO            │
//	│  ReleaseMemory        │  RateLimitedWriter    │
//	│  MemoryUsage          │  RateLimitedReader    │
//	└───────────────────────┴───────────────────────┘
//
// A device acquires the size of its raw region when it is created and
// releases it on Close. Creating a device fails immediately with
// ErrMemoryLimitExceeded when the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 4 << 20, // 64 default-sized devices
//	})
//	dev, err := blockstore.New(blockstore.WithResourceController(rc))
//
// Image transfers (files, streams and blob stores) wait on the IO limiter.
//
// All methods are safe for concurrent use and treat a nil *Controller as
// unlimited.
package resource
