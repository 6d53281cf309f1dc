// Package mmap provides memory-mapped file access and anonymous mappings.
//
// # Usage
//
//	m, err := mmap.Open("disk.img")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-copy, read-only
//
// Anonymous mappings hand out zeroed, writable memory outside the Go heap.
// The block device uses them as an optional backing for its raw region:
//
//	m, err := mmap.MapAnon(65536)
//	region := m.Bytes()
//
// # Platform Support
//
//   - Unix: mmap(2) / madvise(2) via golang.org/x/sys/unix
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc via golang.org/x/sys/windows
//
// Close is idempotent. Callers must not touch Bytes() after Close returns.
package mmap
