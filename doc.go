// Package blockstore provides a fixed-capacity block storage device whose
// allocation bitmap is embedded in the storage it manages.
//
// A Device owns one contiguous raw region of blockCount × blockSize bytes.
// The first ceil((blockCount-1)/8) bytes of that region double as the free
// bitmap, so the region is self-describing and a verbatim dump of it is the
// complete on-disk image.
//
// # Quick Start
//
//	dev, err := blockstore.New()
//	if err != nil { ... }
//	defer dev.Close()
//
//	id, err := dev.Allocate()             // lowest free id
//	_, err = dev.Write(id, payload)        // exactly BlockSize() bytes
//	_, err = dev.Read(id, buf)
//
//	_, err = dev.SaveToFile("disk.img")    // 65536-byte image
//	dev2, err := blockstore.NewFromFile("disk.img")
//
// # Layout
//
// With the default geometry (256 blocks of 256 bytes):
//
//	region offset   0 ........ 31 | 32 ..... 255 | 256 ..... 511 | ... | 65280 .. 65535
//	                 free bitmap   |  block 0 rest |    block 1    | ... |    block 255
//	                 (255 bits)    |               |               |     |
//	block id 0 payload = region[0:256]  (overlaps the bitmap)
//
// Block ids range over [0, TotalBlocks()). The bitmap has one bit per id,
// LSB-first within each byte; bit i is set iff id i is allocated.
//
// Block id 0 is special: its payload is block 0's bytes, which begin with
// the bitmap itself. Reading id 0 returns the raw allocation table, and
// writing id 0 replaces it. The image format depends on this overlap, so it
// is kept rather than hidden.
//
// # Errors
//
// Validation happens before any memory is touched. A failed Read leaves the
// destination buffer untouched and a failed Write leaves the region
// untouched; both report 0 bytes. Use errors.Is / errors.As with the exported
// error values and types.
//
// # Concurrency
//
// A Device is not safe for concurrent use. Callers that share one across
// goroutines must serialise access themselves.
package blockstore
