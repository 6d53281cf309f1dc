// Package persistence reads and writes raw block device images.
//
// An image is a verbatim dump of a device's raw region:
//
//	offset 0                                   blockCount*blockSize
//	┌──────────────┬──────────────────────────┬─────────┬─────────┐
//	│ free bitmap  │ rest of block 0 payload  │ block 1 │   ...   │
//	└──────────────┴──────────────────────────┴─────────┴─────────┘
//	 ceil((blockCount-1)/8) bytes, LSB-first
//
// There is no header, magic number, version field or checksum. The bitmap is
// part of the payload bytes, so allocation state round-trips with the data.
//
// Reads fill as much of the destination as the source provides. An empty
// source is ErrEmptyImage; a source shorter than the destination reports a
// *ShortImageError together with the byte count, and callers decide whether
// to accept the partially filled region.
package persistence
