// Package bitvec provides a fixed-length bit view over a byte slice owned by
// someone else.
//
// A Vector never allocates or copies its backing bytes. It is used by the
// block device to interpret the first bytes of its own raw region as the free
// bitmap, so the allocation table lives inside the storage it manages and
// round-trips through an image dump without extra encoding.
//
// # Bit Order
//
// Bits are addressed LSB-first within each byte:
//
//	bit i  ->  buf[i/8] & (1 << (i%8))
//
// This order is part of the on-disk image format and must not change.
//
// # Complexity
//
// FindFirstZero, TotalSet and Capacity are recomputed from the backing bytes
// on every call. There is no cached counter, so writes to the backing bytes
// made through another view are always reflected.
package bitvec
