package bitvec

import (
	"errors"
	"fmt"
	"math/bits"
)

// NotFound is returned by FindFirstZero when every bit is set.
const NotFound = -1

// ErrInvalidLength is returned when a vector is overlaid with a non-positive bit count.
var ErrInvalidLength = errors.New("bitvec: bit count must be positive")

// Vector is a bit-addressable view over externally owned memory.
//
// The caller keeps ownership of the backing bytes and must keep them alive
// (and unmoved) for as long as the Vector is used.
type Vector struct {
	buf   []byte
	nbits int
}

// BytesFor returns the number of bytes needed to hold n bits.
func BytesFor(n int) int {
	return (n + 7) / 8
}

// Overlay creates a Vector of bitCount bits over the first BytesFor(bitCount)
// bytes of buf.
func Overlay(bitCount int, buf []byte) (*Vector, error) {
	if bitCount <= 0 {
		return nil, ErrInvalidLength
	}
	need := BytesFor(bitCount)
	if len(buf) < need {
		return nil, fmt.Errorf("bitvec: need %d bytes for %d bits, got %d", need, bitCount, len(buf))
	}
	return &Vector{
		buf:   buf[:need:need],
		nbits: bitCount,
	}, nil
}

// Capacity returns the number of addressable bits.
func (v *Vector) Capacity() int {
	return v.nbits
}

// Bytes returns the backing bytes of the view.
func (v *Vector) Bytes() []byte {
	return v.buf
}

// Test reports whether bit i is set.
func (v *Vector) Test(i int) bool {
	v.check(i)
	return v.buf[i>>3]&(1<<(uint(i)&7)) != 0
}

// Set sets bit i. Setting an already set bit is a no-op.
func (v *Vector) Set(i int) {
	v.check(i)
	v.buf[i>>3] |= 1 << (uint(i) & 7)
}

// Reset clears bit i. Clearing an already clear bit is a no-op.
func (v *Vector) Reset(i int) {
	v.check(i)
	v.buf[i>>3] &^= 1 << (uint(i) & 7)
}

// FindFirstZero returns the lowest clear bit. If every bit is set it returns
// (NotFound, false).
func (v *Vector) FindFirstZero() (int, bool) {
	for ix, b := range v.buf {
		if b == 0xff {
			continue
		}
		i := ix<<3 + bits.TrailingZeros8(^b)
		if i >= v.nbits {
			// Only the padding bits of the last byte were clear.
			break
		}
		return i, true
	}
	return NotFound, false
}

// TotalSet returns the number of set bits.
func (v *Vector) TotalSet() int {
	n := 0
	last := len(v.buf) - 1
	for ix := 0; ix < last; ix++ {
		n += bits.OnesCount8(v.buf[ix])
	}
	return n + bits.OnesCount8(v.buf[last]&v.tailMask())
}

// TotalClear returns the number of clear bits.
func (v *Vector) TotalClear() int {
	return v.nbits - v.TotalSet()
}

// ForEachSet calls fn for every set bit in ascending order until fn returns false.
func (v *Vector) ForEachSet(fn func(i int) bool) {
	for ix, b := range v.buf {
		for b != 0 {
			i := ix<<3 + bits.TrailingZeros8(b)
			if i >= v.nbits {
				return
			}
			if !fn(i) {
				return
			}
			b &= b - 1
		}
	}
}

// tailMask masks the bits of the last byte that belong to the vector.
func (v *Vector) tailMask() byte {
	if r := v.nbits & 7; r != 0 {
		return byte(1<<uint(r)) - 1
	}
	return 0xff
}

func (v *Vector) check(i int) {
	if i < 0 || i >= v.nbits {
		panic(fmt.Sprintf("bitvec: index %d out of range [0, %d)", i, v.nbits))
	}
}
