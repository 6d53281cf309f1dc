package testutil

import (
	"bytes"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Fill fills buf with pseudo-random bytes.
func (r *RNG) Fill(buf []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.rand.Read(buf)
}

// Block returns a new block of size pseudo-random bytes.
func (r *RNG) Block(size int) []byte {
	buf := make([]byte, size)
	r.Fill(buf)
	return buf
}

// Blocks returns n blocks of size pseudo-random bytes.
func (r *RNG) Blocks(n, size int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = r.Block(size)
	}
	return out
}

// PatternBlock returns a block of size bytes all equal to b.
func PatternBlock(size int, b byte) []byte {
	return bytes.Repeat([]byte{b}, size)
}

// SentinelBuffer returns a buffer of size bytes filled with 0xEE, used to
// detect writes into a buffer that should stay untouched.
func SentinelBuffer(size int) []byte {
	return PatternBlock(size, 0xEE)
}

// IsSentinel reports whether buf still holds only the SentinelBuffer fill.
func IsSentinel(buf []byte) bool {
	for _, b := range buf {
		if b != 0xEE {
			return false
		}
	}
	return true
}
