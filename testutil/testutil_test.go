package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlock(t *testing.T) {
	rng := NewRNG(4711)

	b := rng.Block(64)
	assert.Len(t, b, 64)

	rng.Reset()
	assert.Equal(t, b, rng.Block(64))
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestBlocks(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Blocks(8, 32)

	assert.Len(t, v, 8)
	assert.Len(t, v[0], 32)
	assert.NotEqual(t, v[0], v[1])
}

func TestPerm(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.Perm(16)
	assert.Len(t, p, 16)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, p)
}

func TestPatternAndSentinel(t *testing.T) {
	assert.Equal(t, []byte{0xAB, 0xAB, 0xAB}, PatternBlock(3, 0xAB))

	buf := SentinelBuffer(16)
	assert.True(t, IsSentinel(buf))

	buf[7] = 0
	assert.False(t, IsSentinel(buf))
}
