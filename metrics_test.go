package blockstore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}
	d := newTestDevice(t, WithGeometry(5, 4), WithMetricsCollector(mc))

	for i := 0; i < 5; i++ {
		_, _ = d.Allocate()
	}
	d.Release(2)

	buf := make([]byte, 4)
	_, err := d.Read(1, buf)
	require.NoError(t, err)
	_, err = d.Read(2, buf)
	require.Error(t, err)
	_, err = d.Write(3, buf)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(5), stats.AllocateCount)
	assert.Equal(t, int64(1), stats.AllocateErrors)
	assert.Equal(t, int64(1), stats.ReleaseCount)
	assert.Equal(t, int64(2), stats.ReadCount)
	assert.Equal(t, int64(1), stats.ReadErrors)
	assert.Equal(t, int64(4), stats.ReadBytes)
	assert.Equal(t, int64(1), stats.WriteCount)
	assert.Equal(t, int64(4), stats.WriteBytes)
	assert.Equal(t, int64(3), stats.UsedBlocks)
	assert.Equal(t, int64(4), stats.TotalBlocks)
}

func TestBasicMetricsCollectorAverages(t *testing.T) {
	mc := &BasicMetricsCollector{}

	mc.RecordSave(10, 2*time.Millisecond, nil)
	mc.RecordSave(10, 4*time.Millisecond, errors.New("boom"))
	mc.RecordLoad(10, time.Millisecond, nil)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.SaveCount)
	assert.Equal(t, int64(1), stats.SaveErrors)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), stats.SaveAvgNanos)
	assert.Equal(t, time.Millisecond.Nanoseconds(), stats.LoadAvgNanos)
	assert.Zero(t, (&BasicMetricsCollector{}).GetStats().LoadAvgNanos)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d := newTestDevice(t, WithGeometry(3, 1), WithLogger(logger.WithDevice("test")))

	_, err := d.Allocate()
	require.NoError(t, err)
	_, err = d.Allocate()
	require.NoError(t, err)
	_, err = d.Allocate()
	require.ErrorIs(t, err, ErrOutOfSpace)

	out := buf.String()
	assert.Contains(t, out, `"device":"test"`)
	assert.Contains(t, out, `"level":"ERROR","msg":"allocate failed"`)
	assert.Contains(t, out, ErrOutOfSpace.Error())
	assert.Contains(t, out, `"level":"DEBUG","msg":"allocate completed"`)

	buf.Reset()
	_, err = d.Read(0, make([]byte, 1))
	require.NoError(t, err)
	_, err = d.Read(1, nil)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"DEBUG","msg":"read completed"`)
	assert.Contains(t, buf.String(), `"level":"ERROR","msg":"read failed"`)

	buf.Reset()
	assert.ErrorIs(t, d.Request(0), ErrBlockInUse)
	assert.Contains(t, buf.String(), `"level":"ERROR","msg":"request failed"`)

	buf.Reset()
	NoopLogger().LogSave(context.Background(), "x", 1, 0, nil)
	assert.Zero(t, buf.Len())
}
