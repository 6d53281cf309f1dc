package promcollector

import (
	"bytes"
	"testing"

	"github.com/hupe1980/blockstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc, err := New(reg, "blockstore")
	require.NoError(t, err)

	dev, err := blockstore.New(blockstore.WithGeometry(5, 4), blockstore.WithMetricsCollector(mc))
	require.NoError(t, err)
	defer dev.Close()

	for i := 0; i < 5; i++ {
		_, _ = dev.Allocate()
	}
	dev.Release(3)

	buf := make([]byte, 4)
	_, err = dev.Write(1, buf)
	require.NoError(t, err)
	_, err = dev.Read(3, buf)
	require.Error(t, err)

	var image bytes.Buffer
	_, err = dev.SaveToWriter(&image)
	require.NoError(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(mc.ops.WithLabelValues("allocate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.ops.WithLabelValues("allocate", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.ops.WithLabelValues("release", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.ops.WithLabelValues("read", "error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(mc.bytes.WithLabelValues("write")))
	assert.Equal(t, 20.0, testutil.ToFloat64(mc.bytes.WithLabelValues("save")))
	assert.Equal(t, 3.0, testutil.ToFloat64(mc.usedBlocks))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.freeBlocks))

	n, err := testutil.GatherAndCount(reg, "blockstore_image_transfer_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := New(reg, "dup")
	require.NoError(t, err)

	_, err = New(reg, "dup")
	assert.Error(t, err)
}
