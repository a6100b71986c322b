package heatmap_test

import (
	"bytes"
	"testing"

	"github.com/flowstat/flowstat/heatmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoutesToCorrectSlice(t *testing.T) {
	const start = uint64(1_000_000_000)
	h := heatmap.New(4, 1000, start)

	h.Record(start, 10)
	h.Record(start+1_500_000_000, 20)
	h.Record(start+5_000_000_000, 30) // wraps to slice 5%4=1

	tr := h.Snapshot()
	assert.Equal(t, 4, tr.TotalSlices)
	assert.NotZero(t, tr.Columns[0][len(tr.Columns[0])-1])
	assert.NotZero(t, tr.Columns[1][len(tr.Columns[1])-1])
}

func TestClearResetsAllColumns(t *testing.T) {
	h := heatmap.New(2, 1000, 0)
	h.Record(0, 500)
	h.Clear(0)
	tr := h.Snapshot()
	for _, col := range tr.Columns {
		for _, v := range col {
			assert.Zero(t, v)
		}
	}
}

func TestTraceRoundTrip(t *testing.T) {
	h := heatmap.New(3, 1000, 0)
	h.Record(0, 42)
	tr := h.Snapshot()

	var buf bytes.Buffer
	require.NoError(t, heatmap.WriteTrace(&buf, tr))

	got, err := heatmap.ReadTrace(&buf)
	require.NoError(t, err)
	assert.Equal(t, tr, got)
}

func TestRenderWaterfallProducesPNG(t *testing.T) {
	h := heatmap.New(5, 1000, 0)
	h.Record(0, 100)
	h.Record(3_000_000_000, 900)
	tr := h.Snapshot()

	var buf bytes.Buffer
	require.NoError(t, heatmap.RenderWaterfall(&buf, tr))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}
