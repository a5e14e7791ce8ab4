package logic_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/rfsniffer/internal/dump"
	"github.com/sweeney/rfsniffer/internal/logic"
)

// plot.json.gz is a socket remote repeating one command, sampled roughly
// every 47us between 0.95s and 1.55s of a capture. testdata/gen_plot.py
// regenerates it.
const baselineCode = "0123010123012323232301010123230123232323010101010123230101012301232"

func TestDecodeGolden(t *testing.T) {
	samples, err := dump.Load(filepath.Join("testdata", "plot.json.gz"))
	require.NoError(t, err)
	require.NotEmpty(t, samples)

	res, err := logic.Decode(samples, logic.DefaultThresholds, logic.DefaultWindow)
	require.NoError(t, err)
	assert.Equal(t, baselineCode, res.Code)
	assert.Equal(t, logic.Stopped, res.Frame)
	assert.NoError(t, res.Warning())
	assert.Zero(t, res.Unclassified)

	// The window opens part way through a symbol, so the first delay is a
	// 44us partial pulse. It is the minimum, and the only value within 90%
	// of it, so it alone makes up the short bucket. Every real symbol lands
	// in the long bucket as a distinct value.
	assert.Equal(t, logic.Diagnostics{
		Delays:    125,
		ExtraLong: 12093 * time.Microsecond,
		Short:     44 * time.Microsecond,
		Long:      573275 * time.Nanosecond,
	}, res.Diagnostics)
}

func TestDecodeGoldenIdempotent(t *testing.T) {
	samples, err := dump.Load(filepath.Join("testdata", "plot.json.gz"))
	require.NoError(t, err)

	first, err := logic.Decode(samples, logic.DefaultThresholds, logic.DefaultWindow)
	require.NoError(t, err)
	second, err := logic.Decode(samples, logic.DefaultThresholds, logic.DefaultWindow)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeGoldenOutsideWindow(t *testing.T) {
	samples, err := dump.Load(filepath.Join("testdata", "plot.json.gz"))
	require.NoError(t, err)

	res, err := logic.Decode(samples, logic.DefaultThresholds, logic.Window{Start: 2 * time.Second, End: 3 * time.Second})
	require.NoError(t, err)
	assert.Empty(t, res.Code)
	assert.True(t, res.Diagnostics.Empty())
	assert.ErrorIs(t, res.Warning(), logic.ErrNoSamples)
}
