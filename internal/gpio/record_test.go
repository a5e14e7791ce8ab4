package gpio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/rfsniffer/internal/logic"
)

// steppingClock returns a clock that advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	t := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func TestRecordStopsAfterDuration(t *testing.T) {
	r := NewFakeReader([]logic.Level{logic.Low, logic.High, logic.High, logic.Low})

	// start reading at 0, then one clock call per sample: 10us, 20us, ...
	samples, err := Record(context.Background(), r, 100*time.Microsecond, steppingClock(10*time.Microsecond))
	require.NoError(t, err)
	require.Len(t, samples, 9)

	assert.Equal(t, logic.Sample{At: 10 * time.Microsecond, Level: logic.Low}, samples[0])
	assert.Equal(t, logic.Sample{At: 20 * time.Microsecond, Level: logic.High}, samples[1])
	assert.Equal(t, logic.Sample{At: 90 * time.Microsecond, Level: logic.Low}, samples[8])

	for i := 1; i < len(samples); i++ {
		assert.GreaterOrEqual(t, samples[i].At, samples[i-1].At)
	}
	assert.False(t, r.Closed, "Record must leave closing to the caller")
}

func TestRecordReadError(t *testing.T) {
	r := NewFakeReader([]logic.Level{logic.High})
	r.ReadError = errors.New("line busy")
	r.FailAfter = 3

	samples, err := Record(context.Background(), r, time.Second, steppingClock(time.Microsecond))
	require.Error(t, err)
	assert.ErrorContains(t, err, "line busy")
	assert.Len(t, samples, 3)
}

func TestRecordCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewFakeReader([]logic.Level{logic.High})
	samples, err := Record(ctx, r, time.Second, steppingClock(time.Microsecond))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, samples)
	assert.Zero(t, r.Reads)
}

func TestRecordZeroDuration(t *testing.T) {
	r := NewFakeReader([]logic.Level{logic.High})
	samples, err := Record(context.Background(), r, 0, steppingClock(time.Microsecond))
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestRecordFeedsDecoder(t *testing.T) {
	// 12ms gap, long high, short low, short high, 12ms gap, at 10us per sample
	var levels []logic.Level
	add := func(l logic.Level, n int) {
		for i := 0; i < n; i++ {
			levels = append(levels, l)
		}
	}
	add(logic.High, 10)
	add(logic.Low, 1200)
	add(logic.High, 80)
	add(logic.Low, 30)
	add(logic.High, 30)
	add(logic.Low, 1200)
	add(logic.High, 10)

	r := NewFakeReader(levels)
	samples, err := Record(context.Background(), r, time.Duration(len(levels)+1)*10*time.Microsecond, steppingClock(10*time.Microsecond))
	require.NoError(t, err)

	res, err := logic.Decode(samples, logic.DefaultThresholds, logic.Window{})
	require.NoError(t, err)
	assert.Equal(t, "012", res.Code)
}

func TestRecordLargeDuration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewFakeReader([]logic.Level{logic.High})
	var samples []logic.Sample
	var err error
	require.NotPanics(t, func() {
		samples, err = Record(ctx, r, time.Duration(1<<62), steppingClock(time.Microsecond))
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, samples)
	assert.LessOrEqual(t, cap(samples), maxPrealloc)
}

func TestCapacityHint(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want int
	}{
		{"zero", 0, samplesPerSecond},
		{"negative", -5 * time.Second, samplesPerSecond},
		{"default", DefaultDuration, 6 * samplesPerSecond},
		{"max", MaxDuration, maxPrealloc},
		{"huge", time.Duration(1 << 62), maxPrealloc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, capacityHint(tt.d))
		})
	}
}
