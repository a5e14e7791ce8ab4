package gpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/rfsniffer/internal/logic"
)

func TestFakeReaderRead(t *testing.T) {
	f := NewFakeReader([]logic.Level{logic.High, logic.Low, logic.High})

	for i, want := range []logic.Level{logic.High, logic.Low, logic.High} {
		got, err := f.Read()
		require.NoError(t, err)
		assert.Equal(t, want, got, "read %d", i)
	}

	// Fourth read should repeat last level
	got, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, logic.High, got)
	assert.Equal(t, 4, f.Reads)
}

func TestFakeReaderNoLevels(t *testing.T) {
	f := NewFakeReader(nil)

	_, err := f.Read()
	assert.Error(t, err)
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]logic.Level{logic.High})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	require.Error(t, err)
	assert.EqualError(t, err, "simulated error")
}

func TestFakeReaderFailAfter(t *testing.T) {
	f := NewFakeReader([]logic.Level{logic.High, logic.Low})
	f.ReadError = errors.New("line gone")
	f.FailAfter = 2

	_, err := f.Read()
	require.NoError(t, err)
	_, err = f.Read()
	require.NoError(t, err)
	_, err = f.Read()
	assert.EqualError(t, err, "line gone")
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader([]logic.Level{logic.High})
	assert.False(t, f.Closed, "should not be closed initially")

	require.NoError(t, f.Close())
	assert.True(t, f.Closed, "should be closed after Close()")
}

func TestFakeReaderReset(t *testing.T) {
	f := NewFakeReader([]logic.Level{logic.High, logic.Low})

	// Consume first level
	f.Read()

	f.Reset()

	got, _ := f.Read()
	assert.Equal(t, logic.High, got, "after reset")
	assert.Equal(t, 1, f.Reads)
}
