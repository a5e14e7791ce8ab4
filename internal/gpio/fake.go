package gpio

import (
	"errors"

	"github.com/sweeney/rfsniffer/internal/logic"
)

// FakeReader is a test double that returns scripted pin levels.
type FakeReader struct {
	// Levels contains scripted values to return.
	// Each call to Read() consumes the next level.
	Levels []logic.Level

	// index tracks current position in Levels
	index int

	// Reads counts calls to Read
	Reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// FailAfter, if > 0, makes Read return ReadError only once that many reads succeeded
	FailAfter int
}

// NewFakeReader creates a FakeReader with the given levels.
func NewFakeReader(levels []logic.Level) *FakeReader {
	return &FakeReader{Levels: levels}
}

// Read returns the next scripted level.
// If levels are exhausted, returns the last level repeatedly.
func (f *FakeReader) Read() (logic.Level, error) {
	if f.ReadError != nil && f.Reads >= f.FailAfter {
		return logic.Low, f.ReadError
	}

	if len(f.Levels) == 0 {
		return logic.Low, errors.New("no levels configured")
	}

	f.Reads++
	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}

	return level, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of levels.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}
