//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/rfsniffer/internal/logic"
)

// errNoCdev is returned by every RealReader call off Linux, where there is
// no GPIO character device to sample.
var errNoCdev = errors.New("gpio: character device capture needs linux, use replay with a dump instead")

// RealReader is a placeholder so the command builds on other platforms.
type RealReader struct{}

// NewRealReader always fails off Linux.
func NewRealReader(chipName string, pin int) (*RealReader, error) {
	return nil, errNoCdev
}

func (r *RealReader) Read() (logic.Level, error) { return logic.Low, errNoCdev }

func (r *RealReader) Close() error { return nil }
