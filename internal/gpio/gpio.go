// Package gpio provides receiver pin sampling with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"time"

	"github.com/sweeney/rfsniffer/internal/logic"
)

// Reader reads the level of the receiver data pin.
type Reader interface {
	// Read returns the current raw level of the pin.
	Read() (logic.Level, error)

	// Close releases GPIO resources.
	Close() error
}

// Capture defaults (BCM numbering).
const (
	DefaultChip     = "gpiochip0"
	DefaultPin      = 20
	DefaultDuration = 5 * time.Second

	// MaxDuration bounds a single capture. Ten minutes of busy polling is
	// already tens of millions of samples.
	MaxDuration = 10 * time.Minute
)
