// Package logic contains the pure decoding logic for captured 433MHz pulse trains.
// This package has NO external dependencies on hardware, files or the clock.
// Sample times are offsets from the start of a capture.
package logic

import (
	"errors"
	"fmt"
	"time"
)

// Level is the binary level read from the receiver pin.
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// Sample is a single pin reading taken At an offset from capture start.
type Sample struct {
	At    time.Duration
	Level Level
}

// FrameState tracks where the decoder is relative to a code frame.
type FrameState int

const (
	Searching FrameState = iota
	Started
	Stopped
)

func (s FrameState) String() string {
	switch s {
	case Searching:
		return "SEARCHING"
	case Started:
		return "STARTED"
	case Stopped:
		return "STOPPED"
	}
	return fmt.Sprintf("FrameState(%d)", int(s))
}

// Pulse is the classification of a single delay.
type Pulse int

const (
	Unclassified Pulse = iota
	Short
	Long
	ExtraLong
)

func (p Pulse) String() string {
	switch p {
	case Short:
		return "SHORT"
	case Long:
		return "LONG"
	case ExtraLong:
		return "EXTRA_LONG"
	}
	return "UNCLASSIFIED"
}

// Thresholds are the pulse timings used to classify delays.
type Thresholds struct {
	Short    time.Duration
	Long     time.Duration
	Extended time.Duration
}

// DefaultThresholds match common fixed-code RF power sockets.
var DefaultThresholds = Thresholds{
	Short:    300 * time.Microsecond,
	Long:     800 * time.Microsecond,
	Extended: 10 * time.Millisecond,
}

// NewThresholds returns validated thresholds.
func NewThresholds(short, long, extended time.Duration) (Thresholds, error) {
	t := Thresholds{Short: short, Long: long, Extended: extended}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

// Validate checks 0 <= Short < Long < Extended.
func (t Thresholds) Validate() error {
	if t.Short < 0 || t.Short >= t.Long || t.Long >= t.Extended {
		return &ConfigurationError{Thresholds: t}
	}
	return nil
}

// Threshold is the cut line between short and long delays.
func (t Thresholds) Threshold() time.Duration {
	return t.Long - t.Short
}

// Window bounds the part of a capture that is decoded.
// Samples are kept when Start < At < End. A zero bound leaves that side open:
// Start == 0 keeps the first sample at offset 0, End == 0 keeps everything
// after Start, and the zero Window keeps every sample.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// DefaultWindow skips the first second of a capture and looks at the next half second.
var DefaultWindow = Window{Start: time.Second, End: 1500 * time.Millisecond}

// Contains reports whether at falls inside the window.
func (w Window) Contains(at time.Duration) bool {
	if w.Start > 0 && at <= w.Start {
		return false
	}
	return w.End == 0 || at < w.End
}

// ConfigurationError is returned when thresholds are not strictly ordered.
type ConfigurationError struct {
	Thresholds Thresholds
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid thresholds: need 0 <= short (%v) < long (%v) < extended (%v)",
		e.Thresholds.Short, e.Thresholds.Long, e.Thresholds.Extended)
}

// Soft conditions reported by Result.Warning. Neither is fatal.
var (
	ErrNoSamples = errors.New("no samples inside analysis window")
	ErrNoFrame   = errors.New("no frame boundary found")
)

// Result is the outcome of a single Decode call.
type Result struct {
	Code        string
	Diagnostics Diagnostics
	Frame       FrameState

	// Retained counts in-window samples scanned before decoding stopped.
	Retained int
	// Transitions counts level changes seen before decoding stopped.
	Transitions int
	// Unclassified counts in-frame delays that hit the short/long cut line exactly.
	Unclassified int
}

// Warning returns ErrNoSamples or ErrNoFrame when the decode found nothing to report.
func (r Result) Warning() error {
	if r.Retained == 0 {
		return ErrNoSamples
	}
	if r.Frame == Searching {
		return ErrNoFrame
	}
	return nil
}
