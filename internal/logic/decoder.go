package logic

import (
	"strings"
	"time"
)

// Decode turns a time-ordered sample sequence into a code string.
//
// Samples outside window are ignored. The first transition with a delay of at
// least thresholds.Extended opens the frame and the next one closes it; symbols
// are only emitted in between and decoding stops once the frame is closed.
// The only error is a *ConfigurationError for invalid thresholds. Empty input
// and a missing frame are reported through Result.Warning.
func Decode(samples []Sample, thresholds Thresholds, window Window) (Result, error) {
	if err := thresholds.Validate(); err != nil {
		return Result{}, err
	}

	var (
		res     Result
		code    strings.Builder
		history []time.Duration

		seeded         bool
		lastLevel      Level
		lastTransition time.Duration
	)

	for _, s := range samples {
		if !window.Contains(s.At) {
			continue
		}
		res.Retained++

		if !seeded {
			seeded = true
			lastLevel = s.Level
			lastTransition = s.At
			continue
		}
		if s.Level == lastLevel {
			continue
		}

		delta := s.At - lastTransition
		history = append(history, delta)
		res.Transitions++

		switch pulse := thresholds.Classify(delta); {
		case pulse == ExtraLong:
			// Frame boundary, never a symbol itself.
			if res.Frame == Searching {
				res.Frame = Started
			} else if res.Frame == Started {
				res.Frame = Stopped
			}
		case res.Frame == Started:
			if sym, ok := SymbolFor(lastLevel, pulse); ok {
				code.WriteByte(sym)
			} else {
				res.Unclassified++
			}
		}

		lastTransition = s.At
		lastLevel = s.Level

		if res.Frame == Stopped {
			break
		}
	}

	res.Code = code.String()
	res.Diagnostics = Diagnose(history)
	return res, nil
}
