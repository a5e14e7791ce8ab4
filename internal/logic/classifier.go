package logic

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bucket margins used by Diagnose, as fractions of the baseline.
const (
	extraLongMargin = 0.1
	shortMargin     = 0.9
)

// NoData is returned by Average for an empty set of delays.
const NoData time.Duration = -1

// Classify sorts a single delay into short, long or extra-long.
// A delay exactly on the short/long cut line is Unclassified.
func (t Thresholds) Classify(delta time.Duration) Pulse {
	switch threshold := t.Threshold(); {
	case delta >= t.Extended:
		return ExtraLong
	case delta > threshold:
		return Long
	case delta < threshold:
		return Short
	}
	return Unclassified
}

// SymbolFor maps a pulse and the level held during it to a code symbol.
func SymbolFor(prior Level, p Pulse) (byte, bool) {
	switch p {
	case Long:
		if prior == High {
			return '0', true
		}
		return '3', true
	case Short:
		if prior == Low {
			return '1', true
		}
		return '2', true
	}
	return 0, false
}

// IsClose reports whether value lies within baseline +/- baseline*margin.
func IsClose(value, baseline time.Duration, margin float64) bool {
	b := float64(baseline)
	v := float64(value)
	return b*(1-margin) <= v && v <= b*(1+margin)
}

// Average returns the arithmetic mean of values, or NoData when values is empty.
func Average(values []time.Duration) time.Duration {
	if len(values) == 0 {
		return NoData
	}
	return time.Duration(math.Round(stat.Mean(seconds(values), nil) * float64(time.Second)))
}

// Diagnostics are bucketed average delays of a decode, used to tune thresholds.
// Averages are NoData when their bucket is empty.
type Diagnostics struct {
	Delays    int
	ExtraLong time.Duration
	Short     time.Duration
	Long      time.Duration
}

// Empty reports whether no delays were observed.
func (d Diagnostics) Empty() bool {
	return d.Delays == 0
}

func (d Diagnostics) String() string {
	return fmt.Sprintf("extra long delay: %s, short delay: %s, long delay: %s",
		formatAverage(d.ExtraLong), formatAverage(d.Short), formatAverage(d.Long))
}

func formatAverage(d time.Duration) string {
	if d == NoData {
		return "n/a"
	}
	return d.String()
}

// Diagnose buckets the delay history around its extremes.
// Values within 10% of the maximum are extra long, values within 90% of the
// minimum are short, and the distinct remaining values are long. A value that
// fits both margins counts once, as extra long.
func Diagnose(history []time.Duration) Diagnostics {
	d := Diagnostics{
		Delays:    len(history),
		ExtraLong: NoData,
		Short:     NoData,
		Long:      NoData,
	}
	if len(history) == 0 {
		return d
	}

	xs := seconds(history)
	maxDelay := time.Duration(math.Round(floats.Max(xs) * float64(time.Second)))
	minDelay := time.Duration(math.Round(floats.Min(xs) * float64(time.Second)))

	var extraLong, short, long []time.Duration
	seen := make(map[time.Duration]struct{})
	for _, v := range history {
		switch {
		case IsClose(v, maxDelay, extraLongMargin):
			extraLong = append(extraLong, v)
		case IsClose(v, minDelay, shortMargin):
			short = append(short, v)
		default:
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			long = append(long, v)
		}
	}

	d.ExtraLong = Average(extraLong)
	d.Short = Average(short)
	d.Long = Average(long)
	return d
}

func seconds(values []time.Duration) []float64 {
	xs := make([]float64, len(values))
	for i, v := range values {
		xs[i] = v.Seconds()
	}
	return xs
}
