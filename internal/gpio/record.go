package gpio

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/rfsniffer/internal/logic"
)

const (
	// samplesPerSecond is roughly what a Pi manages busy-polling one pin.
	samplesPerSecond = 50000

	// maxPrealloc caps the initial buffer; append grows past it.
	maxPrealloc = 1 << 22
)

// capacityHint sizes the sample buffer for a capture of duration d.
func capacityHint(d time.Duration) int {
	secs := d/time.Second + 1
	switch {
	case secs < 1:
		return samplesPerSecond
	case secs > maxPrealloc/samplesPerSecond:
		return maxPrealloc
	}
	return int(secs) * samplesPerSecond
}

// Record polls r as fast as it can until duration has elapsed on the now clock
// or ctx is done. Each sample is stamped with its offset from the first reading.
// A cancelled capture returns the samples taken so far along with ctx.Err().
func Record(ctx context.Context, r Reader, duration time.Duration, now func() time.Time) ([]logic.Sample, error) {
	samples := make([]logic.Sample, 0, capacityHint(duration))
	start := now()
	done := ctx.Done()

	for {
		select {
		case <-done:
			return samples, ctx.Err()
		default:
		}

		elapsed := now().Sub(start)
		if elapsed >= duration {
			break
		}
		level, err := r.Read()
		if err != nil {
			return samples, fmt.Errorf("read sample %d: %w", len(samples), err)
		}
		samples = append(samples, logic.Sample{At: elapsed, Level: level})
	}

	log.WithFields(log.Fields{
		"samples":  len(samples),
		"duration": duration,
	}).Debug("capture finished")
	return samples, nil
}
