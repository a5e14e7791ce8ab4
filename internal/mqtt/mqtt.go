// Package mqtt provides MQTT publishing of decoded codes with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/rfsniffer/internal/logic"
)

// Topic is the default MQTT topic for decoded codes.
const Topic = "rf/sniffer/codes"

// DefaultClientID identifies the sniffer to the broker.
const DefaultClientID = "rfsniffer"

// Publisher publishes decoded codes to MQTT.
type Publisher interface {
	// Publish sends a code event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event CodeEvent) error

	// Close disconnects from the broker.
	Close() error
}

// CodeEvent is the outcome of one capture.
type CodeEvent struct {
	Timestamp time.Time
	Source    string // "gpio" or the dump file replayed
	Result    logic.Result
}

// NewCodeEvent wraps a decode result.
func NewCodeEvent(ts time.Time, source string, res logic.Result) CodeEvent {
	return CodeEvent{Timestamp: ts, Source: source, Result: res}
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	RF RFPayload `json:"rf"`
}

// RFPayload contains the decoded code details.
type RFPayload struct {
	Timestamp  string        `json:"timestamp"`
	Source     string        `json:"source"`
	Code       string        `json:"code"`
	FrameFound bool          `json:"frame_found"`
	Samples    int           `json:"samples"`
	Delays     *DelaysMicros `json:"delays_us,omitempty"`
}

// DelaysMicros holds bucketed average delays in microseconds. Empty buckets are null.
type DelaysMicros struct {
	ExtraLong *int64 `json:"extra_long"`
	Short     *int64 `json:"short"`
	Long      *int64 `json:"long"`
}

// FormatPayload creates the JSON payload for a code event.
func FormatPayload(event CodeEvent) ([]byte, error) {
	res := event.Result
	payload := Payload{
		RF: RFPayload{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
			Source:     event.Source,
			Code:       res.Code,
			FrameFound: res.Frame != logic.Searching,
			Samples:    res.Retained,
		},
	}
	if d := res.Diagnostics; !d.Empty() {
		payload.RF.Delays = &DelaysMicros{
			ExtraLong: micros(d.ExtraLong),
			Short:     micros(d.Short),
			Long:      micros(d.Long),
		}
	}
	return json.Marshal(payload)
}

func micros(d time.Duration) *int64 {
	if d == logic.NoData {
		return nil
	}
	us := d.Microseconds()
	return &us
}
