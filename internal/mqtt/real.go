package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Broker timeouts. rfsniffer runs once per button press, so a broker that
// is not there within connectTimeout is given up on rather than retried.
const (
	connectTimeout = 5 * time.Second
	publishTimeout = 5 * time.Second
	quiesce        = 250 // ms allowed for in-flight work on disconnect
)

// RealPublisher publishes decoded codes to an MQTT broker.
type RealPublisher struct {
	client paho.Client
	topic  string
}

// clientOptions configures a single connection attempt with no background
// reconnects.
func clientOptions(broker, clientID string) *paho.ClientOptions {
	return paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetConnectRetry(false).
		SetAutoReconnect(false)
}

// NewRealPublisher connects to broker and publishes to topic.
func NewRealPublisher(broker, clientID, topic string) (*RealPublisher, error) {
	client := paho.NewClient(clientOptions(broker, clientID))

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout + time.Second) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connect to %s: timed out after %v", broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}

	return &RealPublisher{client: client, topic: topic}, nil
}

// Publish sends one code event and waits for the broker to acknowledge it.
func (p *RealPublisher) Publish(event CodeEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1: the process exits right after, so an unacked message is lost
	token := p.client.Publish(p.topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	if !p.client.IsConnectionOpen() {
		return fmt.Errorf("disconnect: connection already closed")
	}
	p.client.Disconnect(quiesce)
	return nil
}
