package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Event types published on the broker.
const (
	TypeAssetAssigned        = "asset.assigned"
	TypeAssetReturned        = "asset.returned"
	TypeMaintenanceRequested = "maintenance.requested"
	TypeMaintenanceCompleted = "maintenance.completed"
	TypeRequestApproved      = "request.approved"
	TypeRequestRejected      = "request.rejected"
)

const topicPrefix = "assets/events/"

// Event is a domain lifecycle notification.
type Event struct {
	Type          string    `json:"type"`
	AssetID       string    `json:"asset_id,omitempty"`
	EmployeeID    string    `json:"employee_id,omitempty"`
	AssignmentID  string    `json:"assignment_id,omitempty"`
	MaintenanceID string    `json:"maintenance_id,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher emits domain events to interested subscribers. Publishing is
// best effort: a failed publish must never fail the operation that raised
// the event.
type Publisher interface {
	Publish(event Event)
	Close()
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(Event) {}
func (NoopPublisher) Close()        {}

// MQTTPublisher publishes events as JSON to an MQTT broker under
// assets/events/<type>.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(brokerURL, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout for %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", err)
	}
	return &MQTTPublisher{client: client}, nil
}

func (p *MQTTPublisher) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("failed to marshal event")
		return
	}
	token := p.client.Publish(topicPrefix+event.Type, 0, false, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.WithError(err).WithField("type", event.Type).Warn("failed to publish event")
		}
	}()
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
