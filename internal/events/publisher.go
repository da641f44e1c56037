package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const streamName = "PAYHULA"

// Event is the envelope published to the internal bus
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	StoreID   string      `json:"storeId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Publisher emits domain events to NATS JetStream. Publishing is
// asynchronous and never blocks or fails the calling workflow; when NATS
// is unavailable the publisher degrades to logging.
type Publisher struct {
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the event stream exists.
// A nil publisher (connection failure) is safe to call.
func NewPublisher(natsURL string, logger *logrus.Logger) *Publisher {
	log := logger.WithField("component", "events")

	if natsURL == "" {
		log.Info("NATS_URL not set, event publishing disabled")
		return &Publisher{logger: log}
	}

	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to NATS, event publishing disabled")
		return &Publisher{logger: log}
	}

	js, err := nc.JetStream()
	if err != nil {
		log.WithError(err).Warn("Failed to get JetStream context, event publishing disabled")
		return &Publisher{logger: log}
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"payhula.>"},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		log.WithError(err).Warn("Failed to ensure event stream")
	}

	log.Info("Connected to NATS JetStream")
	return &Publisher{js: js, logger: log}
}

// Publish emits an event asynchronously. Errors are logged, never
// returned; side-effect delivery must not affect the primary workflow.
func (p *Publisher) Publish(eventType, storeID string, data interface{}) {
	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		StoreID:   storeID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("event", eventType).Error("Failed to marshal event")
		return
	}

	if p.js == nil {
		p.logger.WithField("event", eventType).Debug("Event dropped, NATS not connected")
		return
	}

	subject := "payhula." + eventType
	if _, err := p.js.PublishAsync(subject, payload); err != nil {
		p.logger.WithError(err).WithField("event", eventType).Warn("Failed to publish event")
	}
}
