package events

import (
	"encoding/json"

	"github.com/printhub/realtime-api/internal/models"
	"github.com/printhub/realtime-api/pkg/kafka"
	"github.com/printhub/realtime-api/pkg/logger"
)

// KafkaMirror forwards committed events to a Kafka topic for downstream
// consumers (analytics, notifications). It runs strictly after commit and is
// fire-and-forget: a mirror failure never fails the originating write, and
// nothing is replayed after a restart.
type KafkaMirror struct {
	producer *kafka.Producer
	topic    string
	logger   logger.Logger
}

// NewKafkaMirror creates a mirror publishing to the given topic
func NewKafkaMirror(producer *kafka.Producer, topic string, logger logger.Logger) *KafkaMirror {
	return &KafkaMirror{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Mirror serializes the event and sends it keyed by order id. Errors are
// logged and swallowed.
func (m *KafkaMirror) Mirror(event models.Event) {
	payload, err := json.Marshal(event)

	if err != nil {
		m.logger.Error("Failed to marshal event for mirror", "error", err, "type", event.Type)
		return
	}

	key := event.OrderID
	if key == "" && event.Order != nil {
		key = event.Order.ID
	}
	if key == "" && event.Message != nil {
		key = event.Message.OrderID
	}

	if err := m.producer.SendMessage(m.topic, key, payload); err != nil {
		m.logger.Warn("Event mirror delivery failed", "error", err, "type", event.Type, "key", key)
	}
}
