package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/config"
	"github.com/segmentio/kafka-go"
)

// EventType represents the type of a domain event.
type EventType string

const (
	EventTypeOrderPlaced        EventType = "order.placed"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeBillPaid           EventType = "bill.paid"
	EventTypeCouponRedeemed     EventType = "coupon.redeemed"
)

type ctxKey string

// RequestIDKey is the context key the request id middleware stores under.
const RequestIDKey ctxKey = "request_id"

// Event is the envelope written to the events topic.
type Event struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	Key           string          `json:"key"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// Publisher sends domain events. Key decides partitioning (session or order id).
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, key string, payload interface{}) error
	Close() error
}

// NewEvent builds the envelope for a payload.
func NewEvent(ctx context.Context, eventType EventType, key string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	event := &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Key:       key,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		event.CorrelationID = requestID
	}
	return event, nil
}

// KafkaPublisher publishes events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg *config.KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType EventType, key string, payload interface{}) error {
	event, err := NewEvent(ctx, eventType, key, payload)
	if err != nil {
		return err
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("Failed to publish %s event %s: %v", event.Type, event.ID, err)
		return err
	}
	return nil
}

// Close flushes and closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	log.Println("Closing Kafka publisher")
	return p.writer.Close()
}

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, eventType EventType, key string, payload interface{}) error {
	event, err := NewEvent(ctx, eventType, key, payload)
	if err != nil {
		return err
	}
	log.Printf("Event %s %s key=%s", event.Type, event.ID, event.Key)
	return nil
}

func (LogPublisher) Close() error { return nil }

// NewPublisher returns a Kafka publisher when brokers are configured.
func NewPublisher(cfg *config.KafkaConfig) Publisher {
	if !cfg.Enabled() {
		log.Println("Kafka brokers not configured, events will only be logged")
		return LogPublisher{}
	}
	return NewKafkaPublisher(cfg)
}
