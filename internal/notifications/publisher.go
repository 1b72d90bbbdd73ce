package notifications

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"amora-service/internal/models"
	"amora-service/internal/observability"
)

// Publisher delivers fire-and-forget push notification events to the
// broker feeding the mobile push workers. Delivery is best-effort and
// never coupled to connection lifecycle.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// PushEvent is the envelope consumed by downstream push workers.
type PushEvent struct {
	SchemaVersion  int        `json:"schema_version"`
	EventType      string     `json:"event_type"`
	OccurredAt     string     `json:"occurred_at"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	MessageID      uuid.UUID  `json:"message_id"`
	SenderID       *uuid.UUID `json:"sender_id,omitempty"`
	MessageType    string     `json:"message_type"`
}

// NewMessageCreatedEvent builds the event published after a message is
// persisted. Content is deliberately omitted; messages are end-to-end
// encrypted and push payloads only wake the client.
func NewMessageCreatedEvent(msg models.Message) PushEvent {
	return PushEvent{
		SchemaVersion:  1,
		EventType:      "message.created",
		OccurredAt:     time.Now().UTC().Format(time.RFC3339Nano),
		ConversationID: msg.ConversationID,
		MessageID:      msg.ID,
		SenderID:       msg.SenderID,
		MessageType:    string(msg.Type),
	}
}

// NewPublisher builds a RabbitMQ publisher or a noop publisher when AMQP
// is disabled or unreachable.
func NewPublisher(amqpURL, exchange string) Publisher {
	if amqpURL == "" {
		log.Printf("rabbitmq disabled, using noop: empty amqp url")
		return noopPublisher{reason: "empty amqp url"}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Printf("rabbitmq disabled, using noop: %v", err)
		return noopPublisher{reason: err.Error()}
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq disabled, using noop: %v", err)
		_ = conn.Close()
		return noopPublisher{reason: err.Error()}
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		log.Printf("rabbitmq disabled, using noop: %v", err)
		_ = ch.Close()
		_ = conn.Close()
		return noopPublisher{reason: err.Error()}
	}

	log.Printf("rabbitmq connected exchange=%s", exchange)
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		observability.IncAMQPPublishError()
		log.Printf("rabbitmq publish failed: %v", err)
	}
	return err
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct {
	reason string
}

func (noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	switch e := event.(type) {
	case PushEvent:
		log.Printf("rabbitmq noop publish routing_key=%s event_type=%s message_id=%s", routingKey, e.EventType, e.MessageID)
	case *PushEvent:
		log.Printf("rabbitmq noop publish routing_key=%s event_type=%s message_id=%s", routingKey, e.EventType, e.MessageID)
	default:
		log.Printf("rabbitmq noop publish routing_key=%s", routingKey)
	}
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
