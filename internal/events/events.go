// internal/events/events.go
//
// Analytics event publishing. The engine emits match_start / move_made /
// match_end events; delivery is best-effort and must never affect match
// state. The Kafka implementation mirrors the original stream contract:
// topic connect4-events, message key = event type, JSON {type, payload}
// value.

package events

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Publisher emits one analytics event.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// envelope is the wire shape consumers expect.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Kafka publishes events to a Kafka topic.
type Kafka struct {
	w *kafka.Writer
}

// NewKafka builds a publisher for the given broker address and topic.
func NewKafka(broker, topic string) *Kafka {
	return &Kafka{w: &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}}
}

func (k *Kafka) Publish(ctx context.Context, eventType string, payload any) error {
	value, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		return err
	}
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: value,
	})
}

func (k *Kafka) Close() error { return k.w.Close() }

// Nop drops events, logging them at debug level. Used when no broker is
// configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, eventType string, payload any) error {
	log.Debug().Str("event", eventType).Interface("payload", payload).Msg("analytics event (no broker)")
	return nil
}

func (Nop) Close() error { return nil }
