// Package kafka delivers account events to Kafka with segmentio/kafka-go.
// The exchange name is used as the topic and the routing key as the
// message key.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	kafkago "github.com/segmentio/kafka-go"

	accounts "github.com/goliatone/go-accounts"
)

// MessageWriter is satisfied by *kafkago.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Publisher struct {
	writer MessageWriter
	now    func() time.Time
}

var _ accounts.Notifier = (*Publisher)(nil)

// NewWriter returns a writer that picks the topic per message
func NewWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

func New(w MessageWriter) *Publisher {
	return &Publisher{writer: w, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "kafka: encode payload")
	}

	msg := kafkago.Message{
		Topic: exchange,
		Key:   []byte(routingKey),
		Value: body,
		Time:  p.now(),
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "routing-key", Value: []byte(routingKey)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "kafka: write message failed").
			WithMetadata(map[string]any{
				"topic":       exchange,
				"routing_key": routingKey,
			})
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
