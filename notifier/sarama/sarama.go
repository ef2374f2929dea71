// Package sarama delivers account events to Kafka through an IBM/sarama
// sync producer.
package sarama

import (
	"context"
	"encoding/json"

	ibm "github.com/IBM/sarama"
	"github.com/goliatone/go-errors"

	accounts "github.com/goliatone/go-accounts"
)

type Publisher struct {
	producer ibm.SyncProducer
}

var _ accounts.Notifier = (*Publisher)(nil)

// NewConfig waits for every in-sync replica and retries a few times
func NewConfig() *ibm.Config {
	config := ibm.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = ibm.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	return config
}

func Dial(brokers []string) (*Publisher, error) {
	producer, err := ibm.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "sarama: create producer")
	}
	return New(producer), nil
}

func New(producer ibm.SyncProducer) *Publisher {
	return &Publisher{producer: producer}
}

// Publish sends payload to the topic named by exchange, keyed by routingKey.
// The producer is synchronous so ctx is only checked before sending.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "sarama: encode payload")
	}

	msg := &ibm.ProducerMessage{
		Topic: exchange,
		Key:   ibm.StringEncoder(routingKey),
		Value: ibm.ByteEncoder(data),
		Headers: []ibm.RecordHeader{
			{Key: []byte("content-type"), Value: []byte("application/json")},
		},
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "sarama: send message failed").
			WithMetadata(map[string]any{
				"topic":       exchange,
				"routing_key": routingKey,
			})
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
