// Package rabbitmq delivers account events to a direct AMQP exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	amqp "github.com/rabbitmq/amqp091-go"

	accounts "github.com/goliatone/go-accounts"
)

// Channel is the part of *amqp.Channel the publisher uses
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	declared map[string]bool
	now      func() time.Time
}

var _ accounts.Notifier = (*Publisher)(nil)

// Dial opens a connection and a channel on url
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "rabbitmq: dial failed")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, errors.CategoryOperation, "rabbitmq: open channel failed")
	}

	p := New(ch)
	p.conn = conn
	return p, nil
}

// New publishes on an already open channel
func New(ch Channel) *Publisher {
	return &Publisher{
		ch:       ch,
		declared: map[string]bool{},
		now:      time.Now,
	}
}

// Publish encodes payload as JSON and sends it as a persistent message.
// The exchange is declared as durable direct on first use.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "rabbitmq: encode payload")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[exchange] {
		if err := p.ch.ExchangeDeclare(exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "rabbitmq: declare exchange").
				WithMetadata(map[string]any{"exchange": exchange})
		}
		p.declared[exchange] = true
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, exchange, routingKey, false, false, msg); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "rabbitmq: publish failed").
			WithMetadata(map[string]any{
				"exchange":    exchange,
				"routing_key": routingKey,
			})
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
