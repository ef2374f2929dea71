package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/notifier/kafka"
)

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublisher_TopicAndKey(t *testing.T) {
	w := &fakeWriter{}
	p := kafka.New(w)

	err := p.Publish(context.Background(), "users", "user.signup", accounts.SignupEvent{
		Email:     "ada@example.com",
		FirstName: "Ada",
		OTP:       "123456",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "users", msg.Topic)
	assert.Equal(t, "user.signup", string(msg.Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "123456", got["otp"])
}

func TestPublisher_WriteError(t *testing.T) {
	p := kafka.New(&fakeWriter{err: errors.New("no brokers")})
	assert.Error(t, p.Publish(context.Background(), "users", "user.verified", struct{}{}))
}

func TestNewWriter(t *testing.T) {
	w := kafka.NewWriter([]string{"localhost:9092"})
	assert.Empty(t, w.Topic)
	assert.Equal(t, kafkago.RequireOne, w.RequiredAcks)
}
