package accounts

import (
	"context"
	"time"
)

// Notifier publishes account events to a message exchange.
type Notifier interface {
	Publish(ctx context.Context, exchange, routingKey string, payload any) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, exchange, routingKey string, payload any) error

// Publish implements Notifier.
func (f NotifierFunc) Publish(ctx context.Context, exchange, routingKey string, payload any) error {
	if f == nil {
		return nil
	}
	return f(ctx, exchange, routingKey, payload)
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, string, string, any) error {
	return nil
}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// SignupEvent is published when an account is created or a new OTP is issued.
type SignupEvent struct {
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	OTP       string    `json:"otp"`
	OTPExpiry time.Time `json:"otp_expiry"`
}

// VerifiedEvent is published once an account confirms its OTP.
type VerifiedEvent struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

// EventRoutes names where account events go
type EventRoutes struct {
	Exchange    string
	SignupKey   string
	VerifiedKey string
}

func (r EventRoutes) withDefaults() EventRoutes {
	if r.Exchange == "" {
		r.Exchange = "users"
	}
	if r.SignupKey == "" {
		r.SignupKey = "user.signup"
	}
	if r.VerifiedKey == "" {
		r.VerifiedKey = "user.verified"
	}
	return r
}

// publish runs after the write committed. Delivery failures are reported
// and never surface to the caller.
func (s *Service) publish(ctx context.Context, routingKey string, payload any) {
	// the request may be gone by the time we publish
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.notifier.Publish(ctx, s.routes.Exchange, routingKey, payload); err != nil {
		s.logger.Warn("event delivery failed exchange=%s routing_key=%s: %v", s.routes.Exchange, routingKey, err)
	}
}
