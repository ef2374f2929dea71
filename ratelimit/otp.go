package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/hashid/pkg/hashid"

	accounts "github.com/goliatone/go-accounts"
)

// OTPLimiter throttles OTP resends per email: a cooldown between two sends,
// a maximum count per window, and a block once the count is exceeded.
type OTPLimiter struct {
	client   Client
	window   time.Duration
	max      int
	cooldown time.Duration
	logger   accounts.Logger
}

var _ accounts.OTPThrottle = (*OTPLimiter)(nil)

func NewOTPLimiter(client Client, window time.Duration, max int, cooldown time.Duration) *OTPLimiter {
	if window <= 0 {
		window = time.Hour
	}
	if max <= 0 {
		max = 5
	}
	return &OTPLimiter{
		client:   client,
		window:   window,
		max:      max,
		cooldown: cooldown,
	}
}

func (l *OTPLimiter) WithLogger(logger accounts.Logger) *OTPLimiter {
	l.logger = logger
	return l
}

// Allow returns accounts.ErrRateLimited when email may not receive another
// code yet. Redis failures let the request through.
func (l *OTPLimiter) Allow(ctx context.Context, email string) error {
	subject := subjectKey(email)
	blockKey := "otp:block:" + subject
	lastKey := "otp:last:" + subject
	countKey := "otp:count:" + subject

	if ttl, _ := l.client.TTL(ctx, blockKey).Result(); ttl > 0 {
		return limited("too many OTP requests, try again later", ttl)
	}

	if ttl, _ := l.client.TTL(ctx, lastKey).Result(); ttl > 0 {
		return limited("please wait before requesting another OTP", ttl)
	}

	cnt, err := incrWithExpire(ctx, l.client, countKey, l.window)
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("otp limiter unavailable: %v", err)
		}
		return nil
	}

	if int(cnt) > l.max {
		block := l.window * 3
		_ = l.client.Set(ctx, blockKey, "1", block).Err()
		return limited("too many OTP requests, try again later", block)
	}

	if l.cooldown > 0 {
		_ = l.client.Set(ctx, lastKey, "1", l.cooldown).Err()
	}
	return nil
}

// subjectKey keeps raw emails out of redis
func subjectKey(email string) string {
	id, err := hashid.NewUUID(email)
	if err != nil {
		return email
	}
	return id.String()
}

func limited(msg string, retry time.Duration) error {
	e := accounts.ErrRateLimited.Clone()
	e.Message = msg
	return e.WithMetadata(map[string]any{
		"retry_after": fmt.Sprintf("%ds", int(retry.Seconds())),
	})
}
