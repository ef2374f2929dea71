package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const defaultStoragePrefix = "accounts:limiter:"

// Storage backs fiber middleware state, such as the request limiter, with
// redis so limits hold across instances.
type Storage struct {
	client  Client
	prefix  string
	timeout time.Duration
}

var _ fiber.Storage = (*Storage)(nil)

func NewStorage(client Client, prefix string) *Storage {
	if prefix == "" {
		prefix = defaultStoragePrefix
	}
	return &Storage{
		client:  client,
		prefix:  prefix,
		timeout: 3 * time.Second,
	}
}

func (s *Storage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get returns nil without error for unknown keys
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	return s.client.Set(ctx, s.prefix+key, val, exp).Err()
}

func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	return s.client.Del(ctx, s.prefix+key).Err()
}

// Reset removes every key under the storage prefix
func (s *Storage) Reset() error {
	ctx, cancel := s.ctx()
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *Storage) Close() error {
	return s.client.Close()
}
