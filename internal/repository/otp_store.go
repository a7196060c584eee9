package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore holds short-lived login OTPs keyed by email.
type OTPStore interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

type redisOTPStore struct {
	rdb *redis.Client
}

func NewRedisOTPStore(rdb *redis.Client) OTPStore {
	return &redisOTPStore{rdb}
}

func otpKey(email string) string {
	return "otp:" + email
}

func (s *redisOTPStore) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, otpKey(email), code, ttl).Err()
}

func (s *redisOTPStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.rdb.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return code, err
}

func (s *redisOTPStore) Delete(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, otpKey(email)).Err()
}
