package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPNotFound     = errors.New("otp expired or not requested")
	ErrOTPMismatch     = errors.New("otp does not match")
	ErrOTPTooManyTries = errors.New("too many otp attempts")
)

const otpMaxAttempts = 5

type OTPStore struct {
	c   *redis.Client
	ttl time.Duration
}

func NewOTPStore(c *redis.Client, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPStore{c: c, ttl: ttl}
}

func otpKey(email string) string      { return "otp:" + email }
func otpTriesKey(email string) string { return "otp:tries:" + email }

// Put stores a fresh code for email, replacing any outstanding one and
// resetting the attempt counter.
func (s *OTPStore) Put(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return fmt.Errorf("email and code are required")
	}
	if err := s.c.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return err
	}
	return s.c.Del(ctx, otpTriesKey(email)).Err()
}

// Verify checks code against the stored value. The attempt counter is bumped
// on every call; once it passes the cap the code is discarded outright.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	tries, err := s.c.Incr(ctx, otpTriesKey(email)).Result()
	if err != nil {
		return err
	}
	if tries == 1 {
		s.c.Expire(ctx, otpTriesKey(email), s.ttl)
	}
	if tries > otpMaxAttempts {
		s.c.Del(ctx, otpKey(email))
		return ErrOTPTooManyTries
	}

	stored, err := s.c.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return ErrOTPNotFound
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrOTPMismatch
	}

	s.c.Del(ctx, otpKey(email), otpTriesKey(email))
	return nil
}
