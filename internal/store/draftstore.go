// Package store holds the redis-backed state that outlives a single request:
// in-progress booking drafts and signup OTP codes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/observability"
)

// ErrDraftNotFound is returned once a draft has been closed or expired. Late
// results from in-flight remote calls land here instead of resurrecting
// discarded state.
var ErrDraftNotFound = errors.New("booking draft not found")

type DraftStore struct {
	c   *redis.Client
	ttl time.Duration
}

func NewDraftStore(c *redis.Client, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = 45 * time.Minute
	}
	return &DraftStore{c: c, ttl: ttl}
}

func draftKey(id uuid.UUID) string   { return "draft:" + id.String() }
func attemptKey(id uuid.UUID) string { return "attempt:" + id.String() }

func (s *DraftStore) Save(ctx context.Context, draft *models.BookingDraft) error {
	if draft == nil || draft.ID == uuid.Nil {
		return fmt.Errorf("invalid draft")
	}
	b, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %v", err)
	}
	observability.ObserveCache("drafts", "set")
	return s.c.Set(ctx, draftKey(draft.ID), b, s.ttl).Err()
}

func (s *DraftStore) Get(ctx context.Context, id uuid.UUID) (*models.BookingDraft, error) {
	v, err := s.c.Get(ctx, draftKey(id)).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("drafts", "miss")
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	observability.ObserveCache("drafts", "hit")

	draft := &models.BookingDraft{}
	if err := json.Unmarshal(v, draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %v", err)
	}
	return draft, nil
}

func (s *DraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	observability.ObserveCache("drafts", "del")
	return s.c.Del(ctx, draftKey(id)).Err()
}

// ConsumeAttempt records a payment attempt id before the booking insert runs.
// Returns false when the id was already consumed, which rejects a replayed
// submission of the same attempt.
func (s *DraftStore) ConsumeAttempt(ctx context.Context, attemptID uuid.UUID) (bool, error) {
	ok, err := s.c.SetNX(ctx, attemptKey(attemptID), time.Now().Unix(), 24*time.Hour).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume payment attempt: %v", err)
	}
	return ok, nil
}
