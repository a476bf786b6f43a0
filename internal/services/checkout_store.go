package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/velora/internal/models"
)

// ErrIntentNotFound is returned when an intent is missing or its TTL has
// elapsed; callers cannot tell the two cases apart.
var ErrIntentNotFound = errors.New("checkout intent not found")

const intentKeyPrefix = "checkout:intent:"

// CheckoutStore persists checkout intents in redis under a TTL. Expiry is
// enforced by redis itself, so stale intents vanish without any sweeper in
// the application.
type CheckoutStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCheckoutStore constructs a CheckoutStore with the given intent TTL.
func NewCheckoutStore(rdb *redis.Client, ttl time.Duration) *CheckoutStore {
	return &CheckoutStore{rdb: rdb, ttl: ttl}
}

// Create assigns the intent an id and stores it under the TTL.
func (s *CheckoutStore) Create(ctx context.Context, intent *models.CheckoutIntent) error {
	if intent.ID == uuid.Nil {
		intent.ID = uuid.New()
	}
	intent.CreatedAt = time.Now()

	payload, err := json.Marshal(intent)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, intentKeyPrefix+intent.ID.String(), payload, s.ttl).Err()
}

// Get loads an intent by id. Expired intents are gone from redis and come
// back as ErrIntentNotFound.
func (s *CheckoutStore) Get(ctx context.Context, id uuid.UUID) (*models.CheckoutIntent, error) {
	payload, err := s.rdb.Get(ctx, intentKeyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}

	var intent models.CheckoutIntent
	if err := json.Unmarshal(payload, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// Delete removes a consumed intent. Deleting an already-expired intent is
// not an error.
func (s *CheckoutStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, intentKeyPrefix+id.String()).Err()
}
