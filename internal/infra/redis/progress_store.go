package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"reading-hero-service/internal/domain"
)

const defaultPrefix = "reading-hero:"

// ProgressStore keeps each profile's progress blob in a plain string key,
// so several service instances share one record per profile.
type ProgressStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewProgressStore stores blobs under prefix+key. A zero ttl keeps them forever.
func NewProgressStore(client *redis.Client, prefix string, ttl time.Duration) *ProgressStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &ProgressStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *ProgressStore) LoadProgress(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrProgressNotFound
	}
	return data, err
}

// SaveProgress overwrites the blob and refreshes its expiry.
func (s *ProgressStore) SaveProgress(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

// Ping reports whether Redis is reachable.
func (s *ProgressStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
