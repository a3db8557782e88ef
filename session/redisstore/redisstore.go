package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitd-tech/moodring-vibe/session"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultKey = "moodring_auth"

	// LegacyKey held raw Spotify tokens before sessions moved to the backend.
	// It is removed on logout.
	LegacyKey = "spotify_tokens"
)

var _ session.Store = (*Store)(nil)

type Store struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

func (s *Store) Get(ctx context.Context) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[redisstore Get] %w", err)
	}
	return blob, nil
}

// Set replaces the blob in one SET, so readers see either the old or the new session.
func (s *Store) Set(ctx context.Context, blob []byte) error {
	if err := s.client.Set(ctx, s.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("[redisstore Set] %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key, LegacyKey).Err(); err != nil {
		return fmt.Errorf("[redisstore Delete] %w", err)
	}
	return nil
}
