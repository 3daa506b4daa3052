package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session keys in Redis.
const keyPrefix = "session:"

// RedisStore implements Store on Redis. Expiry is delegated to Redis key
// TTLs, so expired sessions disappear without a cleanup job.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store with the given TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Create establishes a new session for userID.
func (s *RedisStore) Create(ctx context.Context, userID int64) (*Session, error) {
	sess := &Session{
		ID:     uuid.New().String(),
		UserID: userID,
	}
	err := s.client.Set(ctx, keyPrefix+sess.ID, strconv.FormatInt(userID, 10), s.ttl).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

// Get retrieves a live session by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// A corrupt value is treated as no session rather than a server fault.
		return nil, ErrNotFound
	}
	return &Session{ID: id, UserID: userID}, nil
}

// Delete removes a session. Idempotent: deleting an absent key succeeds.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
