package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"groundchat/internal/pkg/randx"
)

const redisKeyPrefix = "session:"

// RedisRegistry stores sessions as JSON values with a Redis TTL, so expiry and
// revocation are shared by every server process.
type RedisRegistry struct {
	client redis.UniversalClient
}

// NewRedisRegistry returns a registry using client.
func NewRedisRegistry(client redis.UniversalClient) *RedisRegistry {
	return &RedisRegistry{client: client}
}

// Connect dials addr and verifies the connection with PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return client, nil
}

type redisRecord struct {
	UserID    string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *RedisRegistry) Create(ctx context.Context, userID string, ttl time.Duration) (Session, error) {
	id, err := randx.SessionID()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}

	now := time.Now().UTC()
	rec := redisRecord{UserID: userID, CreatedAt: now, ExpiresAt: now.Add(ttl)}

	payload, err := json.Marshal(rec)
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+id, payload, ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}

	return Session{ID: id, UserID: userID, CreatedAt: now, ExpiresAt: rec.ExpiresAt}, nil
}

func (r *RedisRegistry) Get(ctx context.Context, id string) (Session, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}

	s := Session{ID: id, UserID: rec.UserID, CreatedAt: rec.CreatedAt, ExpiresAt: rec.ExpiresAt}
	if s.Expired(time.Now()) {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (r *RedisRegistry) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
