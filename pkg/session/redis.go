package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces workspace keys in a shared Redis instance.
const keyPrefix = "storyshuffle:workspace:"

// RedisConfig configures the Redis-backed workspace store.
type RedisConfig struct {
	Addr     string // host:port, e.g. "localhost:6379"
	Password string // optional
	DB       int    // database number, 0 by default
}

// RedisStore is a Redis-backed workspace store for multi-instance
// deployments. Expiration is delegated to Redis key TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

func workspaceKey(id string) string {
	return keyPrefix + id
}

// Get retrieves a workspace by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*Workspace, error) {
	data, err := s.client.Get(ctx, workspaceKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	if ws.IsExpired() {
		_ = s.client.Del(ctx, workspaceKey(id)).Err()
		return nil, nil
	}
	return &ws, nil
}

// Set stores a workspace with a TTL matching its expiration.
func (s *RedisStore) Set(ctx context.Context, ws *Workspace) error {
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("marshal workspace: %w", err)
	}

	ttl := time.Until(ws.ExpiresAt)
	if ws.ExpiresAt.IsZero() {
		ttl = 0 // no expiration
	} else if ttl <= 0 {
		return nil // already expired, nothing to store
	}

	if err := s.client.Set(ctx, workspaceKey(ws.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("set workspace: %w", err)
	}
	return nil
}

// Delete removes a workspace.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, workspaceKey(id)).Err(); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return nil
}

// List returns the IDs of all live workspaces.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(keyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return ids, nil
}

// Cleanup is a no-op; Redis expires keys itself.
func (s *RedisStore) Cleanup(ctx context.Context) error {
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
