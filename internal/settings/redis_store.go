// redis_store.go - Redis settings slot

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the settings as a JSON value under {prefix}:settings:{slot}
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore parses the Redis URL and pings the server
func NewRedisStore(ctx context.Context, url, prefix, slot string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStoreWithClient(client, prefix, slot), nil
}

func newRedisStoreWithClient(client *redis.Client, prefix, slot string) *RedisStore {
	return &RedisStore{client: client, key: settingsKey(prefix, slot)}
}

func settingsKey(prefix, slot string) string {
	parts := []string{"settings", slot}
	if prefix == "" {
		return strings.Join(parts, ":")
	}
	return prefix + ":" + strings.Join(parts, ":")
}

func (r *RedisStore) Load(ctx context.Context) (*Settings, error) {
	raw, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings key %s: %w", r.key, err)
	}

	s := &Settings{}
	if err := json.Unmarshal([]byte(raw), s); err != nil {
		return nil, fmt.Errorf("failed to decode settings key %s: %w", r.key, err)
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := r.client.Set(ctx, r.key, string(data), 0).Err(); err != nil {
		return fmt.Errorf("failed to write settings key %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Close() {
	if err := r.client.Close(); err != nil {
		log.Printf("Redis close failed: %v", err)
	}
}
