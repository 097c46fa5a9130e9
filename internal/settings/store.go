// store.go - Settings storage slot abstraction

package settings

import (
	"context"
	"fmt"
)

// Store persists one settings document under a fixed slot.
// Load returns (nil, nil) when the slot is still empty.
type Store interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

// StoreConfig selects and configures a Store backend
type StoreConfig struct {
	Kind string // "file", "mongo" or "redis"
	Slot string

	FilePath string

	MongoURI    string
	MongoDBName string

	RedisURL    string
	RedisPrefix string
}

// NewStore creates the configured backend. The returned close function releases connections.
func NewStore(ctx context.Context, cfg StoreConfig) (Store, func(), error) {
	switch cfg.Kind {
	case "", "file":
		return NewFileStore(cfg.FilePath), func() {}, nil

	case "mongo":
		store, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDBName, cfg.Slot)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case "redis":
		store, err := NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.Slot)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported settings store: %s (supported: file, mongo, redis)", cfg.Kind)
	}
}

// Seed writes seed into the slot when it is still empty and reports whether it did
func Seed(ctx context.Context, store Store, seed *Settings) (bool, error) {
	existing, err := store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load settings: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	if err := store.Save(ctx, seed); err != nil {
		return false, fmt.Errorf("failed to seed settings: %w", err)
	}
	return true, nil
}
