package state

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/vacancybot/core/config"
)

// Store is a per-chat session store.
type Store[T any] interface {
	// Get returns the session for chatID; ok is false when none is live.
	Get(ctx context.Context, chatID int64) (T, bool, error)
	Set(ctx context.Context, chatID int64, v T) error
	Delete(ctx context.Context, chatID int64) error
}

// Open builds a store for the configured backend. The namespace separates
// independent session kinds sharing one redis database.
func Open[T any](cfg coreconfig.StateConfig, namespace string, client redis.Cmdable) (Store[T], func(), error) {
	switch cfg.Backend {
	case "", coreconfig.StateMemory:
		m := NewMemory[T](cfg.TTL, WithJanitor(cfg.JanitorInterval))
		return m, m.Close, nil
	case coreconfig.StateRedis:
		if client == nil {
			return nil, nil, fmt.Errorf("state: redis backend selected but no client")
		}
		return NewRedis[T](client, cfg.Redis.Prefix+":"+namespace, cfg.TTL), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("state: unknown backend %q", cfg.Backend)
	}
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return coreconfig.DefaultStateTTL
	}
	return ttl
}
