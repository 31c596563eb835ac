package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps sessions as JSON values with a key expiry.
type Redis[T any] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis returns a redis-backed store; keys are "<prefix>:<chat_id>".
func NewRedis[T any](client redis.Cmdable, prefix string, ttl time.Duration) *Redis[T] {
	return &Redis[T]{client: client, prefix: prefix, ttl: ttlOrDefault(ttl)}
}

func (r *Redis[T]) key(chatID int64) string {
	return r.prefix + ":" + strconv.FormatInt(chatID, 10)
}

// Get implements Store.
func (r *Redis[T]) Get(ctx context.Context, chatID int64) (T, bool, error) {
	var v T
	raw, err := r.client.Get(ctx, r.key(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("state get: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("state decode: %w", err)
	}
	return v, true, nil
}

// Set implements Store.
func (r *Redis[T]) Set(ctx context.Context, chatID int64, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("state encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key(chatID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("state set: %w", err)
	}
	return nil
}

// Delete implements Store.
func (r *Redis[T]) Delete(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, r.key(chatID)).Err(); err != nil {
		return fmt.Errorf("state delete: %w", err)
	}
	return nil
}
