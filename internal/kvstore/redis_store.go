package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps slots as plain string keys under a common prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, slot string, dst any) (bool, error) {
	if err := validateSlot(slot); err != nil {
		return false, err
	}
	data, err := s.client.Get(ctx, s.prefix+slot).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read slot %s: %w", slot, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode slot %s: %w", slot, err)
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, slot string, value any) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", slot, err)
	}
	if err := s.client.Set(ctx, s.prefix+slot, data, 0).Err(); err != nil {
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	return nil
}
