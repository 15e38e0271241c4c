package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// casScript compares the stored value with ARGV[1] (ARGV[3]="1" asserts the
// key is absent) and sets ARGV[2] only on a match. Runs atomically inside
// redis, which gives the per-key linearization the limiter relies on.
var casScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if ARGV[3] == '1' then
  if current ~= false then return 0 end
elseif current == false or current ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`) //nolint:gochecknoglobals

type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("redis.Get: %w", err)
	}

	return data, nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, key string, expected, next []byte) error {
	expectAbsent := "0"
	if expected == nil {
		expectAbsent = "1"
	}

	swapped, err := casScript.Run(
		ctx,
		s.client,
		[]string{s.prefix + key},
		string(expected),
		string(next),
		expectAbsent,
	).Int()
	if err != nil {
		return fmt.Errorf("casScript.Run: %w", err)
	}

	if swapped == 0 {
		return ErrConflict
	}

	return nil
}
