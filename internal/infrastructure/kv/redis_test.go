package kv_test

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"dealradar/internal/infrastructure/kv"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	rq := require.New(t)
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: addr}) //nolint:exhaustruct
	rq.NoError(client.Ping(ctx).Err())

	t.Cleanup(func() { client.Close() })

	store := kv.NewRedisStore(client, "dealradar:test:")
	rq.NoError(client.Del(ctx, "dealradar:test:quota").Err())

	_, err := store.Get(ctx, "quota")
	rq.ErrorIs(err, kv.ErrNotFound)

	rq.NoError(store.CompareAndSwap(ctx, "quota", nil, []byte("1")))

	err = store.CompareAndSwap(ctx, "quota", []byte("9"), []byte("2"))
	rq.ErrorIs(err, kv.ErrConflict)

	rq.NoError(store.CompareAndSwap(ctx, "quota", []byte("1"), []byte("2")))

	got, err := store.Get(ctx, "quota")
	rq.NoError(err)
	rq.Equal([]byte("2"), got)
}
