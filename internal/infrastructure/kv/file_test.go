package kv

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreGetAndSwap(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store, err := NewFileStore(t.TempDir())
	rq.NoError(err)

	_, err = store.Get(ctx, "memory")
	rq.ErrorIs(err, ErrNotFound)

	// Create asserts absence.
	rq.NoError(store.CompareAndSwap(ctx, "memory", nil, []byte(`{"v":1}`)))

	got, err := store.Get(ctx, "memory")
	rq.NoError(err)
	rq.Equal([]byte(`{"v":1}`), got)

	// A second create must lose.
	err = store.CompareAndSwap(ctx, "memory", nil, []byte(`{"v":9}`))
	rq.ErrorIs(err, ErrConflict)

	// Stale expected value must lose.
	err = store.CompareAndSwap(ctx, "memory", []byte(`{"v":0}`), []byte(`{"v":2}`))
	rq.ErrorIs(err, ErrConflict)

	rq.NoError(store.CompareAndSwap(ctx, "memory", []byte(`{"v":1}`), []byte(`{"v":2}`)))

	got, err = store.Get(ctx, "memory")
	rq.NoError(err)
	rq.Equal([]byte(`{"v":2}`), got)
}

func TestFileStoreCrashBeforeSwapKeepsPreviousState(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store, err := NewFileStore(t.TempDir())
	rq.NoError(err)

	rq.NoError(store.CompareAndSwap(ctx, "memory", nil, []byte(`{"v":1}`)))

	// The temporary file is written, then the process "dies" before rename.
	store.renameFn = func(string, string) error {
		return errors.New("process killed")
	}

	err = store.CompareAndSwap(ctx, "memory", []byte(`{"v":1}`), []byte(`{"v":2}`))
	rq.Error(err)

	store.renameFn = os.Rename

	got, err := store.Get(ctx, "memory")
	rq.NoError(err)
	rq.Equal([]byte(`{"v":1}`), got, "canonical state must survive the crash")
}

func TestFileStoreKeysDoNotCollide(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store, err := NewFileStore(t.TempDir())
	rq.NoError(err)

	rq.NoError(store.CompareAndSwap(ctx, "quota", nil, []byte("a")))
	rq.NoError(store.CompareAndSwap(ctx, "memory", nil, []byte("b")))

	got, err := store.Get(ctx, "quota")
	rq.NoError(err)
	rq.Equal([]byte("a"), got)
}
