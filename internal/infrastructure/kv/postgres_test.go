package kv_test

import (
	"context"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // golang postgres driver
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"dealradar/internal/infrastructure/kv"
	"dealradar/pkg/dbtest"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN is not set")
	}

	rq := require.New(t)
	ctx := context.Background()

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	rq.NoError(err)

	t.Cleanup(func() { db.Close() })

	rq.NoError(dbtest.MigrateFromFile(db, "../../../migrations/kv.sql"))

	_, err = db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key LIKE 'test:%'`)
	rq.NoError(err)

	store := kv.NewPostgresStore(db)

	_, err = store.Get(ctx, "test:quota")
	rq.ErrorIs(err, kv.ErrNotFound)

	rq.NoError(store.CompareAndSwap(ctx, "test:quota", nil, []byte("1")))

	err = store.CompareAndSwap(ctx, "test:quota", nil, []byte("2"))
	rq.ErrorIs(err, kv.ErrConflict)

	err = store.CompareAndSwap(ctx, "test:quota", []byte("0"), []byte("2"))
	rq.ErrorIs(err, kv.ErrConflict)

	rq.NoError(store.CompareAndSwap(ctx, "test:quota", []byte("1"), []byte("2")))

	got, err := store.Get(ctx, "test:quota")
	rq.NoError(err)
	rq.Equal([]byte("2"), got)
}
