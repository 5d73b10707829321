package storages

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/mts/configs"
	"github.com/reusee/mts/modes"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestWALMode(t *testing.T) {
	db := openTest(t)
	var mode string
	require.NoError(t, db.QueryRow(t.Context(), "pragma journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)
}

func TestWithTx(t *testing.T) {
	db := openTest(t)
	ctx := t.Context()
	require.NoError(t, db.Migrate(ctx, `create table foo (id integer primary key, name text)`))

	require.NoError(t, db.WithTx(ctx, func(tx Tx) error {
		_, err := tx.Exec(ctx, `insert into foo (name) values (?)`, "a")
		return err
	}))

	errBoom := errors.New("boom")
	err := db.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.Exec(ctx, `insert into foo (name) values (?)`, "b"); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	var n int
	require.NoError(t, db.QueryRow(ctx, `select count(*) from foo`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestMemory(t *testing.T) {
	db, err := Open(Memory)
	require.NoError(t, err)
	defer db.Close()
	ctx := t.Context()
	require.NoError(t, db.Migrate(ctx, `create table foo (x integer)`))
	_, err = db.Exec(ctx, `insert into foo values (1)`)
	require.NoError(t, err)
	rows, err := db.Query(ctx, `select x from foo`)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
}

func TestRetryOp(t *testing.T) {
	cfg := retryConfig{
		maxRetries: 3,
		baseDelay:  time.Millisecond,
		maxDelay:   2 * time.Millisecond,
	}

	calls := 0
	err := retryOp(t.Context(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	calls = 0
	errFatal := errors.New("no such table")
	err = retryOp(t.Context(), cfg, func() error {
		calls++
		return errFatal
	})
	require.ErrorIs(t, err, errFatal)
	require.Equal(t, 1, calls)

	calls = 0
	err = retryOp(t.Context(), cfg, func() error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	require.Error(t, err)
	require.Equal(t, 4, calls)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err = retryOp(ctx, cfg, func() error {
		return errors.New("SQLITE_BUSY")
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoffDelay(t *testing.T) {
	cfg := defaultRetryConfig
	for attempt := range 6 {
		d := backoffDelay(cfg, attempt)
		if d < cfg.baseDelay || d >= cfg.maxDelay+cfg.baseDelay {
			t.Fatalf("attempt %d: %v", attempt, d)
		}
	}
}

func TestModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "module.db")
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader(nil, "")
		},
		func() DBPath {
			return DBPath(path)
		},
	).Call(func(
		getDB GetDB,
	) {
		db, err := getDB()
		require.NoError(t, err)
		defer db.Close()
		require.Equal(t, path, db.Path())
		again, err := getDB()
		require.NoError(t, err)
		require.Same(t, db, again)
	})
}
