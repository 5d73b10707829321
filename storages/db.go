package storages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const Memory = ":memory:"

// DB is a SQLite database in WAL mode. Writes are retried on transient
// contention errors.
type DB struct {
	db    *sql.DB
	path  string
	retry retryConfig
}

func Open(path string) (*DB, error) {
	dsn := path
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == Memory {
		// every connection to :memory: is a distinct database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &DB{
		db:    db,
		path:  path,
		retry: defaultRetryConfig,
	}, nil
}

func (d *DB) Path() string {
	return d.path
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate runs schema statements in one transaction.
func (d *DB) Migrate(ctx context.Context, statements ...string) error {
	return d.WithTx(ctx, func(tx Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		return nil
	})
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (ret sql.Result, err error) {
	err = retryOp(ctx, d.retry, func() (err error) {
		ret, err = d.db.ExecContext(ctx, query, args...)
		return
	})
	return
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (ret *sql.Rows, err error) {
	err = retryOp(ctx, d.retry, func() (err error) {
		ret, err = d.db.QueryContext(ctx, query, args...)
		return
	})
	return
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *DB) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx: tx}, nil
}

// WithTx runs fn in a transaction, committing when fn returns nil. The whole
// transaction is retried on transient errors, so fn must not keep state
// across calls.
func (d *DB) WithTx(ctx context.Context, fn func(Tx) error) error {
	return retryOp(ctx, d.retry, func() error {
		tx, err := d.Begin(ctx)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			if e := tx.Rollback(); e != nil && !errors.Is(e, sql.ErrTxDone) {
				return errors.Join(err, e)
			}
			return err
		}
		return tx.Commit()
	})
}
