// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/semaphore"

	"github.com/andresuchdata/retail-ars/internal/config"
)

// DB wraps the sqlx pool with a semaphore capping concurrent transactional
// work, so parallel channel runs cannot exhaust the connection pool.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

const maxConcurrentTx = 4

// Connect opens a Postgres pool from config.
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	return ConnectDSN(dsn)
}

// ConnectDSN opens a Postgres pool from a raw DSN or URL.
func ConnectDSN(dsn string) (*DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &DB{DB: db, sem: semaphore.NewWeighted(maxConcurrentTx)}, nil
}

// WithTx runs fn inside a transaction, holding a semaphore slot for its
// duration. The transaction is rolled back on error or panic.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire tx slot: %w", err)
	}
	defer d.sem.Release(1)

	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
