// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package store manages the PostgreSQL connection pool and schema migrations.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Store wraps a pgx connection pool with startup retry and readiness
// checking.
type Store struct {
	pool *pgxpool.Pool
}

// OpenOptions tune the startup connection attempt.
type OpenOptions struct {
	// PingRetries is the number of ping attempts before giving up.
	PingRetries uint64
	// PingBackoff is the initial backoff between attempts; it doubles
	// each retry.
	PingBackoff time.Duration
}

func (o OpenOptions) withDefaults() OpenOptions {
	if o.PingRetries == 0 {
		o.PingRetries = 5
	}
	if o.PingBackoff == 0 {
		o.PingBackoff = 500 * time.Millisecond
	}
	return o
}

// Open connects to PostgreSQL and verifies the connection with a ping.
// The ping is retried with exponential backoff because the database is
// routinely still starting when the service comes up.
func Open(ctx context.Context, dsn string, opts OpenOptions) (*Store, error) {
	opts = opts.withDefaults()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("STORE_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxRetries(opts.PingRetries, retry.NewExponential(opts.PingBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			if isTransient(pingErr) {
				slog.Warn("database not ready, retrying", "error", pingErr)
				return retry.RetryableError(pingErr)
			}
			return pingErr
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("STORE_FAILED").With("operation", "ping").Wrap(err)
	}

	return &Store{pool: pool}, nil
}

// Pool returns the underlying connection pool for repositories.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ready reports whether the database currently answers a ping. Used by
// the readiness probe.
func (s *Store) Ready(ctx context.Context) bool {
	return s.pool.Ping(ctx) == nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// isTransient reports whether err is worth retrying: connection-level
// failures and the Postgres "still starting up" class of errors.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CannotConnectNow,
			pgerrcode.ConnectionException,
			pgerrcode.ConnectionFailure,
			pgerrcode.ConnectionDoesNotExist,
			pgerrcode.SQLClientUnableToEstablishSQLConnection,
			pgerrcode.TooManyConnections:
			return true
		}
		return false
	}
	// Dial errors surface as plain net errors before a PgError exists.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
