// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// DB is the subset of pgxpool.Pool the repository needs. It is an
// interface so tests can substitute pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements auth.AccountRepository using PostgreSQL.
// There is deliberately no Update method: identity records are
// immutable after creation.
type AccountRepository struct {
	db DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create stores a new account and fills in the store-assigned ID.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (first_name, last_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		return storeErr(err, "ACCOUNT_CREATE_FAILED", "insert account")
	}
	return nil
}

// GetByName retrieves an account by its name pair. Duplicate pairs are
// possible; the lowest-id (oldest) row wins, deterministically.
func (r *AccountRepository) GetByName(ctx context.Context, firstName, lastName string) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, password_hash, created_at
		FROM accounts
		WHERE first_name = $1 AND last_name = $2
		ORDER BY id
		LIMIT 1
	`, firstName, lastName)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr(err, "ACCOUNT_GET_FAILED", "get account by name")
	}
	return account, nil
}

// GetByID retrieves an account by its store-assigned ID.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, password_hash, created_at
		FROM accounts
		WHERE id = $1
	`, id)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr(err, "ACCOUNT_GET_FAILED", "get account by id")
	}
	return account, nil
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var a auth.Account
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// storeErr wraps a store failure with a stable code. Deadline overruns
// get their own code so the HTTP layer can report a retryable 5xx.
func storeErr(err error, code, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return oops.Code(auth.CodeStoreTimeout).
			With("operation", operation).
			Wrap(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return oops.Code(code).
			With("operation", operation).
			With("pg_code", pgErr.Code).
			Wrap(err)
	}
	return oops.Code(code).With("operation", operation).Wrap(err)
}
