// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

func TestAccountRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
		wantCode  string
	}{
		{
			name: "successful insert returns assigned id",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id"}).AddRow(int64(42))
				mock.ExpectQuery(`INSERT INTO accounts`).
					WithArgs("Jan", "Novak", "hashed", pgxmock.AnyArg()).
					WillReturnRows(rows)
			},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO accounts`).
					WithArgs("Jan", "Novak", "hashed", pgxmock.AnyArg()).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr:  true,
			wantCode: "ACCOUNT_CREATE_FAILED",
		},
		{
			name: "timeout gets its own code",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO accounts`).
					WithArgs("Jan", "Novak", "hashed", pgxmock.AnyArg()).
					WillReturnError(context.DeadlineExceeded)
			},
			wantErr:  true,
			wantCode: auth.CodeStoreTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewAccountRepository(mock)
			account := &auth.Account{
				FirstName:    "Jan",
				LastName:     "Novak",
				PasswordHash: "hashed",
				CreatedAt:    time.Now(),
			}
			err = repo.Create(context.Background(), account)

			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(42), account.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func accountRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "first_name", "last_name", "password_hash", "created_at"})
}

func TestAccountRepository_GetByName(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		setupMock   func(mock pgxmock.PgxPoolIface)
		wantErr     bool
		wantCode    string
		notFound    bool
		wantAccount *auth.Account
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := accountRows().AddRow(int64(1), "Jan", "Novak", "hashed", now)
				mock.ExpectQuery(`SELECT id, first_name, last_name, password_hash, created_at FROM accounts`).
					WithArgs("Jan", "Novak").
					WillReturnRows(rows)
			},
			wantAccount: &auth.Account{ID: 1, FirstName: "Jan", LastName: "Novak", PasswordHash: "hashed", CreatedAt: now},
		},
		{
			name: "not found wraps sentinel",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, first_name, last_name, password_hash, created_at FROM accounts`).
					WithArgs("Nobody", "Here").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr:  true,
			wantCode: "ACCOUNT_NOT_FOUND",
			notFound: true,
		},
		{
			name: "postgres error carries pg_code context",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, first_name, last_name, password_hash, created_at FROM accounts`).
					WithArgs("Jan", "Novak").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedTable})
			},
			wantErr:  true,
			wantCode: "ACCOUNT_GET_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewAccountRepository(mock)
			first, last := "Jan", "Novak"
			if tt.notFound {
				first, last = "Nobody", "Here"
			}
			got, err := repo.GetByName(context.Background(), first, last)

			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				if tt.notFound {
					assert.ErrorIs(t, err, auth.ErrNotFound)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAccount, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestAccountRepository_GetByID(t *testing.T) {
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := accountRows().AddRow(int64(7), "Jan", "Novak", "hashed", now)
		mock.ExpectQuery(`SELECT id, first_name, last_name, password_hash, created_at FROM accounts`).
			WithArgs(int64(7)).
			WillReturnRows(rows)

		repo := NewAccountRepository(mock)
		got, err := repo.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found includes id context", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, first_name, last_name, password_hash, created_at FROM accounts`).
			WithArgs(int64(99)).
			WillReturnError(pgx.ErrNoRows)

		repo := NewAccountRepository(mock)
		_, err = repo.GetByID(context.Background(), 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorContext(t, err, "id", int64(99))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
