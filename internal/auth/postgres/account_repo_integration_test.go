// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/auth/postgres"
)

func createTestAccount(ctx context.Context, t *testing.T, repo *postgres.AccountRepository, first, last string) *auth.Account {
	t.Helper()
	account := &auth.Account{
		FirstName:    first,
		LastName:     last,
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, account))

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, account.ID)
	})

	return account
}

func TestAccountRepository_Create_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewAccountRepository(testPool)

	t.Run("assigns monotonically increasing ids", func(t *testing.T) {
		first := createTestAccount(ctx, t, repo, "Create", "One")
		second := createTestAccount(ctx, t, repo, "Create", "Two")
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("stored row round-trips", func(t *testing.T) {
		created := createTestAccount(ctx, t, repo, "Round", "Trip")

		stored, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.FirstName, stored.FirstName)
		assert.Equal(t, created.LastName, stored.LastName)
		assert.Equal(t, created.PasswordHash, stored.PasswordHash)
		assert.WithinDuration(t, created.CreatedAt, stored.CreatedAt, time.Millisecond)
	})
}

func TestAccountRepository_GetByName_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewAccountRepository(testPool)

	t.Run("missing account wraps not-found sentinel", func(t *testing.T) {
		_, err := repo.GetByName(ctx, "No", "Body")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("duplicate name pairs resolve to the oldest row", func(t *testing.T) {
		first := createTestAccount(ctx, t, repo, "Dup", "Pair")
		createTestAccount(ctx, t, repo, "Dup", "Pair")

		got, err := repo.GetByName(ctx, "Dup", "Pair")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID, "lookup should be deterministic")
	})
}
