// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package guard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/pkg/guard"
)

func issueToken(t *testing.T) string {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("guard-test-secret", time.Hour)
	require.NoError(t, err)
	account := &auth.Account{ID: 7, FirstName: "Jan", LastName: "Novak"}
	token, err := issuer.Issue(account)
	require.NoError(t, err)
	return token
}

func TestNew(t *testing.T) {
	_, err := guard.New(nil)
	require.Error(t, err)

	g, err := guard.New(&guard.MemoryCache{})
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestGuard_Check(t *testing.T) {
	t.Run("no cached token sends to login", func(t *testing.T) {
		g, err := guard.New(&guard.MemoryCache{})
		require.NoError(t, err)

		decision, claims := g.Check()
		assert.Equal(t, guard.DecisionLogin, decision)
		assert.Nil(t, claims)
	})

	t.Run("cached token allows with display claims", func(t *testing.T) {
		cache := &guard.MemoryCache{}
		g, err := guard.New(cache)
		require.NoError(t, err)

		g.Login(issueToken(t))

		decision, claims := g.Check()
		assert.Equal(t, guard.DecisionAllow, decision)
		require.NotNil(t, claims)
		assert.Equal(t, "Jan", claims.FirstName)
	})

	t.Run("undecodable token clears cache and sends to login", func(t *testing.T) {
		cache := &guard.MemoryCache{}
		g, err := guard.New(cache)
		require.NoError(t, err)

		g.Login("not-a-jwt")

		decision, claims := g.Check()
		assert.Equal(t, guard.DecisionLogin, decision)
		assert.Nil(t, claims)
		assert.Empty(t, cache.Token(), "bad token should be evicted")
	})

	t.Run("forged token still passes, signature is not checked here", func(t *testing.T) {
		// The guard is a convenience, not a boundary; the server re-verifies.
		issuer, err := auth.NewTokenIssuer("some-other-secret", time.Hour)
		require.NoError(t, err)
		token, err := issuer.Issue(&auth.Account{ID: 1, FirstName: "Eve", LastName: "Intruder"})
		require.NoError(t, err)

		g, err := guard.New(&guard.MemoryCache{})
		require.NoError(t, err)
		g.Login(token)

		decision, _ := g.Check()
		assert.Equal(t, guard.DecisionAllow, decision)
	})
}

func TestGuard_Logout(t *testing.T) {
	cache := &guard.MemoryCache{}
	g, err := guard.New(cache)
	require.NoError(t, err)

	g.Login(issueToken(t))
	g.Logout()
	g.Logout() // idempotent

	decision, _ := g.Check()
	assert.Equal(t, guard.DecisionLogin, decision)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", guard.DecisionAllow.String())
	assert.Equal(t, "login", guard.DecisionLogin.String())
}
