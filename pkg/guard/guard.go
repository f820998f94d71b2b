// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package guard implements the client-side view gate used by browser and
// CLI frontends. It decides, from a locally cached token, whether a
// protected view may render and which display claims to show.
//
// The guard is NOT a security boundary. It decodes tokens without checking
// the signature, so a forged token will happily pass it. Every protected
// server endpoint re-verifies the signature; the guard only spares the
// frontend a round trip when the user clearly has no session.
package guard

import (
	"sync"

	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// Decision is the outcome of checking a protected view.
type Decision int

const (
	// DecisionLogin means the view must not render; send the user to login.
	DecisionLogin Decision = iota
	// DecisionAllow means the view may render with the returned claims.
	DecisionAllow
)

func (d Decision) String() string {
	if d == DecisionAllow {
		return "allow"
	}
	return "login"
}

// TokenCache is the frontend's local token storage. Implementations wrap
// whatever the platform offers (localStorage, a keychain, a dotfile).
type TokenCache interface {
	// Token returns the cached token, or "" when none is stored.
	Token() string
	// Store replaces the cached token.
	Store(token string)
	// Clear removes the cached token.
	Clear()
}

// MemoryCache is a TokenCache backed by process memory. Safe for
// concurrent use.
type MemoryCache struct {
	mu    sync.Mutex
	token string
}

func (c *MemoryCache) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *MemoryCache) Store(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

// Guard gates protected views against the local token cache.
type Guard struct {
	cache TokenCache
}

// New returns a Guard over the given cache.
func New(cache TokenCache) (*Guard, error) {
	if cache == nil {
		return nil, oops.Errorf("token cache is required")
	}
	return &Guard{cache: cache}, nil
}

// Check decides whether a protected view may activate. An absent or
// undecodable token clears the cache and sends the user to login;
// otherwise the unverified display claims are returned alongside
// DecisionAllow.
func (g *Guard) Check() (Decision, *auth.Claims) {
	token := g.cache.Token()
	if token == "" {
		g.cache.Clear()
		return DecisionLogin, nil
	}
	claims, err := auth.DecodeUnverified(token)
	if err != nil {
		g.cache.Clear()
		return DecisionLogin, nil
	}
	return DecisionAllow, claims
}

// Login stores a freshly issued token.
func (g *Guard) Login(token string) {
	g.cache.Store(token)
}

// Logout discards the cached token. Idempotent.
func (g *Guard) Logout() {
	g.cache.Clear()
}
