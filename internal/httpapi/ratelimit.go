// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package httpapi

import (
	"sync"
	"time"
)

// Rate limiting configuration.
const (
	// lockoutThreshold is the number of failed logins that triggers a lockout.
	lockoutThreshold = 7

	// lockoutDuration is how long an address stays locked out.
	lockoutDuration = 15 * time.Minute

	// failureWindow is how long failures count against an address.
	failureWindow = 15 * time.Minute

	// maxDelay caps the progressive delay before lockout.
	maxDelay = 32 * time.Second
)

type limiterEntry struct {
	failures    int
	lastFailure time.Time
	lockedUntil time.Time
}

// loginLimiter throttles failed logins per remote address. Successful
// logins reset the counter. Stale entries are pruned lazily on access.
type loginLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	now     func() time.Time
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

// check returns how long the address must wait before the next attempt.
// A zero duration means the attempt may proceed.
func (l *loginLimiter) check(addr string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked()

	e, ok := l.entries[addr]
	if !ok {
		return 0
	}

	now := l.now()
	if e.lockedUntil.After(now) {
		return e.lockedUntil.Sub(now)
	}

	// Progressive delay: 2^(failures-1) seconds, capped before lockout.
	if e.failures > 0 {
		delay := time.Duration(1<<(e.failures-1)) * time.Second
		if delay > maxDelay {
			delay = maxDelay
		}
		if wait := e.lastFailure.Add(delay).Sub(now); wait > 0 {
			return wait
		}
	}
	return 0
}

// recordFailure counts a failed login and starts a lockout at the
// threshold.
func (l *loginLimiter) recordFailure(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[addr]
	if !ok {
		e = &limiterEntry{}
		l.entries[addr] = e
	}
	e.failures++
	e.lastFailure = l.now()
	if e.failures >= lockoutThreshold {
		e.lockedUntil = l.now().Add(lockoutDuration)
	}
}

// reset clears the failure state after a successful login.
func (l *loginLimiter) reset(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, addr)
}

// pruneLocked drops entries whose failures have aged out. Caller holds
// the mutex.
func (l *loginLimiter) pruneLocked() {
	now := l.now()
	for addr, e := range l.entries {
		if now.Sub(e.lastFailure) > failureWindow && !e.lockedUntil.After(now) {
			delete(l.entries, addr)
		}
	}
}
