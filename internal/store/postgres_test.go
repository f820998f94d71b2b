// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package store

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestOpenOptions_Defaults(t *testing.T) {
	opts := OpenOptions{}.withDefaults()
	assert.Equal(t, uint64(5), opts.PingRetries)
	assert.Equal(t, 500*time.Millisecond, opts.PingBackoff)

	custom := OpenOptions{PingRetries: 2, PingBackoff: time.Second}.withDefaults()
	assert.Equal(t, uint64(2), custom.PingRetries)
	assert.Equal(t, time.Second, custom.PingBackoff)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "postgres still starting",
			err:  &pgconn.PgError{Code: pgerrcode.CannotConnectNow},
			want: true,
		},
		{
			name: "connection failure",
			err:  &pgconn.PgError{Code: pgerrcode.ConnectionFailure},
			want: true,
		},
		{
			name: "too many connections",
			err:  &pgconn.PgError{Code: pgerrcode.TooManyConnections},
			want: true,
		},
		{
			name: "auth failure is permanent",
			err:  &pgconn.PgError{Code: pgerrcode.InvalidPassword},
			want: false,
		},
		{
			name: "undefined table is permanent",
			err:  &pgconn.PgError{Code: pgerrcode.UndefinedTable},
			want: false,
		},
		{
			name: "dial error is retryable",
			err:  &net.OpError{Op: "dial", Err: errors.New("connection refused")},
			want: true,
		},
		{
			name: "context cancellation is not retryable",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "deadline exceeded is not retryable",
			err:  context.DeadlineExceeded,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}
