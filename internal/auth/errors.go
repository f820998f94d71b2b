// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("not found")

// Stable error codes attached to oops errors across the auth core.
// The HTTP layer maps these to response statuses; everything else
// degrades to a 500 with no internal detail exposed.
const (
	// CodeValidationFailed marks missing or malformed input (400).
	CodeValidationFailed = "AUTH_VALIDATION_FAILED"

	// CodeInvalidCredentials merges "unknown identity" and "wrong
	// password" into one outcome so responses cannot be used to
	// enumerate accounts (401).
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"

	// CodeEmptyPassword marks an attempt to hash an empty password (400).
	CodeEmptyPassword = "AUTH_EMPTY_PASSWORD"

	// CodeInvalidHash marks a stored hash blob that cannot be parsed.
	CodeInvalidHash = "AUTH_INVALID_HASH"

	// CodeConfigInvalid marks missing or unusable configuration.
	// Fatal at startup; the process refuses to serve.
	CodeConfigInvalid = "CONFIG_INVALID"

	// CodeTokenInvalid marks a token with a bad signature or shape.
	CodeTokenInvalid = "TOKEN_INVALID"

	// CodeTokenExpired marks a well-signed token past its expiry.
	CodeTokenExpired = "TOKEN_EXPIRED"

	// CodeStoreFailed marks a downstream credential store failure.
	CodeStoreFailed = "STORE_FAILED"

	// CodeStoreTimeout marks a credential store call that exceeded the
	// caller-supplied deadline.
	CodeStoreTimeout = "STORE_TIMEOUT"
)
