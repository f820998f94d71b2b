// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package auth provides the credential authentication core for Gatehouse.
//
// # Domain Types
//
// Account is the persisted identity record. It is keyed by the
// (first name, last name) pair and holds only a password hash — never a
// raw password. Accounts are immutable after creation; the repository
// exposes no update path.
//
// Claims is the payload carried by a session token: the subject account
// attributes plus an expiry timestamp.
//
// # Services
//
//   - Service — registration and login, orchestrating the account
//     repository, the password hasher, and the token issuer.
//   - Argon2idHasher — salted, cost-tunable one-way password hashing.
//   - TokenIssuer — signed, time-bounded, self-contained session tokens.
//
// # Trust boundary
//
// TokenIssuer.Verify is the only operation that may decide access: it
// checks the signature before the expiry window. DecodeUnverified reads
// claims without checking the signature and exists solely for
// non-authoritative display on clients that do not hold the signing
// secret (see pkg/guard). Never use DecodeUnverified server-side.
package auth
