// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code(CodeEmptyPassword).Errorf("password cannot be empty")

// PasswordHasher provides one-way password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted, self-describing hash of the password.
	// The same password yields a different blob on every call.
	Hash(password string) (string, error)

	// Verify checks the password against a stored hash blob in constant
	// time. Returns (true, nil) on match, (false, nil) on mismatch, or
	// an error when the blob is malformed.
	Verify(password, hash string) (bool, error)
}

// HasherParams tune the argon2id cost factors. Zero values fall back to
// the OWASP-recommended defaults, so HasherParams{} is always usable.
// The parameters are encoded into each hash blob, so they can be raised
// over the system's lifetime without invalidating stored hashes.
type HasherParams struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8  // parallelism
	SaltLen uint32 // salt length in bytes
	KeyLen  uint32 // digest length in bytes
}

// OWASP-recommended argon2id defaults.
var defaultHasherParams = HasherParams{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

func (p HasherParams) withDefaults() HasherParams {
	d := defaultHasherParams
	if p.Time != 0 {
		d.Time = p.Time
	}
	if p.Memory != 0 {
		d.Memory = p.Memory
	}
	if p.Threads != 0 {
		d.Threads = p.Threads
	}
	if p.SaltLen != 0 {
		d.SaltLen = p.SaltLen
	}
	if p.KeyLen != 0 {
		d.KeyLen = p.KeyLen
	}
	return d
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct {
	params HasherParams
}

// NewArgon2idHasher creates a hasher with the default cost parameters.
func NewArgon2idHasher() *Argon2idHasher {
	return NewArgon2idHasherWithParams(HasherParams{})
}

// NewArgon2idHasherWithParams creates a hasher with tuned cost parameters.
func NewArgon2idHasherWithParams(params HasherParams) *Argon2idHasher {
	return &Argon2idHasher{params: params.withDefaults()}
}

// Hash produces an argon2id hash of the password in PHC string format:
// $argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<digest>
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	digest := argon2.IDKey([]byte(password), salt,
		h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
	return encoded, nil
}

// Verify checks the password against a PHC-encoded hash blob. The cost
// parameters come from the blob itself, not the hasher, so blobs written
// with older parameters keep verifying.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	salt, expected, params, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt,
		params.Time, params.Memory, params.Threads, params.KeyLen)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// parsePHC decodes a $argon2id$... blob into salt, digest, and cost
// parameters.
func parsePHC(encodedHash string) (salt, digest []byte, params HasherParams, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, params, oops.Code(CodeInvalidHash).Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, nil, params, oops.Code(CodeInvalidHash).
			Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, oops.Code(CodeInvalidHash).Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, params, oops.Code(CodeInvalidHash).Wrap(err)
	}
	// threads must fit in uint8 for the argon2 API
	if threads > 255 {
		return nil, nil, params, oops.Code(CodeInvalidHash).
			Errorf("threads value %d exceeds uint8 max", threads)
	}
	// argon2 panics on zero iterations or zero parallelism
	if time == 0 || threads == 0 {
		return nil, nil, params, oops.Code(CodeInvalidHash).
			Errorf("invalid cost parameters: t=%d, p=%d", time, threads)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, oops.Code(CodeInvalidHash).Wrap(err)
	}
	digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, oops.Code(CodeInvalidHash).Wrap(err)
	}
	if len(digest) == 0 || len(digest) > 1<<30 {
		return nil, nil, params, oops.Code(CodeInvalidHash).
			Errorf("invalid digest length: %d", len(digest))
	}

	params = HasherParams{
		Time:    time,
		Memory:  memory,
		Threads: uint8(threads),
		KeyLen:  uint32(len(digest)),
	}
	return salt, digest, params, nil
}
