// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Account is a persisted identity record. The login lookup key is the
// (FirstName, LastName) pair — there is no dedicated username or email.
// Accounts are immutable after creation.
type Account struct {
	ID           int64
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}

// NewAccount creates a validated Account ready for insertion. The ID is
// zero until the store assigns one. passwordHash must already be the
// output of a PasswordHasher — never a raw password.
func NewAccount(firstName, lastName, passwordHash string) (*Account, error) {
	if err := ValidateName(firstName, "first_name"); err != nil {
		return nil, err
	}
	if err := ValidateName(lastName, "last_name"); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code(CodeValidationFailed).Errorf("password hash cannot be empty")
	}
	return &Account{
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

// MaxNameLength bounds first and last names.
const MaxNameLength = 100

// ValidateName validates a name component. field names the component in
// the returned error ("first_name" or "last_name").
func ValidateName(name, field string) error {
	if strings.TrimSpace(name) == "" {
		return oops.Code(CodeValidationFailed).
			With("field", field).
			Errorf("%s cannot be empty", field)
	}
	if len(name) > MaxNameLength {
		return oops.Code(CodeValidationFailed).
			With("field", field).
			With("max", MaxNameLength).
			Errorf("%s must be at most %d characters", field, MaxNameLength)
	}
	return nil
}

// AccountRepository manages account persistence. Implementations must
// not offer an update path: identity records are created, read, and
// nothing else.
type AccountRepository interface {
	// Create stores a new account and fills in the store-assigned ID.
	Create(ctx context.Context, account *Account) error

	// GetByName retrieves an account by its (first, last) name pair.
	// Duplicate pairs are tolerated at registration time; which row is
	// returned is implementation-defined but must be deterministic.
	// Returns ErrNotFound (wrapped) if no account matches.
	GetByName(ctx context.Context, firstName, lastName string) (*Account, error)

	// GetByID retrieves an account by its store-assigned ID.
	GetByID(ctx context.Context, id int64) (*Account, error)
}
