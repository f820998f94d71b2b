// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// dummyPasswordHash is verified when a login targets a non-existent
// account, so response time does not reveal whether the name pair
// exists. It is a fake blob that never matches any password.
//
//nolint:gosec // G101: intentionally fake hash for timing hygiene, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service provides registration and login.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   *TokenIssuer
	logger   *slog.Logger
}

// NewService creates a Service with a no-op logger.
// Returns an error if any required dependency is nil.
func NewService(accounts AccountRepository, hasher PasswordHasher, tokens *TokenIssuer) (*Service, error) {
	return NewServiceWithLogger(accounts, hasher, tokens, slog.New(slog.DiscardHandler))
}

// NewServiceWithLogger creates a Service with the provided logger.
func NewServiceWithLogger(accounts AccountRepository, hasher PasswordHasher, tokens *TokenIssuer, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}, nil
}

// Register validates the submission, hashes the password, and inserts a
// new account. Duplicate (first, last) pairs are not deduplicated here —
// uniqueness, if wanted, is a store concern.
func (s *Service) Register(ctx context.Context, firstName, lastName, password string) (*Account, error) {
	if err := ValidateName(firstName, "first_name"); err != nil {
		return nil, err
	}
	if err := ValidateName(lastName, "last_name"); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, oops.Code(CodeValidationFailed).
			With("field", "password").
			Errorf("password cannot be empty")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(firstName, lastName, hash)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

// Login authenticates a name pair and password and returns a signed
// session token. Unknown identity and wrong password are deliberately
// indistinguishable to the caller, and the password is verified against
// a dummy hash when the account is missing to keep response time flat.
func (s *Service) Login(ctx context.Context, firstName, lastName, password string) (string, error) {
	account, lookupErr := s.accounts.GetByName(ctx, firstName, lastName)

	targetHash := dummyPasswordHash
	accountExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by name").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !accountExists {
			return "", oops.Code(CodeInvalidCredentials).Errorf("invalid name or password")
		}
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !accountExists || !valid {
		return "", oops.Code(CodeInvalidCredentials).Errorf("invalid name or password")
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID)
	return token, nil
}
