// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = time.Hour

// Claims is the payload embedded in a session token: the subject
// account's display attributes plus the registered expiry claim.
type Claims struct {
	jwt.RegisteredClaims
	FirstName string `json:"first_name,omitempty"`
	AccountID int64  `json:"id,omitempty"`
}

// TokenIssuer mints and validates HS256-signed session tokens. Tokens
// are self-contained: the server keeps no per-session state, so a token
// stays verifiable until its natural expiry regardless of logout.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. An empty secret is a fatal
// configuration error — there is no fallback secret, by contract.
// A zero ttl falls back to DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, oops.Code(CodeConfigInvalid).Errorf("signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the validity window tokens are issued with.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue mints a signed token asserting the account's identity, valid
// for the issuer's TTL from now.
func (i *TokenIssuer) Issue(account *Account) (string, error) {
	if account == nil {
		return "", oops.Code(CodeTokenInvalid).Errorf("account is required")
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", account.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		FirstName: account.FirstName,
		AccountID: account.ID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify validates signature integrity and then the expiry window, in
// that order, and returns the claims only if both pass. Signature
// failures and expiry are reported with distinct codes but both must be
// treated as unauthenticated by callers.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code(CodeTokenExpired).Wrap(err)
		}
		return nil, oops.Code(CodeTokenInvalid).Wrap(err)
	}
	if !token.Valid {
		return nil, oops.Code(CodeTokenInvalid).Errorf("token is not valid")
	}
	return claims, nil
}

// DecodeUnverified extracts claims WITHOUT checking the signature or
// expiry. It exists for clients that do not hold the signing secret and
// may only use the result for display. Never make a trust decision from
// its output — use Verify.
func DecodeUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, oops.Code(CodeTokenInvalid).Wrap(err)
	}
	return claims, nil
}
