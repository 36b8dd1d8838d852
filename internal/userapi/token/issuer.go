// Package token issues signed identity tokens.
package token

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskhub/internal/identity"
	"taskhub/internal/userapi/domain"
)

// ErrMissingSubject is returned when issuing is attempted for an incomplete
// identity.
var ErrMissingSubject = errors.New("cannot issue token without a subject")

// Issuer signs identity claims with the authority's private key.
type Issuer struct {
	key *rsa.PrivateKey
	ttl time.Duration
}

// NewIssuer creates an issuer. TTL defaults to one hour when zero.
func NewIssuer(key *rsa.PrivateKey, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{key: key, ttl: ttl}
}

// Issue signs a time-bound RS256 token carrying the user's identity claims.
func (i *Issuer) Issue(u *domain.User) (string, error) {
	if u == nil || u.ID == "" {
		return "", ErrMissingSubject
	}

	now := time.Now()
	claims := identity.Claims{
		Name:   u.Name,
		Email:  u.Email,
		TeamID: u.TeamID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(i.key)
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
