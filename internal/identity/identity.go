// Package identity defines the verified identity claims shared between the
// edge gateway and the backend services.
package identity

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// Trusted identity headers. The gateway is the only writer of these headers;
// backend services must never accept them from any other source.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
	HeaderTeamID    = "X-Team-Id"
)

// Claims is the JWT claim set issued at login and verified at the edge.
type Claims struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	TeamID string `json:"teamId"`
	jwt.RegisteredClaims
}

// UserContext is the verified identity attached to an admitted request.
type UserContext struct {
	UserID string
	Name   string
	Email  string
	TeamID string
}

// FromClaims builds a UserContext from verified token claims.
func FromClaims(c *Claims) *UserContext {
	return &UserContext{
		UserID: c.Subject,
		Name:   c.Name,
		Email:  c.Email,
		TeamID: c.TeamID,
	}
}

// FromHeaders reads the trusted identity headers set by the gateway.
func FromHeaders(h http.Header) *UserContext {
	return &UserContext{
		UserID: h.Get(HeaderUserID),
		Name:   h.Get(HeaderUserName),
		Email:  h.Get(HeaderUserEmail),
		TeamID: h.Get(HeaderTeamID),
	}
}

// ApplyHeaders writes the identity onto the outbound request headers,
// overwriting any caller-supplied values of the same keys.
func (uc *UserContext) ApplyHeaders(h http.Header) {
	h.Set(HeaderUserID, uc.UserID)
	h.Set(HeaderUserEmail, uc.Email)
	h.Set(HeaderUserName, uc.Name)
	h.Set(HeaderTeamID, uc.TeamID)
}

// ScrubHeaders removes all trusted identity headers. Used on paths where the
// gateway does not attach an identity, so external callers can never smuggle
// one through.
func ScrubHeaders(h http.Header) {
	h.Del(HeaderUserID)
	h.Del(HeaderUserEmail)
	h.Del(HeaderUserName)
	h.Del(HeaderTeamID)
}

type contextKey string

const userContextKey contextKey = "user_context"

// NewContext attaches a user context to the given context.
func NewContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// FromContext retrieves the user context from the given context.
func FromContext(ctx context.Context) (*UserContext, bool) {
	uc, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || uc == nil {
		return nil, false
	}
	return uc, true
}
