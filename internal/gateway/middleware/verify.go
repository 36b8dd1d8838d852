// Package middleware provides the edge guard and other cross-cutting
// concerns for the gateway.
package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"taskhub/internal/gateway/keycache"
	"taskhub/internal/gateway/metrics"
	"taskhub/internal/identity"
)

// Rejection reasons. Each maps to a distinct status code so clients can tell
// "retry later" (503) from "log in again" (401/403).
var (
	ErrKeyUnavailable    = errors.New("verification key not yet available")
	ErrMissingCredential = errors.New("no bearer token provided")
	ErrInvalidCredential = errors.New("invalid or expired token")
)

// Verifier admits or rejects inbound requests based on the signed bearer
// token, using the key cache as its only trust root.
type Verifier struct {
	keys   *keycache.Cache
	logger *slog.Logger
}

// NewVerifier creates a verifier backed by the given key cache.
func NewVerifier(keys *keycache.Cache, logger *slog.Logger) *Verifier {
	return &Verifier{keys: keys, logger: logger}
}

// Verify checks the request's bearer token and returns the verified identity.
func (v *Verifier) Verify(r *http.Request) (*identity.UserContext, error) {
	key, ok := v.keys.Get()
	if !ok {
		return nil, ErrKeyUnavailable
	}

	raw := bearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		return nil, ErrMissingCredential
	}

	claims := &identity.Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidCredential
	}

	return identity.FromClaims(claims), nil
}

// Middleware admits or rejects the request. Admitted requests continue with
// the verified identity written into the trusted headers, overwriting any
// caller-supplied values. Rejection is terminal for the request.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uc, err := v.Verify(r)
		if err != nil {
			v.reject(w, r, err)
			return
		}

		metrics.RecordAuthDecision("admitted")
		uc.ApplyHeaders(r.Header)
		next.ServeHTTP(w, r.WithContext(identity.NewContext(r.Context(), uc)))
	})
}

func (v *Verifier) reject(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrKeyUnavailable):
		metrics.RecordAuthDecision("key_unavailable")
		WriteJSONError(w, http.StatusServiceUnavailable, "Service unavailable. Verification key not yet fetched.")
	case errors.Is(err, ErrMissingCredential):
		metrics.RecordAuthDecision("missing_credential")
		WriteJSONError(w, http.StatusUnauthorized, "Access denied. No token provided.")
	default:
		metrics.RecordAuthDecision("invalid_credential")
		v.logger.Warn("token verification failed",
			"path", r.URL.Path,
			"error", err)
		WriteJSONError(w, http.StatusForbidden, "Invalid or expired token.")
	}
}

// StripIdentity removes trusted identity headers from inbound requests.
// Applied to public routes so external callers can never inject identity.
func StripIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity.ScrubHeaders(r.Header)
		next.ServeHTTP(w, r)
	})
}

// WriteJSONError writes the gateway's JSON error shape.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
