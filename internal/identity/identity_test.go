package identity

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClaims(t *testing.T) {
	claims := &Claims{
		Name:   "Admin User",
		Email:  "admin@example.com",
		TeamID: "team1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "1",
		},
	}

	uc := FromClaims(claims)
	assert.Equal(t, "1", uc.UserID)
	assert.Equal(t, "Admin User", uc.Name)
	assert.Equal(t, "admin@example.com", uc.Email)
	assert.Equal(t, "team1", uc.TeamID)
}

func TestApplyHeaders_OverwritesSpoofedValues(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderUserID, "999")
	h.Set(HeaderTeamID, "evil-team")

	uc := &UserContext{UserID: "1", Name: "Admin User", Email: "admin@example.com", TeamID: "team1"}
	uc.ApplyHeaders(h)

	assert.Equal(t, "1", h.Get(HeaderUserID))
	assert.Equal(t, "admin@example.com", h.Get(HeaderUserEmail))
	assert.Equal(t, "Admin User", h.Get(HeaderUserName))
	assert.Equal(t, "team1", h.Get(HeaderTeamID))
}

func TestScrubHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderUserID, "1")
	h.Set(HeaderUserEmail, "admin@example.com")
	h.Set(HeaderUserName, "Admin User")
	h.Set(HeaderTeamID, "team1")

	ScrubHeaders(h)

	assert.Empty(t, h.Get(HeaderUserID))
	assert.Empty(t, h.Get(HeaderUserEmail))
	assert.Empty(t, h.Get(HeaderUserName))
	assert.Empty(t, h.Get(HeaderTeamID))
}

func TestHeaderRoundTrip(t *testing.T) {
	h := http.Header{}
	uc := &UserContext{UserID: "2", Name: "Basic User", Email: "user@example.com", TeamID: "team1"}
	uc.ApplyHeaders(h)

	got := FromHeaders(h)
	assert.Equal(t, uc, got)
}

func TestContextRoundTrip(t *testing.T) {
	uc := &UserContext{UserID: "1", TeamID: "team1"}
	ctx := NewContext(context.Background(), uc)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, uc, got)
}

func TestFromContext_Missing(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
