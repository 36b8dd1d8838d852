package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/identity"
	"taskhub/internal/userapi/keys"
	"taskhub/internal/userapi/store"
)

func newTestServer(t *testing.T) (*echo.Echo, *keys.Keypair) {
	t.Helper()
	s, err := store.Seeded()
	require.NoError(t, err)
	kp, err := keys.Generate()
	require.NoError(t, err)
	return New(s, kp, time.Hour), kp
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)
	return rec
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, "GET", "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)
}

func TestPublicKey(t *testing.T) {
	e, kp := newTestServer(t)
	rec := doJSON(e, "GET", "/auth/public-key", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, kp.PublicPEM(), resp["publicKey"])
}

func TestLogin_Success(t *testing.T) {
	e, kp := newTestServer(t)
	rec := doJSON(e, "POST", "/auth/login", `{"email":"admin@example.com","password":"password"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    struct {
			ID     string `json:"id"`
			Email  string `json:"email"`
			TeamID string `json:"teamId"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, "1", resp.User.ID)
	assert.Equal(t, "team1", resp.User.TeamID)

	// The issued token must verify against the served public key and carry
	// the identity claims the gateway forwards downstream.
	claims := &identity.Claims{}
	parsed, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return jwt.ParseRSAPublicKeyFromPEM([]byte(kp.PublicPEM()))
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, "team1", claims.TeamID)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "wrong password", body: `{"email":"admin@example.com","password":"wrong"}`},
		{name: "unknown email", body: `{"email":"nobody@example.com","password":"password"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, "POST", "/auth/login", tt.body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			// Both failures look identical to the caller.
			assert.Contains(t, rec.Body.String(), "Invalid credentials")
		})
	}
}

func TestLogin_Validation(t *testing.T) {
	e, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing email", body: `{"password":"password"}`},
		{name: "malformed email", body: `{"email":"not-an-email","password":"password"}`},
		{name: "missing password", body: `{"email":"admin@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, "POST", "/auth/login", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Validation error")
		})
	}
}

func TestRegister_Success(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, "POST", "/auth/register",
		`{"name":"New User","email":"new@example.com","password":"secret1","teamName":"New Team"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string `json:"message"`
		User    struct {
			ID     string `json:"id"`
			Email  string `json:"email"`
			TeamID string `json:"teamId"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotEmpty(t, resp.User.ID)
	assert.NotEmpty(t, resp.User.TeamID)
	assert.NotContains(t, rec.Body.String(), "password")

	// And the new account can log in.
	login := doJSON(e, "POST", "/auth/login", `{"email":"new@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestRegister_WithoutTeam(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, "POST", "/auth/register",
		`{"name":"Solo User","email":"solo@example.com","password":"secret1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		User struct {
			TeamID string `json:"teamId"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.User.TeamID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, "POST", "/auth/register",
		`{"name":"Dup","email":"admin@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already exists")
}

func TestRegister_Validation(t *testing.T) {
	e, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "name too short", body: `{"name":"A","email":"a@example.com","password":"secret1"}`},
		{name: "password too short", body: `{"name":"Valid Name","email":"a@example.com","password":"short"}`},
		{name: "bad email", body: `{"name":"Valid Name","email":"bad","password":"secret1"}`},
		{name: "team name too short", body: `{"name":"Valid Name","email":"a@example.com","password":"secret1","teamName":"X"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, "POST", "/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUsers(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, "GET", "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = doJSON(e, "GET", "/api/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")

	rec = doJSON(e, "GET", "/api/users/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestTeams(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, "GET", "/api/teams/team1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Name    string `json:"name"`
		Members []struct {
			Email string `json:"email"`
		} `json:"members"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Development Team", resp.Name)
	assert.Len(t, resp.Members, 2)

	rec = doJSON(e, "POST", "/api/teams", `{"name":"Platform"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, "POST", "/api/teams", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, "GET", "/api/teams/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
