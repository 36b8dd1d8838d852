// Package handler provides the HTTP handlers for the user service.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"taskhub/internal/userapi/domain"
	"taskhub/internal/userapi/store"
	"taskhub/internal/userapi/token"
)

const bcryptCost = 10

// AuthHandler serves the public authentication routes.
type AuthHandler struct {
	store  *store.Store
	issuer *token.Issuer
	pubPEM string
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(s *store.Store, issuer *token.Issuer, publicPEM string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{store: s, issuer: issuer, pubPEM: publicPEM, logger: logger}
}

// PublicKey serves the verification key to the gateway. Unauthenticated and
// idempotent; only the public half ever leaves this service.
func (h *AuthHandler) PublicKey(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"publicKey": h.pubPEM})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

// loginUser is the claim-shaped payload the frontend caches.
type loginUser struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	TeamID string `json:"teamId,omitempty"`
}

// Login validates credentials and issues a signed identity token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return validationError(c, "invalid request body")
	}
	if msg, ok := validateLogin(req); !ok {
		return validationError(c, msg)
	}

	user, err := h.store.UserByEmail(req.Email)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	}
	if err != nil {
		// Same response for unknown email and wrong password.
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	signed, err := h.issuer.Issue(&user)
	if err != nil {
		h.logger.Error("failed to issue token", "user_id", user.ID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to issue token"})
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   signed,
		User: loginUser{
			ID:     user.ID,
			Email:  user.Email,
			Name:   user.Name,
			TeamID: user.TeamID,
		},
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	TeamName string `json:"teamName"`
}

// Register creates a new account, optionally creating a team alongside it.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return validationError(c, "invalid request body")
	}
	if msg, ok := validateRegistration(req); !ok {
		return validationError(c, msg)
	}

	if _, err := h.store.UserByEmail(req.Email); err == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Email already exists"})
	}

	teamID := ""
	if req.TeamName != "" {
		team := domain.Team{
			ID:        uuid.New().String(),
			Name:      req.TeamName,
			CreatedAt: time.Now(),
		}
		h.store.AddTeam(team)
		teamID = team.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Registration failed"})
	}

	user := domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		TeamID:       teamID,
		CreatedAt:    time.Now(),
	}
	if err := h.store.AddUser(user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Registration failed"})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user.Public(),
	})
}

func validationError(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{
		"error":   "Validation error",
		"message": msg,
	})
}

func validateLogin(req loginRequest) (string, bool) {
	if !validEmail(req.Email) {
		return "a valid email is required", false
	}
	if req.Password == "" {
		return "password is required", false
	}
	return "", true
}

func validateRegistration(req registerRequest) (string, bool) {
	if n := len(req.Name); n < 2 || n > 50 {
		return "name must be between 2 and 50 characters", false
	}
	if !validEmail(req.Email) {
		return "a valid email is required", false
	}
	if len(req.Password) < 6 {
		return "password must be at least 6 characters", false
	}
	if req.TeamName != "" {
		if n := len(req.TeamName); n < 2 || n > 50 {
			return "team name must be between 2 and 50 characters", false
		}
	}
	return "", true
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
