package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskhub/internal/userapi/domain"
	"taskhub/internal/userapi/store"
)

// UserHandler serves the protected user routes. The gateway has already
// verified the caller; identity arrives via the trusted headers.
type UserHandler struct {
	store *store.Store
}

// NewUserHandler creates a new user handler.
func NewUserHandler(s *store.Store) *UserHandler {
	return &UserHandler{store: s}
}

// List returns all users, passwords omitted.
func (h *UserHandler) List(c echo.Context) error {
	users := h.store.ListUsers()
	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single user by ID.
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.store.UserByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, user.Public())
}
