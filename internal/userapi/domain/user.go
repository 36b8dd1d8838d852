// Package domain contains core domain types for the user service.
package domain

import (
	"errors"
	"time"
)

// Domain errors surfaced by the store and mapped at the handler boundary.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is an account holder. PasswordHash is a bcrypt hash and must never be
// serialized; handlers expose Public() instead.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	TeamID       string
	CreatedAt    time.Time
}

// PublicUser is the externally visible shape of a user.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TeamID    string    `json:"teamId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the user without credential material.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		TeamID:    u.TeamID,
		CreatedAt: u.CreatedAt,
	}
}

// Team is a tenant scope. All data and events are partitioned by team ID.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
