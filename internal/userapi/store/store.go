// Package store provides the in-memory user and team collections.
package store

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskhub/internal/userapi/domain"
)

// Store holds users and teams in memory. Mutations are coarse whole-record
// operations serialized by a single mutex; insertion order is preserved.
type Store struct {
	mu    sync.RWMutex
	users []*domain.User
	teams []*domain.Team
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Seeded creates a store with the default development accounts: two users in
// team1, both with password "password".
func Seeded() (*Store, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), 10)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := New()
	s.teams = []*domain.Team{
		{ID: "team1", Name: "Development Team", CreatedAt: now},
	}
	s.users = []*domain.User{
		{ID: "1", Name: "Admin User", Email: "admin@example.com", PasswordHash: string(hash), TeamID: "team1", CreatedAt: now},
		{ID: "2", Name: "Basic User", Email: "user@example.com", PasswordHash: string(hash), TeamID: "team1", CreatedAt: now},
	}
	return s, nil
}

// UserByEmail finds a user by email.
func (s *Store) UserByEmail(email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

// UserByID finds a user by ID.
func (s *Store) UserByID(id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return *u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

// AddUser inserts a new user. Fails when the email is already registered.
func (s *Store) AddUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	s.users = append(s.users, &u)
	return nil
}

// ListUsers returns all users in insertion order.
func (s *Store) ListUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

// UsersByTeam returns the members of a team.
func (s *Store) UsersByTeam(teamID string) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.User
	for _, u := range s.users {
		if u.TeamID == teamID {
			out = append(out, *u)
		}
	}
	return out
}

// TeamByID finds a team by ID.
func (s *Store) TeamByID(id string) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.teams {
		if t.ID == id {
			return *t, nil
		}
	}
	return domain.Team{}, domain.ErrTeamNotFound
}

// AddTeam inserts a new team.
func (s *Store) AddTeam(t domain.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = append(s.teams, &t)
}

// ListTeams returns all teams in insertion order.
func (s *Store) ListTeams() []domain.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, *t)
	}
	return out
}
