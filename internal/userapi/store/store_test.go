package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskhub/internal/userapi/domain"
)

func TestSeeded(t *testing.T) {
	s, err := Seeded()
	require.NoError(t, err)

	users := s.ListUsers()
	require.Len(t, users, 2)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.Equal(t, "user@example.com", users[1].Email)

	for _, u := range users {
		assert.Equal(t, "team1", u.TeamID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password")))
	}

	team, err := s.TeamByID("team1")
	require.NoError(t, err)
	assert.Equal(t, "Development Team", team.Name)
}

func TestUserLookups(t *testing.T) {
	s, err := Seeded()
	require.NoError(t, err)

	u, err := s.UserByEmail("admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)

	u, err = s.UserByID("2")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", u.Email)

	_, err = s.UserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = s.UserByID("999")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAddUser_RejectsDuplicateEmail(t *testing.T) {
	s, err := Seeded()
	require.NoError(t, err)

	err = s.AddUser(domain.User{ID: "3", Email: "admin@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	require.NoError(t, s.AddUser(domain.User{ID: "3", Email: "new@example.com", TeamID: "team1"}))
	assert.Len(t, s.ListUsers(), 3)
}

func TestUsersByTeam(t *testing.T) {
	s, err := Seeded()
	require.NoError(t, err)
	require.NoError(t, s.AddUser(domain.User{ID: "3", Email: "other@example.com", TeamID: "team2"}))

	assert.Len(t, s.UsersByTeam("team1"), 2)
	assert.Len(t, s.UsersByTeam("team2"), 1)
	assert.Empty(t, s.UsersByTeam("team3"))
}

func TestTeams(t *testing.T) {
	s := New()
	assert.Empty(t, s.ListTeams())

	s.AddTeam(domain.Team{ID: "t-1", Name: "Platform", CreatedAt: time.Now()})
	teams := s.ListTeams()
	require.Len(t, teams, 1)
	assert.Equal(t, "Platform", teams[0].Name)

	_, err := s.TeamByID("missing")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}
