package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskhub/internal/userapi/domain"
	"taskhub/internal/userapi/store"
)

// TeamHandler serves the protected team routes.
type TeamHandler struct {
	store *store.Store
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(s *store.Store) *TeamHandler {
	return &TeamHandler{store: s}
}

// List returns all teams.
func (h *TeamHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.ListTeams())
}

type createTeamRequest struct {
	Name string `json:"name"`
}

// Create creates a new team.
func (h *TeamHandler) Create(c echo.Context) error {
	var req createTeamRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Team name is required"})
	}

	team := domain.Team{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	h.store.AddTeam(team)
	return c.JSON(http.StatusCreated, team)
}

// teamWithMembers is the detail shape including the member list.
type teamWithMembers struct {
	domain.Team
	Members []domain.PublicUser `json:"members"`
}

// Get returns a team with its members.
func (h *TeamHandler) Get(c echo.Context) error {
	team, err := h.store.TeamByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Team not found"})
		}
		return err
	}

	users := h.store.UsersByTeam(team.ID)
	members := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		members = append(members, u.Public())
	}

	return c.JSON(http.StatusOK, teamWithMembers{Team: team, Members: members})
}
