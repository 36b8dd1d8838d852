// Package store provides the in-memory task and member collections.
package store

import (
	"sync"
	"time"

	"taskhub/internal/taskapi/domain"
)

// Store holds tasks and team members in memory. Task mutations are coarse
// whole-record replacements serialized by the mutex; every mutation checks
// the caller's tenant before touching the record.
type Store struct {
	mu      sync.RWMutex
	tasks   []*domain.Task
	members []*domain.TeamMember
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Seeded creates a store with the default development tasks and members.
func Seeded() *Store {
	now := time.Now()
	s := New()
	s.members = []*domain.TeamMember{
		{ID: "1", Name: "Admin User", TeamID: "team1"},
		{ID: "2", Name: "Basic User", TeamID: "team1"},
	}
	s.tasks = []*domain.Task{
		{
			ID:          "t1",
			Title:       "Implement Authentication (REST)",
			Description: "Use JWT with RS256 in the user service.",
			Status:      domain.StatusInProgress,
			AssigneeID:  "1",
			TeamID:      "team1",
			CreatedAt:   now,
		},
		{
			ID:          "t2",
			Title:       "Refactor Frontend UI",
			Description: "Switch to task-based UI and add login.",
			Status:      domain.StatusTodo,
			AssigneeID:  "2",
			TeamID:      "team1",
			CreatedAt:   now,
		},
	}
	return s
}

// ListByTeam returns all tasks belonging to the team, in insertion order.
func (s *Store) ListByTeam(teamID string) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Task
	for _, t := range s.tasks {
		if t.TeamID == teamID {
			out = append(out, *t)
		}
	}
	return out
}

// Get returns a task by ID regardless of tenant. Callers enforce tenant
// visibility.
func (s *Store) Get(id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tasks {
		if t.ID == id {
			return *t, nil
		}
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

// Create inserts a new task.
func (s *Store) Create(task domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, &task)
}

// UpdateStatus replaces the task's status. Fails with ErrTenantMismatch when
// the task belongs to a different team than the caller.
func (s *Store) UpdateStatus(id, teamID string, status domain.TaskStatus) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == id {
			if t.TeamID != teamID {
				return domain.Task{}, domain.ErrTenantMismatch
			}
			t.Status = status
			return *t, nil
		}
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

// Reassign replaces the task's assignee. Fails with ErrTenantMismatch when
// the task belongs to a different team than the caller.
func (s *Store) Reassign(id, teamID, assigneeID string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == id {
			if t.TeamID != teamID {
				return domain.Task{}, domain.ErrTenantMismatch
			}
			t.AssigneeID = assigneeID
			return *t, nil
		}
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

// MemberByID returns a team member by ID.
func (s *Store) MemberByID(id string) (domain.TeamMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members {
		if m.ID == id {
			return *m, true
		}
	}
	return domain.TeamMember{}, false
}

// UpsertMember records a user seen in the trusted identity headers so the
// assignee relation can resolve locally.
func (s *Store) UpsertMember(id, name, teamID string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.ID == id {
			m.Name = name
			m.TeamID = teamID
			return
		}
	}
	s.members = append(s.members, &domain.TeamMember{ID: id, Name: name, TeamID: teamID})
}
