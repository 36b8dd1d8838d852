package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/taskapi/domain"
)

func TestSeeded(t *testing.T) {
	s := Seeded()

	tasks := s.ListByTeam("team1")
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, domain.StatusInProgress, tasks[0].Status)
	assert.Equal(t, "t2", tasks[1].ID)
	assert.Equal(t, domain.StatusTodo, tasks[1].Status)

	member, ok := s.MemberByID("1")
	require.True(t, ok)
	assert.Equal(t, "Admin User", member.Name)
}

func TestListByTeam_FiltersTenant(t *testing.T) {
	s := Seeded()
	s.Create(domain.Task{ID: "x1", Title: "Other team task", TeamID: "team2", CreatedAt: time.Now()})

	assert.Len(t, s.ListByTeam("team1"), 2)
	require.Len(t, s.ListByTeam("team2"), 1)
	assert.Empty(t, s.ListByTeam("team3"))
}

func TestGet(t *testing.T) {
	s := Seeded()

	task, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "Implement Authentication (REST)", task.Title)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpdateStatus(t *testing.T) {
	s := Seeded()

	task, err := s.UpdateStatus("t2", "team1", domain.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, task.Status)

	got, err := s.Get("t2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
}

func TestUpdateStatus_TenantMismatch(t *testing.T) {
	s := Seeded()

	_, err := s.UpdateStatus("t1", "team2", domain.StatusDone)
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)

	// The record is untouched.
	got, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
}

func TestReassign(t *testing.T) {
	s := Seeded()

	task, err := s.Reassign("t1", "team1", "2")
	require.NoError(t, err)
	assert.Equal(t, "2", task.AssigneeID)

	_, err = s.Reassign("t1", "team2", "2")
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)

	_, err = s.Reassign("missing", "team1", "2")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpsertMember(t *testing.T) {
	s := New()

	s.UpsertMember("5", "New Member", "team1")
	m, ok := s.MemberByID("5")
	require.True(t, ok)
	assert.Equal(t, "New Member", m.Name)

	s.UpsertMember("5", "Renamed", "team2")
	m, ok = s.MemberByID("5")
	require.True(t, ok)
	assert.Equal(t, "Renamed", m.Name)
	assert.Equal(t, "team2", m.TeamID)

	// Empty IDs are ignored.
	s.UpsertMember("", "Ghost", "team1")
	_, ok = s.MemberByID("")
	assert.False(t, ok)
}
