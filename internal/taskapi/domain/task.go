// Package domain contains core domain types for the task service.
package domain

import (
	"errors"
	"time"
)

// Domain errors surfaced by the store and mapped at the resolver boundary.
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTenantMismatch = errors.New("task belongs to another team")
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

// Task statuses.
const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inprogress"
	StatusDone       TaskStatus = "done"
	StatusArchived   TaskStatus = "archived"
)

// IsValid returns true if the status is a known value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

// Task is a unit of work owned by a team. TeamID is always taken from the
// authenticated mutation that created the task, never from client input.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	TeamID      string     `json:"teamId"`
	AssigneeID  string     `json:"assigneeId"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TeamMember is the task service's local view of a user, synced from the
// identity headers forwarded by the gateway.
type TeamMember struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TeamID string `json:"teamId"`
}
