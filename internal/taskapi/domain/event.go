package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType represents the kind of task mutation that produced an event.
// The set is closed: every mutation maps to exactly one of these variants.
type EventType string

// Event types for task mutations.
const (
	// EventTypeTaskCreated is emitted when a task is created.
	EventTypeTaskCreated EventType = "TaskCreated"
	// EventTypeTaskStatusChanged is emitted when a task's status changes.
	EventTypeTaskStatusChanged EventType = "TaskStatusChanged"
	// EventTypeTaskReassigned is emitted when a task's assignee changes.
	EventTypeTaskReassigned EventType = "TaskReassigned"
)

// Topic is a subscription channel on the event bus.
type Topic string

// Topics. All mutation kinds funnel into these two so a single filtering and
// delivery mechanism serves them all.
const (
	TopicTaskCreated Topic = "taskCreated"
	TopicTaskUpdated Topic = "taskUpdated"
)

// Topic maps an event variant onto its delivery topic.
func (t EventType) Topic() Topic {
	if t == EventTypeTaskCreated {
		return TopicTaskCreated
	}
	return TopicTaskUpdated
}

// IsValid returns true if the event type is a known variant.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeTaskCreated, EventTypeTaskStatusChanged, EventTypeTaskReassigned:
		return true
	}
	return false
}

// Envelope is a published task event. TeamID comes from the authoritative
// server-side record, which is what makes tenant filtering trustworthy.
type Envelope struct {
	EventID   string
	Type      EventType
	TeamID    string
	Task      Task
	CreatedAt time.Time
}

// NewEnvelope creates an envelope for a task mutation.
func NewEnvelope(t EventType, task Task) (*Envelope, error) {
	if !t.IsValid() {
		return nil, errors.New("unknown event type")
	}
	if task.TeamID == "" {
		return nil, errors.New("event task has no team")
	}
	return &Envelope{
		EventID:   uuid.New().String(),
		Type:      t,
		TeamID:    task.TeamID,
		Task:      task,
		CreatedAt: time.Now(),
	}, nil
}
