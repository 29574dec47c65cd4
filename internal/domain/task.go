package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the progress state of an infrastructure task.
// Tasks move freely between statuses; none of them is terminal.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Priority ranks how urgently a task should be picked up.
type Priority string

// Possible priority values
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Environment is the target environment of a task or a deployment.
type Environment string

// Possible environment values
const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentStaging     Environment = "staging"
	EnvironmentProduction  Environment = "production"
)

// Task-specific validation errors
var (
	ErrEmptyTaskID    = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTaskTitle = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrTaskTimestamps = fmt.Errorf("%w: task updated_at cannot precede created_at", ErrValidation)
)

// Task is a unit of infrastructure work tracked on the dashboard.
type Task struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      TaskStatus  `json:"status"`
	Priority    Priority    `json:"priority"`
	Environment Environment `json:"environment"`
	Assignee    *string     `json:"assignee,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *Priority
	Environment *Environment
	Assignee    *string
}

// NewTask creates a pending Task with a fresh ID. CreatedAt and UpdatedAt are
// the same instant.
func NewTask(
	title, description string,
	priority Priority,
	environment Environment,
	assignee *string,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      TaskStatusPending,
		Priority:    priority,
		Environment: environment,
		Assignee:    assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !t.Environment.IsValid() {
		return ErrInvalidEnvironment
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return ErrTaskTimestamps
	}
	return nil
}

// IsValid reports whether s is a known task status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// IsValid reports whether e is a known environment.
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentDevelopment, EnvironmentStaging, EnvironmentProduction:
		return true
	default:
		return false
	}
}
