package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	assignee := "ops-oncall"
	task, err := NewTask("Rotate TLS certs", "", PriorityCritical, EnvironmentProduction, &assignee)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if task.Status != TaskStatusPending {
		t.Errorf("Expected status %s, got %s", TaskStatusPending, task.Status)
	}
	if !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Errorf("Expected created_at == updated_at, got %v and %v", task.CreatedAt, task.UpdatedAt)
	}

	if _, err := NewTask("", "", PriorityLow, EnvironmentStaging, nil); err != ErrEmptyTaskTitle {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskTitle, err)
	}
	if _, err := NewTask("x", "", Priority("urgent"), EnvironmentStaging, nil); err != ErrInvalidPriority {
		t.Errorf("Expected error %v, got %v", ErrInvalidPriority, err)
	}
	if _, err := NewTask("x", "", PriorityLow, Environment("qa"), nil); err != ErrInvalidEnvironment {
		t.Errorf("Expected error %v, got %v", ErrInvalidEnvironment, err)
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	valid := Task{
		ID:          uuid.New(),
		Title:       "Patch kernel",
		Status:      TaskStatusInProgress,
		Priority:    PriorityHigh,
		Environment: EnvironmentStaging,
		CreatedAt:   now,
		UpdatedAt:   now.Add(time.Minute),
	}

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr error
	}{
		{"valid", func(*Task) {}, nil},
		{"nil id", func(t *Task) { t.ID = uuid.Nil }, ErrEmptyTaskID},
		{"bad status", func(t *Task) { t.Status = "done" }, ErrInvalidTaskStatus},
		{"updated before created", func(t *Task) { t.UpdatedAt = t.CreatedAt.Add(-time.Second) }, ErrTaskTimestamps},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := valid
			tc.mutate(&task)
			if err := task.Validate(); err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}
