package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// List returns every task, newest first.
	List(ctx context.Context) ([]*domain.Task, error)

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Create saves a new task. The task is validated before it is written.
	Create(ctx context.Context, task *domain.Task) error

	// Update applies the non-nil fields of upd and refreshes updated_at.
	// Returns the stored task after the update, or ErrTaskNotFound.
	Update(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) (*domain.Task, error)

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
