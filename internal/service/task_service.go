package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/store"
)

// CreateTaskParams carries the validated fields of a new task.
type CreateTaskParams struct {
	Title       string
	Description string
	Priority    domain.Priority
	Environment domain.Environment
	Assignee    *string
}

// TaskService provides task-related operations.
type TaskService interface {
	// ListTasks returns every task, newest first.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// GetTask retrieves a task by ID. Returns ErrTaskNotFound when absent.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// CreateTask creates a pending task.
	CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error)

	// UpdateTask applies a partial update. Returns ErrTaskNotFound when absent.
	UpdateTask(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) (*domain.Task, error)

	// DeleteTask removes a task. Returns ErrTaskNotFound when absent.
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the store is nil.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Err: errNilDependency("tasks")}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, wrapError("task", "list", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, wrapError("task", "get", err)
	}
	return task, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(params.Title, params.Description, params.Priority, params.Environment, params.Assignee)
	if err != nil {
		log.Warn("rejected task", slog.String("error", err.Error()))
		return nil, wrapError("task", "create", err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, wrapError("task", "create", err)
	}
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	upd domain.TaskUpdate,
) (*domain.Task, error) {
	task, err := s.tasks.Update(ctx, id, upd)
	if err != nil {
		return nil, wrapError("task", "update", err)
	}
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return wrapError("task", "delete", s.tasks.Delete(ctx, id))
}
