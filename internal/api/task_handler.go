package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/opsboard/internal/api/shared"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks requests
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	shared.RespondWithData(w, r, http.StatusOK, tasks)
}

// GetTask handles GET /api/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathUUID(w, r, log, "Invalid task ID")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, task)
}

// CreateTask handles POST /api/tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), req.params())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Info("task created", slog.String("task_id", task.ID.String()))
	shared.RespondWithData(w, r, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/{id} requests. Only the fields present
// in the body are changed.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathUUID(w, r, log, "Invalid task ID")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, req.update())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathUUID(w, r, log, "Invalid task ID")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	shared.RespondWithMessage(w, r, http.StatusOK, "Task deleted")
}
