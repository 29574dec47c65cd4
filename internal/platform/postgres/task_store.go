package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/store"
)

const taskColumns = `id, title, description, status, priority, environment, assignee, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, wrapDBError("task", "list", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close task rows", slog.String("error", cerr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, wrapDBError("task", "list", err)
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, wrapDBError("task", "get", err)
	}

	return task, nil
}

// Create implements store.TaskStore.Create
// It validates the task before writing it.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Environment,
		nullString(task.Assignee),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return wrapDBError("task", "create", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("priority", string(task.Priority)),
		slog.String("environment", string(task.Environment)))
	return nil
}

// Update implements store.TaskStore.Update
// Fields left nil in upd keep their stored value. updated_at always advances.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	upd domain.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    status      = COALESCE($4, status),
		    priority    = COALESCE($5, priority),
		    environment = COALESCE($6, environment),
		    assignee    = COALESCE($7, assignee),
		    updated_at  = GREATEST($8, created_at)
		WHERE id = $1
		RETURNING ` + taskColumns

	var status, priority, environment sql.NullString
	if upd.Status != nil {
		status = sql.NullString{String: string(*upd.Status), Valid: true}
	}
	if upd.Priority != nil {
		priority = sql.NullString{String: string(*upd.Priority), Valid: true}
	}
	if upd.Environment != nil {
		environment = sql.NullString{String: string(*upd.Environment), Valid: true}
	}

	task, err := scanTask(s.db.QueryRowContext(
		ctx,
		query,
		id,
		nullString(upd.Title),
		nullString(upd.Description),
		status,
		priority,
		environment,
		nullString(upd.Assignee),
		time.Now().UTC(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, wrapDBError("task", "update", err)
	}

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.String("status", string(task.Status)))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return wrapDBError("task", "delete", err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return err
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task                          domain.Task
		status, priority, environment string
		assignee                      sql.NullString
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&environment,
		&assignee,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.Priority(priority)
	task.Environment = domain.Environment(environment)
	if assignee.Valid {
		task.Assignee = &assignee.String
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
