package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/store"
)

const deploymentColumns = `id, name, environment, status, version, commit_sha, branch, started_at, completed_at, duration_seconds`

// PostgresDeploymentStore implements the store.DeploymentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeploymentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeploymentStore creates a new PostgreSQL implementation of the DeploymentStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDeploymentStore(db store.DBTX, logger *slog.Logger) *PostgresDeploymentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeploymentStore{
		db:     db,
		logger: logger.With(slog.String("component", "deployment_store")),
	}
}

// Ensure PostgresDeploymentStore implements store.DeploymentStore interface
var _ store.DeploymentStore = (*PostgresDeploymentStore)(nil)

// List implements store.DeploymentStore.List
func (s *PostgresDeploymentStore) List(ctx context.Context, limit int) ([]*domain.Deployment, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployments ORDER BY started_at DESC LIMIT $1`
	return s.query(ctx, "list", query, limit)
}

// ListActive implements store.DeploymentStore.ListActive
func (s *PostgresDeploymentStore) ListActive(ctx context.Context) ([]*domain.Deployment, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployments WHERE status = ANY($1::text[]) ORDER BY started_at`
	return s.query(ctx, "list_active", query, statusStrings(domain.ActiveDeploymentStatuses()))
}

// GetByID implements store.DeploymentStore.GetByID
// Returns store.ErrDeploymentNotFound if the deployment does not exist.
func (s *PostgresDeploymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deployment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + deploymentColumns + ` FROM deployments WHERE id = $1`
	d, err := scanDeployment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deployment not found", slog.String("deployment_id", id.String()))
			return nil, store.ErrDeploymentNotFound
		}
		log.Error("failed to get deployment by ID",
			slog.String("error", err.Error()),
			slog.String("deployment_id", id.String()))
		return nil, wrapDBError("deployment", "get", err)
	}

	return d, nil
}

// Create implements store.DeploymentStore.Create
func (s *PostgresDeploymentStore) Create(ctx context.Context, d *domain.Deployment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := d.Validate(); err != nil {
		log.Warn("deployment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deployment_id", d.ID.String()))
		return err
	}

	var duration sql.NullInt32
	if d.DurationSeconds != nil {
		duration = sql.NullInt32{Int32: int32(*d.DurationSeconds), Valid: true}
	}

	query := `
		INSERT INTO deployments (` + deploymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		d.ID,
		d.Name,
		d.Environment,
		d.Status,
		d.Version,
		d.CommitSHA,
		d.Branch,
		d.StartedAt,
		nullTime(d.CompletedAt),
		duration,
	)
	if err != nil {
		log.Error("failed to create deployment",
			slog.String("error", err.Error()),
			slog.String("deployment_id", d.ID.String()))
		return wrapDBError("deployment", "create", err)
	}

	log.Info("deployment created",
		slog.String("deployment_id", d.ID.String()),
		slog.String("environment", string(d.Environment)),
		slog.String("status", string(d.Status)))
	return nil
}

// Transition implements store.DeploymentStore.Transition
//
// The status guard lives in the WHERE clause, so a concurrent writer that
// already moved the deployment makes this update match zero rows.
func (s *PostgresDeploymentStore) Transition(
	ctx context.Context,
	id uuid.UUID,
	to domain.DeploymentStatus,
	at time.Time,
) (*domain.Deployment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("deployment_id", id.String()),
		slog.String("to", string(to)),
	)

	sources := domain.SourcesFor(to)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no transition leads to %s", domain.ErrIllegalTransition, to)
	}

	query := `
		UPDATE deployments
		SET status = $2,
		    completed_at = CASE WHEN $3::boolean THEN $4::timestamptz ELSE NULL END,
		    duration_seconds = CASE WHEN $3::boolean
		        THEN GREATEST(0, FLOOR(EXTRACT(EPOCH FROM ($4::timestamptz - started_at))))::integer
		        ELSE NULL END
		WHERE id = $1 AND status = ANY($5::text[])
		RETURNING ` + deploymentColumns

	d, err := scanDeployment(s.db.QueryRowContext(
		ctx,
		query,
		id,
		string(to),
		to.IsTerminal(),
		at.UTC(),
		statusStrings(sources),
	))
	if err == nil {
		log.Info("deployment transitioned")
		return d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to transition deployment", slog.String("error", err.Error()))
		return nil, wrapDBError("deployment", "transition", err)
	}

	// Nothing matched: either the row is gone or its status forbids the move.
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Debug("transition rejected", slog.String("from", string(current.Status)))
	return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, current.Status, to)
}

func (s *PostgresDeploymentStore) query(
	ctx context.Context,
	op, query string,
	args ...any,
) ([]*domain.Deployment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query deployments",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, wrapDBError("deployment", op, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close deployment rows", slog.String("error", cerr.Error()))
		}
	}()

	deployments := make([]*domain.Deployment, 0)
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			log.Error("failed to scan deployment row", slog.String("error", err.Error()))
			return nil, err
		}
		deployments = append(deployments, d)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating deployment rows", slog.String("error", err.Error()))
		return nil, wrapDBError("deployment", op, err)
	}

	log.Debug("deployments queried",
		slog.String("operation", op),
		slog.Int("count", len(deployments)))
	return deployments, nil
}

func scanDeployment(row rowScanner) (*domain.Deployment, error) {
	var (
		d                   domain.Deployment
		environment, status string
		completedAt         sql.NullTime
		duration            sql.NullInt32
	)

	err := row.Scan(
		&d.ID,
		&d.Name,
		&environment,
		&status,
		&d.Version,
		&d.CommitSHA,
		&d.Branch,
		&d.StartedAt,
		&completedAt,
		&duration,
	)
	if err != nil {
		return nil, err
	}

	d.Environment = domain.Environment(environment)
	d.Status = domain.DeploymentStatus(status)
	d.StartedAt = d.StartedAt.UTC()
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		d.CompletedAt = &t
	}
	if duration.Valid {
		secs := int(duration.Int32)
		d.DurationSeconds = &secs
	}
	return &d, nil
}

func statusStrings(statuses []domain.DeploymentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
