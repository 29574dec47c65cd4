package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/events"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/store"
)

// DeploymentListLimit caps the number of deployments returned by a list.
const DeploymentListLimit = 50

// CreateDeploymentParams carries the validated fields of a new deployment.
type CreateDeploymentParams struct {
	Name        string
	Environment domain.Environment
	Version     string
	CommitSHA   string
	Branch      string
}

// Lifecycle is the part of the lifecycle engine the service drives.
type Lifecycle interface {
	// Start launches the simulated pipeline of a persisted deployment.
	Start(d *domain.Deployment) error

	// Cancel stops a running pipeline and reports whether one was running.
	Cancel(id uuid.UUID) bool
}

// DeploymentService provides deployment-related operations.
type DeploymentService interface {
	// ListDeployments returns the most recently started deployments.
	ListDeployments(ctx context.Context) ([]*domain.Deployment, error)

	// GetDeployment retrieves a deployment by ID.
	GetDeployment(ctx context.Context, id uuid.UUID) (*domain.Deployment, error)

	// CreateDeployment persists a deployment in building and starts its pipeline.
	CreateDeployment(ctx context.Context, params CreateDeploymentParams) (*domain.Deployment, error)

	// CancelDeployment fails an active deployment. Returns ErrDeploymentNotFound
	// or ErrDeploymentNotCancellable when nothing was changed.
	CancelDeployment(ctx context.Context, id uuid.UUID) (*domain.Deployment, error)
}

type deploymentServiceImpl struct {
	deployments store.DeploymentStore
	engine      Lifecycle
	emitter     events.EventEmitter
	logger      *slog.Logger
	now         func() time.Time
}

// NewDeploymentService creates a new DeploymentService.
// It returns an error if any of the required dependencies are nil.
func NewDeploymentService(
	deployments store.DeploymentStore,
	engine Lifecycle,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (DeploymentService, error) {
	if deployments == nil {
		return nil, &ServiceError{Service: "deployment", Operation: "create_service", Err: errNilDependency("deployments")}
	}
	if engine == nil {
		return nil, &ServiceError{Service: "deployment", Operation: "create_service", Err: errNilDependency("engine")}
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deploymentServiceImpl{
		deployments: deployments,
		engine:      engine,
		emitter:     emitter,
		logger:      logger.With(slog.String("component", "deployment_service")),
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *deploymentServiceImpl) ListDeployments(ctx context.Context) ([]*domain.Deployment, error) {
	deployments, err := s.deployments.List(ctx, DeploymentListLimit)
	if err != nil {
		return nil, wrapError("deployment", "list", err)
	}
	return deployments, nil
}

func (s *deploymentServiceImpl) GetDeployment(ctx context.Context, id uuid.UUID) (*domain.Deployment, error) {
	d, err := s.deployments.GetByID(ctx, id)
	if err != nil {
		return nil, wrapError("deployment", "get", err)
	}
	return d, nil
}

func (s *deploymentServiceImpl) CreateDeployment(
	ctx context.Context,
	params CreateDeploymentParams,
) (*domain.Deployment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	d, err := domain.NewDeployment(params.Name, params.Environment, params.Version, params.CommitSHA, params.Branch)
	if err != nil {
		log.Warn("rejected deployment", slog.String("error", err.Error()))
		return nil, wrapError("deployment", "create", err)
	}

	if err := s.deployments.Create(ctx, d); err != nil {
		return nil, wrapError("deployment", "create", err)
	}
	s.emit(ctx, events.NewDeploymentCreatedEvent(d))

	// The record is durable; a pipeline that cannot start is failed by
	// Recover on the next boot.
	if err := s.engine.Start(d); err != nil {
		log.Error("failed to start deployment pipeline",
			slog.String("deployment_id", d.ID.String()),
			slog.String("error", err.Error()))
	}

	return d, nil
}

func (s *deploymentServiceImpl) CancelDeployment(ctx context.Context, id uuid.UUID) (*domain.Deployment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("deployment_id", id.String()))

	current, err := s.deployments.GetByID(ctx, id)
	if err != nil {
		return nil, wrapError("deployment", "cancel", err)
	}
	if !current.Status.IsActive() {
		log.Debug("cancel rejected", slog.String("status", string(current.Status)))
		return nil, ErrDeploymentNotCancellable
	}

	// The sequence keeps running until the status is durably failed; its
	// next guarded write is then a no-op.
	updated, err := s.deployments.Transition(ctx, id, domain.DeploymentStatusFailed, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrIllegalTransition) {
			// finished between the read and the write
			return nil, ErrDeploymentNotCancellable
		}
		return nil, wrapError("deployment", "cancel", fmt.Errorf("transition to failed: %w", err))
	}
	s.engine.Cancel(id)

	log.Info("deployment cancelled", slog.String("from", string(current.Status)))
	s.emit(ctx, events.NewDeploymentTransitionedEvent(current.Status, updated, events.ReasonCancelled))
	return updated, nil
}

func (s *deploymentServiceImpl) emit(ctx context.Context, event *events.DeploymentEvent) {
	// handler errors are logged by the emitter and never fail the request
	_ = s.emitter.EmitEvent(context.WithoutCancel(ctx), event)
}
