package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
)

// DeploymentStore defines the interface for deployment data persistence.
type DeploymentStore interface {
	// List returns at most limit deployments, most recently started first.
	List(ctx context.Context, limit int) ([]*domain.Deployment, error)

	// GetByID retrieves a deployment by its unique ID.
	// Returns ErrDeploymentNotFound if the deployment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deployment, error)

	// Create saves a new deployment. The deployment is validated before it is written.
	Create(ctx context.Context, deployment *domain.Deployment) error

	// Transition atomically moves a deployment to status to, provided its
	// current status is a legal source for to. Terminal statuses stamp
	// completed_at with at and compute duration_seconds from started_at.
	//
	// Returns ErrDeploymentNotFound if the deployment does not exist, and an
	// error wrapping domain.ErrIllegalTransition if its current status does
	// not allow the transition. Nothing is written in either case.
	Transition(ctx context.Context, id uuid.UUID, to domain.DeploymentStatus, at time.Time) (*domain.Deployment, error)

	// ListActive returns every deployment in a non-terminal status.
	ListActive(ctx context.Context) ([]*domain.Deployment, error)
}
