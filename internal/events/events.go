package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
)

// Event types
const (
	TypeDeploymentCreated      = "deployment.created"
	TypeDeploymentTransitioned = "deployment.transitioned"
)

// Reasons attached to transition events.
const (
	ReasonLifecycle        = "lifecycle"
	ReasonCancelled        = "cancelled"
	ReasonPersistenceError = "persistence_error"
	ReasonOrphaned         = "orphaned"
)

// DeploymentEvent records a deployment entering a status.
type DeploymentEvent struct {
	// ID is a unique identifier for this event
	ID   uuid.UUID `json:"id"`
	Type string    `json:"type"`

	// From is empty for creation events.
	From   domain.DeploymentStatus `json:"from,omitempty"`
	To     domain.DeploymentStatus `json:"to"`
	Reason string                  `json:"reason,omitempty"`

	// Deployment is the record as persisted after the change.
	Deployment *domain.Deployment `json:"deployment"`

	OccurredAt time.Time `json:"occurred_at"`
}

// NewDeploymentCreatedEvent builds the event for a freshly persisted deployment.
func NewDeploymentCreatedEvent(d *domain.Deployment) *DeploymentEvent {
	return &DeploymentEvent{
		ID:         uuid.New(),
		Type:       TypeDeploymentCreated,
		To:         d.Status,
		Deployment: d,
		OccurredAt: time.Now().UTC(),
	}
}

// NewDeploymentTransitionedEvent builds the event for a persisted status change.
func NewDeploymentTransitionedEvent(
	from domain.DeploymentStatus,
	d *domain.Deployment,
	reason string,
) *DeploymentEvent {
	return &DeploymentEvent{
		ID:         uuid.New(),
		Type:       TypeDeploymentTransitioned,
		From:       from,
		To:         d.Status,
		Reason:     reason,
		Deployment: d,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *DeploymentEvent) error
}

// EventHandlerFunc adapts a plain function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *DeploymentEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *DeploymentEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the engine and services to publish events without direct
// knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *DeploymentEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *DeploymentEvent) error { return nil }
