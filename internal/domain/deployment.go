package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DeploymentStatus represents a state of the deployment lifecycle.
type DeploymentStatus string

// Possible deployment status values.
//
// Deployments are created directly in building; pending is kept as a legal
// source state for records written by other clients. Rollback is declared
// terminal and is never reached by the lifecycle engine.
const (
	DeploymentStatusPending   DeploymentStatus = "pending"
	DeploymentStatusBuilding  DeploymentStatus = "building"
	DeploymentStatusDeploying DeploymentStatus = "deploying"
	DeploymentStatusSuccess   DeploymentStatus = "success"
	DeploymentStatusFailed    DeploymentStatus = "failed"
	DeploymentStatusRollback  DeploymentStatus = "rollback"
)

// transitions is the allowed-transition table of the deployment state machine.
// Every status write is checked against it.
var transitions = map[DeploymentStatus]map[DeploymentStatus]struct{}{
	DeploymentStatusPending: {
		DeploymentStatusBuilding: {},
		DeploymentStatusFailed:   {},
	},
	DeploymentStatusBuilding: {
		DeploymentStatusDeploying: {},
		DeploymentStatusFailed:    {},
	},
	DeploymentStatusDeploying: {
		DeploymentStatusSuccess: {},
		DeploymentStatusFailed:  {},
	},
	DeploymentStatusSuccess:  {},
	DeploymentStatusFailed:   {},
	DeploymentStatusRollback: {},
}

// statusOrder fixes the iteration order used by SourcesFor.
var statusOrder = []DeploymentStatus{
	DeploymentStatusPending,
	DeploymentStatusBuilding,
	DeploymentStatusDeploying,
	DeploymentStatusSuccess,
	DeploymentStatusFailed,
	DeploymentStatusRollback,
}

// Deployment-specific validation errors
var (
	ErrEmptyDeploymentID     = fmt.Errorf("%w: deployment ID cannot be empty", ErrValidation)
	ErrEmptyDeploymentName   = fmt.Errorf("%w: deployment name cannot be empty", ErrValidation)
	ErrCompletionInvariant   = fmt.Errorf("%w: completed_at and duration_seconds must be set exactly when the status is terminal", ErrValidation)
	ErrNegativeDuration      = fmt.Errorf("%w: deployment duration cannot be negative", ErrValidation)
	ErrDeploymentNotStarted  = fmt.Errorf("%w: deployment started_at cannot be empty", ErrValidation)
	ErrEmptyDeploymentCommit = fmt.Errorf("%w: deployment commit SHA cannot be empty", ErrValidation)
)

// Deployment is a simulated release of a version to an environment.
type Deployment struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Environment     Environment      `json:"environment"`
	Status          DeploymentStatus `json:"status"`
	Version         string           `json:"version"`
	CommitSHA       string           `json:"commit_sha"`
	Branch          string           `json:"branch"`
	StartedAt       time.Time        `json:"started_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	DurationSeconds *int             `json:"duration_seconds,omitempty"`
}

// NewDeployment creates a Deployment in the building state, started now.
func NewDeployment(name string, environment Environment, version, commitSHA, branch string) (*Deployment, error) {
	d := &Deployment{
		ID:          uuid.New(),
		Name:        name,
		Environment: environment,
		Status:      DeploymentStatusBuilding,
		Version:     version,
		CommitSHA:   commitSHA,
		Branch:      branch,
		StartedAt:   time.Now().UTC(),
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate checks field presence, enum membership and the completion invariant.
func (d *Deployment) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDeploymentID
	}
	if d.Name == "" {
		return ErrEmptyDeploymentName
	}
	if d.CommitSHA == "" {
		return ErrEmptyDeploymentCommit
	}
	if !d.Environment.IsValid() {
		return ErrInvalidEnvironment
	}
	if !d.Status.IsValid() {
		return ErrInvalidDeploymentStatus
	}
	if d.StartedAt.IsZero() {
		return ErrDeploymentNotStarted
	}

	completed := d.CompletedAt != nil && d.DurationSeconds != nil
	switch {
	case d.Status.IsActive() && (d.CompletedAt != nil || d.DurationSeconds != nil):
		return ErrCompletionInvariant
	case d.Status.IsTerminal() && d.Status != DeploymentStatusRollback && !completed:
		return ErrCompletionInvariant
	}
	if d.DurationSeconds != nil && *d.DurationSeconds < 0 {
		return ErrNegativeDuration
	}
	return nil
}

// TransitionTo moves the deployment to status to at the given instant.
// Terminal statuses stamp CompletedAt and DurationSeconds.
func (d *Deployment) TransitionTo(to DeploymentStatus, at time.Time) error {
	if !CanTransition(d.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, d.Status, to)
	}

	d.Status = to
	if to.IsTerminal() {
		completedAt := at.UTC()
		duration := DurationSeconds(d.StartedAt, completedAt)
		d.CompletedAt = &completedAt
		d.DurationSeconds = &duration
	}
	return nil
}

// DurationSeconds returns the whole seconds between start and end, floored and
// clamped at zero.
func DurationSeconds(start, end time.Time) int {
	secs := int(end.Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// CanTransition reports whether the transition table allows from -> to.
func CanTransition(from, to DeploymentStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// SourcesFor lists every status from which to is reachable in one step.
func SourcesFor(to DeploymentStatus) []DeploymentStatus {
	var sources []DeploymentStatus
	for _, from := range statusOrder {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

// ActiveDeploymentStatuses lists the non-terminal statuses.
func ActiveDeploymentStatuses() []DeploymentStatus {
	return []DeploymentStatus{
		DeploymentStatusPending,
		DeploymentStatusBuilding,
		DeploymentStatusDeploying,
	}
}

// IsValid reports whether s is a known deployment status.
func (s DeploymentStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsActive reports whether the lifecycle of a deployment in status s is still running.
func (s DeploymentStatus) IsActive() bool {
	switch s {
	case DeploymentStatusPending, DeploymentStatusBuilding, DeploymentStatusDeploying:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s has no outgoing transitions.
func (s DeploymentStatus) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}
