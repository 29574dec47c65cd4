// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidTaskStatus is returned when a task status is not one of the known values.
	ErrInvalidTaskStatus = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrInvalidPriority is returned when a task priority is not one of the known values.
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrValidation)

	// ErrInvalidEnvironment is returned when an environment is not one of the known values.
	ErrInvalidEnvironment = fmt.Errorf("%w: invalid environment", ErrValidation)

	// ErrInvalidDeploymentStatus is returned when a deployment status is not one of the known values.
	ErrInvalidDeploymentStatus = fmt.Errorf("%w: invalid deployment status", ErrValidation)

	// ErrIllegalTransition is returned when a deployment status change is not
	// permitted by the transition table.
	ErrIllegalTransition = errors.New("illegal deployment status transition")
)

// IsValidationError reports whether err is or wraps ErrValidation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
