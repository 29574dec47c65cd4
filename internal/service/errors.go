package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/opsboard/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP
// status codes.
var (
	// ErrTaskNotFound indicates that the task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDeploymentNotFound indicates that the deployment does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrDeploymentNotFound = errors.New("deployment not found")

	// ErrDeploymentNotCancellable indicates a cancel request for a deployment
	// that already reached a terminal status.
	// API layer should map this to HTTP 404 Not Found.
	ErrDeploymentNotCancellable = errors.New("deployment cannot be cancelled")
)

// ServiceError wraps errors from a service with the failed operation.
type ServiceError struct {
	// Service is the service name (e.g., "task", "deployment")
	Service string
	// Operation is the operation that failed (e.g., "create", "cancel")
	Operation string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service %s failed: %v", e.Service, e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// wrapError returns known sentinel errors directly and wraps everything else
// in a ServiceError.
func wrapError(service, operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, ErrDeploymentNotFound), errors.Is(err, store.ErrDeploymentNotFound):
		return ErrDeploymentNotFound
	case errors.Is(err, ErrDeploymentNotCancellable):
		return ErrDeploymentNotCancellable
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Err:       err,
	}
}

func errNilDependency(name string) error {
	return fmt.Errorf("%s cannot be nil", name)
}
