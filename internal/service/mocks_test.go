package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/events"
	"github.com/stretchr/testify/mock"
)

// MockTaskStore mocks the store.TaskStore interface
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Update(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) (*domain.Task, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDeploymentStore mocks the store.DeploymentStore interface
type MockDeploymentStore struct {
	mock.Mock
}

func (m *MockDeploymentStore) List(ctx context.Context, limit int) ([]*domain.Deployment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Deployment), args.Error(1)
}

func (m *MockDeploymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deployment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deployment), args.Error(1)
}

func (m *MockDeploymentStore) Create(ctx context.Context, d *domain.Deployment) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeploymentStore) Transition(
	ctx context.Context,
	id uuid.UUID,
	to domain.DeploymentStatus,
	at time.Time,
) (*domain.Deployment, error) {
	args := m.Called(ctx, id, to, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deployment), args.Error(1)
}

func (m *MockDeploymentStore) ListActive(ctx context.Context) ([]*domain.Deployment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Deployment), args.Error(1)
}

// MockLifecycle mocks the Lifecycle interface
type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) Start(d *domain.Deployment) error {
	args := m.Called(d)
	return args.Error(0)
}

func (m *MockLifecycle) Cancel(id uuid.UUID) bool {
	args := m.Called(id)
	return args.Bool(0)
}

// MockEventEmitter mocks the events.EventEmitter interface
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.DeploymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
