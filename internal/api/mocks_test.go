package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/platform/sysinfo"
	"github.com/phrazzld/opsboard/internal/service"
)

// MockTaskService is a mock implementation of service.TaskService for testing
type MockTaskService struct {
	ListTasksFn  func(ctx context.Context) ([]*domain.Task, error)
	GetTaskFn    func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	CreateTaskFn func(ctx context.Context, params service.CreateTaskParams) (*domain.Task, error)
	UpdateTaskFn func(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) (*domain.Task, error)
	DeleteTaskFn func(ctx context.Context, id uuid.UUID) error
}

func (m *MockTaskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx)
	}
	return nil, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return nil, service.ErrTaskNotFound
}

func (m *MockTaskService) CreateTask(ctx context.Context, params service.CreateTaskParams) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, params)
	}
	return nil, nil
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, upd domain.TaskUpdate) (*domain.Task, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, id, upd)
	}
	return nil, service.ErrTaskNotFound
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, id)
	}
	return nil
}

// MockDeploymentService is a mock implementation of service.DeploymentService for testing
type MockDeploymentService struct {
	ListDeploymentsFn  func(ctx context.Context) ([]*domain.Deployment, error)
	GetDeploymentFn    func(ctx context.Context, id uuid.UUID) (*domain.Deployment, error)
	CreateDeploymentFn func(ctx context.Context, params service.CreateDeploymentParams) (*domain.Deployment, error)
	CancelDeploymentFn func(ctx context.Context, id uuid.UUID) (*domain.Deployment, error)
}

func (m *MockDeploymentService) ListDeployments(ctx context.Context) ([]*domain.Deployment, error) {
	if m.ListDeploymentsFn != nil {
		return m.ListDeploymentsFn(ctx)
	}
	return nil, nil
}

func (m *MockDeploymentService) GetDeployment(ctx context.Context, id uuid.UUID) (*domain.Deployment, error) {
	if m.GetDeploymentFn != nil {
		return m.GetDeploymentFn(ctx, id)
	}
	return nil, service.ErrDeploymentNotFound
}

func (m *MockDeploymentService) CreateDeployment(
	ctx context.Context,
	params service.CreateDeploymentParams,
) (*domain.Deployment, error) {
	if m.CreateDeploymentFn != nil {
		return m.CreateDeploymentFn(ctx, params)
	}
	return nil, nil
}

func (m *MockDeploymentService) CancelDeployment(ctx context.Context, id uuid.UUID) (*domain.Deployment, error) {
	if m.CancelDeploymentFn != nil {
		return m.CancelDeploymentFn(ctx, id)
	}
	return nil, service.ErrDeploymentNotCancellable
}

type mockPinger struct {
	err error
}

func (m mockPinger) PingContext(context.Context) error { return m.err }

type mockSnapshotSource struct {
	snap sysinfo.Snapshot
	err  error
}

func (m mockSnapshotSource) Snapshot(context.Context) (sysinfo.Snapshot, error) { return m.snap, m.err }
