package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/events"
	"github.com/phrazzld/opsboard/internal/store"
)

// fakeStore is an in-memory Store with the same compare-and-set semantics as
// the PostgreSQL implementation.
type fakeStore struct {
	mu          sync.Mutex
	deployments map[uuid.UUID]*domain.Deployment
	calls       []domain.DeploymentStatus

	// TransitionFn, when set, runs before every transition; a non-nil error aborts it.
	TransitionFn func(id uuid.UUID, to domain.DeploymentStatus) error
	ListActiveFn func() error
}

func newFakeStore(ds ...*domain.Deployment) *fakeStore {
	s := &fakeStore{deployments: make(map[uuid.UUID]*domain.Deployment)}
	for _, d := range ds {
		cp := *d
		s.deployments[d.ID] = &cp
	}
	return s
}

func (s *fakeStore) Transition(
	_ context.Context,
	id uuid.UUID,
	to domain.DeploymentStatus,
	at time.Time,
) (*domain.Deployment, error) {
	s.mu.Lock()
	fn := s.TransitionFn
	s.calls = append(s.calls, to)
	s.mu.Unlock()

	if fn != nil {
		if err := fn(id, to); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deployments[id]
	if !ok {
		return nil, store.ErrDeploymentNotFound
	}
	cp := *d
	if err := cp.TransitionTo(to, at); err != nil {
		return nil, err
	}
	s.deployments[id] = &cp
	out := cp
	return &out, nil
}

func (s *fakeStore) ListActive(context.Context) ([]*domain.Deployment, error) {
	if s.ListActiveFn != nil {
		if err := s.ListActiveFn(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Deployment
	for _, d := range s.deployments {
		if d.Status.IsActive() {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) get(id uuid.UUID) domain.Deployment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.deployments[id]
}

func (s *fakeStore) transitionCalls() []domain.DeploymentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.DeploymentStatus(nil), s.calls...)
}

// setFailed mimics a cancel request committed by another writer.
func (s *fakeStore) setFailed(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deployments[id]
	if !ok {
		return fmt.Errorf("unknown deployment %s", id)
	}
	return d.TransitionTo(domain.DeploymentStatusFailed, time.Now())
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.DeploymentEvent
}

func (r *recordingEmitter) EmitEvent(_ context.Context, event *events.DeploymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEmitter) all() []*events.DeploymentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*events.DeploymentEvent(nil), r.events...)
}
