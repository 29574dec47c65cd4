package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/events"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/redact"
	"github.com/phrazzld/opsboard/internal/store"
)

// storeTimeout bounds every store call made by a sequence.
const storeTimeout = 5 * time.Second

var (
	// ErrEngineStopped is returned by Start after Stop has been called.
	ErrEngineStopped = errors.New("lifecycle engine stopped")

	// ErrAlreadyRunning is returned by Start when the deployment already has a sequence.
	ErrAlreadyRunning = errors.New("deployment sequence already running")
)

// Store is the persistence the engine needs. store.DeploymentStore satisfies it.
type Store interface {
	Transition(ctx context.Context, id uuid.UUID, to domain.DeploymentStatus, at time.Time) (*domain.Deployment, error)
	ListActive(ctx context.Context) ([]*domain.Deployment, error)
}

// Config holds the timing of the simulated pipeline.
type Config struct {
	// BuildDuration is the wait between creation and building -> deploying.
	BuildDuration time.Duration

	// DeployDuration is the wait between deploying and success.
	DeployDuration time.Duration
}

// DefaultConfig returns the standard 10s build and 15s deploy timings.
func DefaultConfig() Config {
	return Config{
		BuildDuration:  10 * time.Second,
		DeployDuration: 15 * time.Second,
	}
}

type step struct {
	wait time.Duration
	from domain.DeploymentStatus
	to   domain.DeploymentStatus
}

type handle struct {
	cancel context.CancelFunc
}

// Engine supervises deployment sequences.
type Engine struct {
	store   Store
	emitter events.EventEmitter
	config  Config
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	handles map[uuid.UUID]*handle
	stopped bool
	wg      sync.WaitGroup
}

// NewEngine creates an Engine. A nil emitter discards events.
func NewEngine(store Store, emitter events.EventEmitter, config Config, logger *slog.Logger) *Engine {
	if store == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("store cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if config.BuildDuration <= 0 {
		config.BuildDuration = defaults.BuildDuration
	}
	if config.DeployDuration <= 0 {
		config.DeployDuration = defaults.DeployDuration
	}

	return &Engine{
		store:   store,
		emitter: emitter,
		config:  config,
		logger:  logger.With(slog.String("component", "lifecycle_engine")),
		now:     func() time.Time { return time.Now().UTC() },
		handles: make(map[uuid.UUID]*handle),
	}
}

// Start launches the sequence of a deployment already persisted in building.
// It returns immediately.
func (e *Engine) Start(d *domain.Deployment) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrEngineStopped
	}
	if _, ok := e.handles[d.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, d.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{cancel: cancel}
	e.handles[d.ID] = h

	e.wg.Add(1)
	go e.run(ctx, d.ID, h)

	e.logger.Info("deployment sequence started",
		slog.String("deployment_id", d.ID.String()),
		slog.Duration("build_duration", e.config.BuildDuration),
		slog.Duration("deploy_duration", e.config.DeployDuration))
	return nil
}

// Cancel stops the sequence of a deployment at its next wait. It reports
// whether a sequence was running. The durable status change is the caller's.
func (e *Engine) Cancel(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.handles[id]
	if !ok {
		return false
	}
	h.cancel()
	delete(e.handles, id)

	e.logger.Info("deployment sequence cancelled", slog.String("deployment_id", id.String()))
	return true
}

// Active returns the number of running sequences.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handles)
}

// Stop cancels every sequence and waits for them to exit, or for ctx to end.
// Interrupted deployments keep their current status in the store.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	e.stopped = true
	for id, h := range e.handles {
		h.cancel()
		delete(e.handles, id)
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("lifecycle engine stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for deployment sequences: %w", ctx.Err())
	}
}

// Recover fails every active deployment that has no running sequence.
// Timers do not survive a restart, so such deployments would otherwise stay
// active forever. It returns the number of deployments failed.
func (e *Engine) Recover(ctx context.Context) (int, error) {
	active, err := e.store.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active deployments: %w", err)
	}

	e.logger.Info("recovering orphaned deployments", slog.Int("active_count", len(active)))

	recovered := 0
	for _, d := range active {
		e.mu.Lock()
		_, running := e.handles[d.ID]
		e.mu.Unlock()
		if running {
			continue
		}

		updated, err := e.store.Transition(ctx, d.ID, domain.DeploymentStatusFailed, e.now())
		if err != nil {
			// a concurrent writer may have finished it first
			if errors.Is(err, domain.ErrIllegalTransition) || store.IsNotFoundError(err) {
				continue
			}
			e.logger.Error("failed to fail orphaned deployment",
				slog.String("deployment_id", d.ID.String()),
				slog.String("error", redact.Error(err)))
			continue
		}

		recovered++
		e.emit(events.NewDeploymentTransitionedEvent(d.Status, updated, events.ReasonOrphaned))
	}

	if recovered > 0 {
		e.logger.Warn("orphaned deployments marked failed", slog.Int("count", recovered))
	}
	return recovered, nil
}

func (e *Engine) run(ctx context.Context, id uuid.UUID, h *handle) {
	log := e.logger.With(slog.String("deployment_id", id.String()))

	defer e.wg.Done()
	defer e.release(id, h)
	defer func() {
		if p := recover(); p != nil {
			log.Error("deployment sequence panicked", slog.Any("panic", p))
		}
	}()

	steps := []step{
		{wait: e.config.BuildDuration, from: domain.DeploymentStatusBuilding, to: domain.DeploymentStatusDeploying},
		{wait: e.config.DeployDuration, from: domain.DeploymentStatusDeploying, to: domain.DeploymentStatusSuccess},
	}

	for _, s := range steps {
		if !sleep(ctx, s.wait) {
			log.Debug("deployment sequence interrupted", slog.String("waiting_for", string(s.to)))
			return
		}

		updated, err := e.transition(ctx, id, s.to, log)
		switch {
		case err == nil:
			log.Info("deployment advanced",
				slog.String("from", string(s.from)),
				slog.String("to", string(s.to)))
			e.emit(events.NewDeploymentTransitionedEvent(s.from, updated, events.ReasonLifecycle))
		case errors.Is(err, domain.ErrIllegalTransition), store.IsNotFoundError(err):
			// cancelled or removed behind our back
			log.Info("deployment no longer advanceable, stopping sequence",
				slog.String("to", string(s.to)),
				slog.String("reason", err.Error()))
			return
		default:
			log.Error("failed to advance deployment",
				slog.String("to", string(s.to)),
				slog.String("error", redact.Error(err)))
			e.fail(id, s.from, log)
			return
		}
	}
}

func (e *Engine) transition(
	ctx context.Context,
	id uuid.UUID,
	to domain.DeploymentStatus,
	log *slog.Logger,
) (*domain.Deployment, error) {
	// Store calls outlive a cancel that arrives mid-write; the status guard
	// in the store settles the race.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	return e.store.Transition(logger.WithLogger(writeCtx, log), id, to, e.now())
}

// fail moves a deployment whose sequence hit a persistence error to failed.
// from is the status the deployment was last known to hold.
func (e *Engine) fail(id uuid.UUID, from domain.DeploymentStatus, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	updated, err := e.store.Transition(logger.WithLogger(ctx, log), id, domain.DeploymentStatusFailed, e.now())
	if err != nil {
		log.Error("failed to mark deployment failed",
			slog.String("from", string(from)),
			slog.String("error", redact.Error(err)))
		return
	}

	log.Warn("deployment failed after persistence error", slog.String("from", string(from)))
	e.emit(events.NewDeploymentTransitionedEvent(from, updated, events.ReasonPersistenceError))
}

func (e *Engine) release(id uuid.UUID, h *handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if current, ok := e.handles[id]; ok && current == h {
		delete(e.handles, id)
	}
	h.cancel()
}

func (e *Engine) emit(event *events.DeploymentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	// handler errors are logged by the emitter
	_ = e.emitter.EmitEvent(ctx, event)
}

// sleep waits for d and reports whether it elapsed before ctx was cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
