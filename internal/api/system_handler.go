package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/opsboard/internal/api/shared"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/platform/sysinfo"
	"github.com/phrazzld/opsboard/internal/redact"
)

const (
	// ServiceName is reported by the banner endpoint.
	ServiceName = "opsboard"

	healthCheckTimeout = 2 * time.Second
)

// Pinger checks database connectivity. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SnapshotSource samples host resource usage.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (sysinfo.Snapshot, error)
}

// Banner is the body of GET /.
type Banner struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthStatus is the data of GET /api/health.
type HealthStatus struct {
	Status    string    `json:"status"`
	Database  bool      `json:"database"`
	API       bool      `json:"api"`
	Timestamp time.Time `json:"timestamp"`
}

// SystemHandler serves the banner, health and host metrics endpoints.
type SystemHandler struct {
	db      Pinger
	host    SnapshotSource
	version string
	logger  *slog.Logger
	now     func() time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(db Pinger, host SnapshotSource, version string, logger *slog.Logger) *SystemHandler {
	if db == nil || host == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db and host cannot be nil for SystemHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SystemHandler{
		db:      db,
		host:    host,
		version: version,
		logger:  logger.With(slog.String("component", "system_handler")),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Banner handles GET / requests
func (h *SystemHandler) Banner(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, Banner{
		Name:    ServiceName,
		Version: h.version,
		Status:  "running",
		Endpoints: map[string]string{
			"tasks":       "/api/tasks",
			"deployments": "/api/deployments",
			"stream":      "/api/deployments/stream",
			"health":      "/api/health",
			"metrics":     "/api/metrics",
			"prometheus":  "/metrics",
		},
	})
}

// Health handles GET /api/health requests. A failed database ping degrades
// the status but still answers 200.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	dbHealthy := true
	if err := h.db.PingContext(ctx); err != nil {
		dbHealthy = false
		log.Warn("database health check failed", slog.String("error", redact.Error(err)))
	}

	status := "healthy"
	if !dbHealthy {
		status = "degraded"
	}

	shared.RespondWithData(w, r, http.StatusOK, HealthStatus{
		Status:    status,
		Database:  dbHealthy,
		API:       true,
		Timestamp: h.now(),
	})
}

// Metrics handles GET /api/metrics requests
func (h *SystemHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.host.Snapshot(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to collect system metrics", err)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, snap)
}
