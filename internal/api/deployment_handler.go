package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/opsboard/internal/api/shared"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/service"
)

// DeploymentHandler handles deployment-related HTTP requests
type DeploymentHandler struct {
	deploymentService service.DeploymentService
	logger            *slog.Logger
}

// NewDeploymentHandler creates a new DeploymentHandler
func NewDeploymentHandler(deploymentService service.DeploymentService, logger *slog.Logger) *DeploymentHandler {
	if deploymentService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("deploymentService cannot be nil for DeploymentHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeploymentHandler{
		deploymentService: deploymentService,
		logger:            logger.With(slog.String("component", "deployment_handler")),
	}
}

// ListDeployments handles GET /api/deployments requests
func (h *DeploymentHandler) ListDeployments(w http.ResponseWriter, r *http.Request) {
	deployments, err := h.deploymentService.ListDeployments(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list deployments")
		return
	}
	if deployments == nil {
		deployments = []*domain.Deployment{}
	}
	shared.RespondWithData(w, r, http.StatusOK, deployments)
}

// GetDeployment handles GET /api/deployments/{id} requests
func (h *DeploymentHandler) GetDeployment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathUUID(w, r, log, "Invalid deployment ID")
	if !ok {
		return
	}

	d, err := h.deploymentService.GetDeployment(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get deployment")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, d)
}

// CreateDeployment handles POST /api/deployments requests. The deployment is
// returned in building; its pipeline runs in the background.
func (h *DeploymentHandler) CreateDeployment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateDeploymentRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	d, err := h.deploymentService.CreateDeployment(r.Context(), req.params())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deployment")
		return
	}

	log.Info("deployment created",
		slog.String("deployment_id", d.ID.String()),
		slog.String("environment", string(d.Environment)))
	shared.RespondWithData(w, r, http.StatusCreated, d)
}

// CancelDeployment handles DELETE /api/deployments/{id} requests
func (h *DeploymentHandler) CancelDeployment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathUUID(w, r, log, "Invalid deployment ID")
	if !ok {
		return
	}

	d, err := h.deploymentService.CancelDeployment(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel deployment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.SuccessResponse{
		Success: true,
		Data:    d,
		Message: "Deployment cancelled",
	})
}
