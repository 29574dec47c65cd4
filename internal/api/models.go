package api

import (
	"github.com/phrazzld/opsboard/internal/api/shared"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/service"
)

// CreateTaskRequest is the payload of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Priority    string  `json:"priority"    validate:"required,oneof=low medium high critical"`
	Environment string  `json:"environment" validate:"required,oneof=development staging production"`
	Assignee    *string `json:"assignee"    validate:"omitnil,max=100"`
}

// sanitize trims every field and escapes the free-text ones. Length limits
// apply to the escaped value, which is what gets stored.
func (req *CreateTaskRequest) sanitize() {
	shared.Trim(&req.Title, &req.Description, &req.Priority, &req.Environment, req.Assignee)
	shared.Escape(&req.Title, &req.Description, req.Assignee)
}

func (req *CreateTaskRequest) params() service.CreateTaskParams {
	return service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		Environment: domain.Environment(req.Environment),
		Assignee:    req.Assignee,
	}
}

// UpdateTaskRequest is the payload of PUT /api/tasks/{id}. Absent fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	Status      *string `json:"status"      validate:"omitnil,oneof=pending in_progress completed failed"`
	Priority    *string `json:"priority"    validate:"omitnil,oneof=low medium high critical"`
	Environment *string `json:"environment" validate:"omitnil,oneof=development staging production"`
	Assignee    *string `json:"assignee"    validate:"omitnil,max=100"`
}

func (req *UpdateTaskRequest) sanitize() {
	shared.Trim(req.Title, req.Description, req.Status, req.Priority, req.Environment, req.Assignee)
	shared.Escape(req.Title, req.Description, req.Assignee)
}

func (req *UpdateTaskRequest) update() domain.TaskUpdate {
	upd := domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		upd.Status = &s
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		upd.Priority = &p
	}
	if req.Environment != nil {
		e := domain.Environment(*req.Environment)
		upd.Environment = &e
	}
	return upd
}

// CreateDeploymentRequest is the payload of POST /api/deployments.
type CreateDeploymentRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Environment string `json:"environment" validate:"required,oneof=development staging production"`
	Version     string `json:"version"     validate:"required,max=50"`
	CommitSHA   string `json:"commit_sha"  validate:"required,min=7,max=40"`
	Branch      string `json:"branch"      validate:"required,max=100"`
}

func (req *CreateDeploymentRequest) sanitize() {
	shared.Trim(&req.Name, &req.Environment, &req.Version, &req.CommitSHA, &req.Branch)
	shared.Escape(&req.Name, &req.Version, &req.CommitSHA, &req.Branch)
}

func (req *CreateDeploymentRequest) params() service.CreateDeploymentParams {
	return service.CreateDeploymentParams{
		Name:        req.Name,
		Environment: domain.Environment(req.Environment),
		Version:     req.Version,
		CommitSHA:   req.CommitSHA,
		Branch:      req.Branch,
	}
}
