package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/config"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/platform/metrics"
	"github.com/phrazzld/opsboard/internal/platform/sysinfo"
	"github.com/phrazzld/opsboard/internal/service"
	"github.com/phrazzld/opsboard/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFrontendURL = "http://localhost:5173"

type stubTaskService struct {
	tasks []*domain.Task
}

func (s *stubTaskService) ListTasks(context.Context) ([]*domain.Task, error) {
	return s.tasks, nil
}

func (s *stubTaskService) GetTask(context.Context, uuid.UUID) (*domain.Task, error) {
	return nil, service.ErrTaskNotFound
}

func (s *stubTaskService) CreateTask(context.Context, service.CreateTaskParams) (*domain.Task, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTaskService) UpdateTask(context.Context, uuid.UUID, domain.TaskUpdate) (*domain.Task, error) {
	return nil, service.ErrTaskNotFound
}

func (s *stubTaskService) DeleteTask(context.Context, uuid.UUID) error {
	return service.ErrTaskNotFound
}

type stubDeploymentService struct{}

func (stubDeploymentService) ListDeployments(context.Context) ([]*domain.Deployment, error) {
	return nil, nil
}

func (stubDeploymentService) GetDeployment(context.Context, uuid.UUID) (*domain.Deployment, error) {
	return nil, service.ErrDeploymentNotFound
}

func (stubDeploymentService) CreateDeployment(
	context.Context,
	service.CreateDeploymentParams,
) (*domain.Deployment, error) {
	return nil, errors.New("not implemented")
}

func (stubDeploymentService) CancelDeployment(context.Context, uuid.UUID) (*domain.Deployment, error) {
	return nil, service.ErrDeploymentNotCancellable
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type stubSnapshots struct{}

func (stubSnapshots) Snapshot(context.Context) (sysinfo.Snapshot, error) {
	return sysinfo.Snapshot{CPUUsage: 12.5, UptimeSeconds: 60}, nil
}

func newTestApplication(t *testing.T) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := stream.NewHub(logger)
	t.Cleanup(hub.Close)

	return &application{
		config: &config.Config{
			Server: config.ServerConfig{
				Environment:     "test",
				FrontendURL:     testFrontendURL,
				RequestTimeout:  5 * time.Second,
				ShutdownTimeout: time.Second,
				MaxBodyBytes:    1 << 20,
			},
		},
		logger:            logger,
		hub:               hub,
		metrics:           metrics.New(),
		pinger:            stubPinger{},
		host:              stubSnapshots{},
		taskService:       &stubTaskService{},
		deploymentService: stubDeploymentService{},
	}
}

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantError  string
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK, ""},
		{"host metrics", http.MethodGet, "/api/metrics", http.StatusOK, ""},
		{"list tasks", http.MethodGet, "/api/tasks", http.StatusOK, ""},
		{"list deployments", http.MethodGet, "/api/deployments", http.StatusOK, ""},
		{"missing task", http.MethodGet, "/api/tasks/" + uuid.NewString(), http.StatusNotFound, "Task not found"},
		{"invalid task id", http.MethodGet, "/api/tasks/abc", http.StatusBadRequest, "Invalid task ID"},
		{
			"cancel finished deployment",
			http.MethodDelete, "/api/deployments/" + uuid.NewString(),
			http.StatusNotFound, "Deployment not found or already completed",
		},
		{"unknown endpoint", http.MethodGet, "/api/unknown", http.StatusNotFound, "Endpoint not found"},
		{"wrong method", http.MethodPatch, "/api/tasks", http.StatusMethodNotAllowed, "Method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, router, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

			body := decodeBody(t, rr)
			if tt.wantError == "" {
				assert.Equal(t, true, body["success"])
				return
			}
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestRouter_Banner(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()
	rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "opsboard", body["name"])
	assert.Equal(t, version, body["version"])
	assert.Equal(t, "running", body["status"])
}

func TestRouter_SecurityHeaders(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()
	rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rr.Header().Get("Referrer-Policy"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
		req.Header.Set("Origin", testFrontendURL)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		req.Header.Set("Access-Control-Request-Headers", "Content-Type")

		rr := serve(t, router, req)

		assert.Less(t, rr.Code, http.StatusMultipleChoices)
		assert.Equal(t, testFrontendURL, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.MethodPost, rr.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
		assert.Empty(t, rr.Body.String(), "preflight never reaches the routes")
	})

	t.Run("preflight for a disallowed method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
		req.Header.Set("Origin", testFrontendURL)
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

		rr := serve(t, router, req)

		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request from the allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Origin", testFrontendURL)

		rr := serve(t, router, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, testFrontendURL, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Origin", "https://evil.example")

		rr := serve(t, router, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRouter_PrometheusEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()
	serve(t, router, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "go_goroutines"))
	assert.Contains(t, body, `opsboard_api_http_requests_total{method="GET",route="/api/tasks`)
}

func TestRouter_StreamRequiresUpgrade(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()
	rr := serve(t, router, httptest.NewRequest(http.MethodGet, "/api/deployments/stream", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
