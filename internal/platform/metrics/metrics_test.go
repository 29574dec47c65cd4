package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/events"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/tasks/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil))
	}

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/api/tasks/{id}", "404"))
	assert.Equal(t, 2.0, got)
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestLatency))
}

func TestHandleEvent(t *testing.T) {
	m := New()
	d, err := domain.NewDeployment("api", domain.EnvironmentStaging, "v1", "abc1234", "main")
	require.NoError(t, err)

	require.NoError(t, m.HandleEvent(context.Background(), events.NewDeploymentCreatedEvent(d)))
	require.NoError(t, d.TransitionTo(domain.DeploymentStatusDeploying, d.StartedAt))
	require.NoError(t, m.HandleEvent(context.Background(),
		events.NewDeploymentTransitionedEvent(domain.DeploymentStatusBuilding, d, events.ReasonLifecycle)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.created.WithLabelValues("staging")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("building", "deploying", "lifecycle")))
}

func TestConnStateAndGauges(t *testing.T) {
	m := New()

	m.TrackConnState(nil, http.StateNew)
	m.TrackConnState(nil, http.StateNew)
	m.TrackConnState(nil, http.StateActive)
	m.TrackConnState(nil, http.StateHijacked)
	assert.Equal(t, 1, m.ActiveConnections())

	require.NoError(t, m.RegisterActiveSequences(func() int { return 3 }))
	assert.Error(t, m.RegisterActiveSequences(func() int { return 0 }), "duplicate registration is rejected")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "opsboard_lifecycle_active_sequences 3"), body)
	assert.True(t, strings.Contains(body, "opsboard_api_open_connections 1"), body)
	assert.True(t, strings.Contains(body, "go_goroutines"), body)
}
