package stream

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/opsboard/internal/api/shared"
	"github.com/phrazzld/opsboard/internal/platform/logger"
)

// Handler upgrades GET requests to websocket subscriptions on a Hub.
//
// The optional deployment_id query parameter narrows the subscription to a
// single deployment.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a Handler accepting browser connections from
// allowedOrigin. Requests without an Origin header are always accepted.
func NewHandler(hub *Hub, allowedOrigin string, logger *slog.Logger) *Handler {
	if hub == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("hub cannot be nil for stream Handler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		logger: logger.With(slog.String("component", "stream_handler")),
	}
}

// ServeHTTP handles GET /api/deployments/stream.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	topic := AllDeployments
	if raw := r.URL.Query().Get("deployment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deployment ID")
			return
		}
		topic = id.String()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(conn, h.logger)
	h.hub.Register(topic, client)
	log.Debug("stream subscriber connected", slog.String("topic", topic))

	go func() {
		defer func() {
			h.hub.Unregister(topic, client)
			client.Close()
		}()
		client.drain()
	}()
}
