package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/opsboard/internal/api"
	apiMiddleware "github.com/phrazzld/opsboard/internal/api/middleware"
	"github.com/phrazzld/opsboard/internal/api/shared"
	"github.com/phrazzld/opsboard/internal/stream"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(middleware.Logger)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(apiMiddleware.Recoverer(app.config.Server.IsProduction()))
	r.Use(apiMiddleware.ErrorDetail(!app.config.Server.IsProduction()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{app.config.Server.FrontendURL},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	}))
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(middleware.SetHeader("Referrer-Policy", "no-referrer"))
	r.Use(middleware.RequestSize(app.config.Server.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	deploymentHandler := api.NewDeploymentHandler(app.deploymentService, app.logger)
	systemHandler := api.NewSystemHandler(app.pinger, app.host, version, app.logger)
	streamHandler := stream.NewHandler(app.hub, app.config.Server.FrontendURL, app.logger)

	// The websocket route stays outside compression and the request timeout;
	// both would break a long-lived hijacked connection.
	r.Get("/api/deployments/stream", streamHandler.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Use(middleware.Timeout(app.config.Server.RequestTimeout))

		r.Get("/", systemHandler.Banner)
		r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

		r.Route("/api", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/metrics", systemHandler.Metrics)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Get("/{id}", taskHandler.GetTask)
				r.Put("/{id}", taskHandler.UpdateTask)
				r.Delete("/{id}", taskHandler.DeleteTask)
			})

			r.Route("/deployments", func(r chi.Router) {
				r.Get("/", deploymentHandler.ListDeployments)
				r.Post("/", deploymentHandler.CreateDeployment)
				r.Get("/{id}", deploymentHandler.GetDeployment)
				r.Delete("/{id}", deploymentHandler.CancelDeployment)
			})
		})
	})

	return r
}
