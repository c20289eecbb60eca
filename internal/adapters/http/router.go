package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tubefetch/tubefetch/internal/application"
	"github.com/tubefetch/tubefetch/internal/ports"
)

// Handler is the HTTP adapter entrypoint for resolution and download
// use-cases. It depends only on the application service plus the artifact
// store for the readiness probe.
type Handler struct {
	service   *application.Service
	artifacts ports.ArtifactStore
}

func NewHandler(service *application.Service, artifacts ports.ArtifactStore) *Handler {
	return &Handler{service: service, artifacts: artifacts}
}

// NewRouter registers the HTTP routes and middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/resolve", handler.resolve)
		r.Post("/downloads", handler.commitDownload)
		r.Get("/downloads/{job_id}", handler.pollJob)
		r.Get("/artifacts/{job_id}", handler.fetchArtifact)
	})

	return r
}
