package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the webhook and liveness routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/", h.RootHandler)
	r.Get("/health", h.HealthHandler)
	r.Get("/webhook", h.VerifyHandler)
	r.Post("/webhook", h.EventHandler)

	return r
}
