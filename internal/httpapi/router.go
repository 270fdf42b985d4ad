// Package httpapi serves the history over a small JSON HTTP API, for scripts
// and UIs that would rather not speak gRPC.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"go.klb.dev/clipstream/internal/core"
)

// New returns the API router.
//
//	GET    /v1/entries?q=&limit=
//	GET    /v1/entries/{id}
//	PUT    /v1/entries/{id}
//	DELETE /v1/entries/{id}
//	POST   /v1/entries/{id}/pin
//	POST   /v1/entries/{id}/copy?format=
//	POST   /v1/entries/{id}/paste?format=
//	GET    /v1/ignored-apps
//	POST   /v1/ignored-apps
//	DELETE /v1/ignored-apps/{name}
//	GET    /v1/settings/{key}
//	PUT    /v1/settings/{key}
//	GET    /v1/status
func New(c *core.Core, logger *slog.Logger) http.Handler {
	h := &handler{c: c}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.search)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.get)
				r.Put("/", h.update)
				r.Delete("/", h.delete)
				r.Post("/pin", h.togglePin)
				r.Post("/copy", h.copy)
				r.Post("/paste", h.paste)
			})
		})
		r.Get("/ignored-apps", h.listIgnored)
		r.Post("/ignored-apps", h.addIgnored)
		r.Delete("/ignored-apps/{name}", h.removeIgnored)
		r.Get("/settings/{key}", h.getSetting)
		r.Put("/settings/{key}", h.setSetting)
		r.Get("/status", h.status)
	})
	return r
}
