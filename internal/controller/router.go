package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIDMw)
	r.Use(c.requestLoggingMw)

	r.Handle("/metrics", c.metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", c.healthz)
		r.Route("/ws", func(r chi.Router) {
			r.Get("/viewer", c.connectViewer)
		})
	})

	return r
}
