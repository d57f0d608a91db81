package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the HTTP routes
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HandleHealth)
	r.Get("/metrics", h.HandleMetrics)

	// No timeout middleware on the upgrade path
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Logger)
		r.Use(chimiddleware.Timeout(15 * time.Second))

		r.Get("/schedule/{date}", h.GetSchedule)
		r.Get("/gamepack/{publicId}", h.GetGamepack)
		r.Get("/init", h.GetInit)
		r.Get("/manifest", h.GetManifest)
		r.Post("/invoke", h.Invoke)
	})

	return r
}
