package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/waylog/waylog/internal/middleware"
)

// Routes builds the full router: API endpoints under /api, plus health and
// metrics endpoints at the root.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Route("/trips", func(r chi.Router) {
			r.Post("/", h.CreateTrip)
			r.Get("/", h.ListTrips)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", h.GetTrip)
				r.Put("/", h.UpdateTrip)
				r.Delete("/", h.DeleteTrip)

				r.Post("/members", h.AddMember)
				r.Delete("/members/{userID}", h.RemoveMember)

				r.Get("/entries", h.ListEntries)
				r.Post("/entries", h.CreateEntry)
				r.Put("/entries", h.SaveEntry)
				r.Delete("/entries", h.DeleteEntry)
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
