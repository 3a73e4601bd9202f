package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/listingwatch/listingwatch/internal/market"
	"github.com/listingwatch/listingwatch/internal/scheduler"
	"github.com/listingwatch/listingwatch/internal/store"
	ws "github.com/listingwatch/listingwatch/internal/websocket"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(pgStore *store.PostgresStore, registry *market.Registry, sched *scheduler.Scheduler, hub *ws.Hub) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// Handlers
	queryHandler := NewQueryHandler(pgStore, registry)
	subHandler := NewSubscriberHandler(pgStore)
	searchHandler := NewSearchHandler(sched)
	statsHandler := NewStatsHandler(pgStore)

	// WebSocket endpoint for the live dashboard
	r.Get("/ws", hub.HandleWebSocket)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", HealthHandler(registry))

		r.Route("/subscribers/{id}", func(r chi.Router) {
			r.Get("/", subHandler.Get)
			r.Patch("/", subHandler.Update)
			r.Post("/pause", subHandler.Pause)
			r.Post("/resume", subHandler.Resume)

			r.Route("/queries", func(r chi.Router) {
				r.Post("/", queryHandler.Add)
				r.Get("/", queryHandler.List)
				r.Delete("/", queryHandler.Remove)
			})
		})

		r.Post("/search", searchHandler.Search)
		r.Get("/stats", statsHandler.Stats)
	})

	return r
}
