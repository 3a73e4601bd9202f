package api

import (
	"net/http"
	"time"

	"github.com/listingwatch/listingwatch/internal/market"
)

type healthResponse struct {
	Status       string   `json:"status"`
	Marketplaces []string `json:"marketplaces"`
	UptimeS      int64    `json:"uptime_s"`
}

// HealthHandler reports liveness plus the marketplaces this instance is
// configured to watch.
func HealthHandler(registry *market.Registry) http.HandlerFunc {
	startedAt := time.Now()

	var marketplaces []string
	for _, c := range registry.Clients() {
		marketplaces = append(marketplaces, c.Name())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, healthResponse{
			Status:       "ok",
			Marketplaces: marketplaces,
			UptimeS:      int64(time.Since(startedAt).Seconds()),
		})
	}
}
