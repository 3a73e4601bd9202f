package api

import (
	"net/http"

	"github.com/listingwatch/listingwatch/internal/store"
)

type StatsHandler struct {
	store *store.PostgresStore
}

func NewStatsHandler(s *store.PostgresStore) *StatsHandler {
	return &StatsHandler{store: s}
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
