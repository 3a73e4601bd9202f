package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/listingwatch/listingwatch/internal/domain"
	"github.com/listingwatch/listingwatch/internal/market"
	"github.com/listingwatch/listingwatch/internal/store"
)

type QueryHandler struct {
	store    *store.PostgresStore
	registry *market.Registry
}

func NewQueryHandler(s *store.PostgresStore, registry *market.Registry) *QueryHandler {
	return &QueryHandler{store: s, registry: registry}
}

// Add saves a search URL for a subscriber, registering the subscriber
// on first contact. Rejects URLs no marketplace client accepts.
func (h *QueryHandler) Add(w http.ResponseWriter, r *http.Request) {
	subscriberID := chi.URLParam(r, "id")

	var req domain.AddQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	client := h.registry.Resolve(req.URL)
	if client == nil {
		respondError(w, http.StatusBadRequest, "url is not a supported marketplace search")
		return
	}

	added, err := h.store.AddQuery(r.Context(), subscriberID, req.URL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to add query")
		return
	}
	if !added {
		respondError(w, http.StatusConflict, "url is already being monitored")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"url":         req.URL,
		"marketplace": client.Name(),
	})
}

func (h *QueryHandler) List(w http.ResponseWriter, r *http.Request) {
	subscriberID := chi.URLParam(r, "id")

	if err := h.store.EnsureSubscriber(r.Context(), subscriberID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to register subscriber")
		return
	}

	queries, err := h.store.ListQueries(r.Context(), subscriberID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list queries")
		return
	}

	respondJSON(w, http.StatusOK, queries)
}

// Remove deletes a monitored URL together with its seen-item records.
func (h *QueryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	subscriberID := chi.URLParam(r, "id")

	var req domain.RemoveQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	removed, err := h.store.RemoveQuery(r.Context(), subscriberID, req.URL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to remove query")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "url is not in the monitoring list")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": req.URL})
}
