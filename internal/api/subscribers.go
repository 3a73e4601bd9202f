package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/listingwatch/listingwatch/internal/domain"
	"github.com/listingwatch/listingwatch/internal/store"
)

type SubscriberHandler struct {
	store *store.PostgresStore
}

func NewSubscriberHandler(s *store.PostgresStore) *SubscriberHandler {
	return &SubscriberHandler{store: s}
}

func (h *SubscriberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.store.GetSubscriber(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get subscriber")
		return
	}
	if sub == nil {
		respondError(w, http.StatusNotFound, "subscriber not found")
		return
	}

	respondJSON(w, http.StatusOK, sub)
}

// Pause stops background polling and notifications for a subscriber.
func (h *SubscriberHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, true)
}

// Resume re-enables background polling and notifications.
func (h *SubscriberHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, false)
}

func (h *SubscriberHandler) setPaused(w http.ResponseWriter, r *http.Request, paused bool) {
	id := chi.URLParam(r, "id")

	if err := h.store.SetPaused(r.Context(), id, paused); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update subscriber")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"paused": paused,
	})
}

// Update sets the optional price bound filters.
func (h *SubscriberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.UpdateSubscriberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.store.UpdatePriceBounds(r.Context(), id, req.PriceMin, req.PriceMax)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update subscriber")
		return
	}

	respondJSON(w, http.StatusOK, sub)
}
