package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/listingwatch/listingwatch/internal/domain"
	"github.com/listingwatch/listingwatch/internal/scheduler"
)

type SearchHandler struct {
	scheduler *scheduler.Scheduler
}

func NewSearchHandler(s *scheduler.Scheduler) *SearchHandler {
	return &SearchHandler{scheduler: s}
}

type searchRequest struct {
	URL      string `json:"url"`
	MaxItems int    `json:"max_items,omitempty"`
}

type searchResponse struct {
	Marketplace string        `json:"marketplace"`
	Items       []domain.Item `json:"items"`
	Messages    []string      `json:"messages"`
}

// Search runs an on-demand search synchronously. Results bypass the
// dedup ledger and nothing is recorded as seen, so the next background
// cycle may report the same items again.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	maxItems := req.MaxItems
	if maxItems <= 0 {
		maxItems = 5
	}

	items, client, err := h.scheduler.SearchNow(r.Context(), req.URL, maxItems)
	if err != nil {
		if errors.Is(err, scheduler.ErrUnsupportedURL) {
			respondError(w, http.StatusBadRequest, "url is not a supported marketplace search")
			return
		}
		respondError(w, http.StatusBadGateway, "search failed, please try again later")
		return
	}

	if items == nil {
		items = []domain.Item{}
	}

	messages := make([]string, 0, len(items))
	for _, item := range items {
		messages = append(messages, client.FormatMessage(item, req.URL))
	}

	respondJSON(w, http.StatusOK, searchResponse{
		Marketplace: client.Name(),
		Items:       items,
		Messages:    messages,
	})
}
